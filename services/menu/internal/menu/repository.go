package menu

import (
	"context"

	"github.com/gomenu/pkg/dal"
	"github.com/gomenu/services/menu/internal/model"
	"gorm.io/gorm"
)

// MenuRepository 菜单仓储接口
type MenuRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Menu, error)
	FindOneByAlias(ctx context.Context, alias string) (*model.Menu, error)
	FindAll(ctx context.Context) ([]model.Menu, error)
	Save(ctx context.Context, menu *model.Menu) error
	Remove(ctx context.Context, menu *model.Menu) error
}

// ItemRepository 菜单项仓储接口
type ItemRepository interface {
	// FindOneInMenu 按 (id, 所属菜单) 查找，不存在时返回 nil, nil
	FindOneInMenu(ctx context.Context, id, menuID int64) (*model.MenuItem, error)
	// SavePositions 在同一事务内写入位置与父节点
	SavePositions(ctx context.Context, items []*model.MenuItem) error
}

// withItems 预加载菜单项，保持插入顺序
var withItems = dal.WithPreload("Items", func(db *gorm.DB) *gorm.DB {
	return db.Order("sys_menu_item.id ASC")
})

// menuRepository 菜单仓储实现
type menuRepository struct {
	*dal.BaseRepository[model.Menu]
}

// NewMenuRepository 创建菜单仓储
func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{
		BaseRepository: dal.NewBaseRepository[model.Menu](db),
	}
}

// FindByID 根据ID查找
func (r *menuRepository) FindByID(ctx context.Context, id int64) (*model.Menu, error) {
	return r.BaseRepository.FindByID(ctx, id, withItems)
}

// FindOneByAlias 根据别名查找
func (r *menuRepository) FindOneByAlias(ctx context.Context, alias string) (*model.Menu, error) {
	return r.FindOne(ctx, map[string]interface{}{"alias": alias}, withItems)
}

// FindAll 查找全部菜单
func (r *menuRepository) FindAll(ctx context.Context) ([]model.Menu, error) {
	return r.BaseRepository.FindAll(ctx, nil, withItems, dal.WithOrder("id ASC"))
}

// Save 新增或更新菜单及其菜单项
func (r *menuRepository) Save(ctx context.Context, menu *model.Menu) error {
	return r.DB().WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(menu).Error
}

// Remove 物理删除菜单及其菜单项，释放别名
func (r *menuRepository) Remove(ctx context.Context, menu *model.Menu) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("menu_id = ?", menu.ID).Delete(&model.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Menu{}, menu.ID).Error
	})
}

// itemRepository 菜单项仓储实现
type itemRepository struct {
	*dal.BaseRepository[model.MenuItem]
}

// NewItemRepository 创建菜单项仓储
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{
		BaseRepository: dal.NewBaseRepository[model.MenuItem](db),
	}
}

// FindOneInMenu 按 (id, 所属菜单) 查找
func (r *itemRepository) FindOneInMenu(ctx context.Context, id, menuID int64) (*model.MenuItem, error) {
	return r.FindOne(ctx, map[string]interface{}{"id": id, "menu_id": menuID})
}

// SavePositions 批量写入位置与父节点
func (r *itemRepository) SavePositions(ctx context.Context, items []*model.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		repo := r.WithTx(tx)
		for _, item := range items {
			if err := repo.UpdateColumns(ctx, item, "position", "parent_id"); err != nil {
				return err
			}
		}
		return nil
	})
}

// AutoMigrate 迁移菜单相关表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Menu{}, &model.MenuItem{})
}
