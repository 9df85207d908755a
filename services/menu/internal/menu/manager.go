package menu

import (
	"context"
	"fmt"
	"sort"

	apperrors "github.com/gomenu/pkg/errors"
	"github.com/gomenu/pkg/logger"
	"github.com/gomenu/services/menu/internal/model"
	"go.uber.org/zap"
)

// Manager 菜单管理器，封装菜单的加载、保存、过滤与树结构调整
type Manager struct {
	menus   MenuRepository
	items   ItemRepository
	cache   *AliasCache
	metrics *Metrics
}

// Option 管理器选项
type Option func(*Manager)

// WithCache 启用别名缓存
func WithCache(c *AliasCache) Option {
	return func(m *Manager) { m.cache = c }
}

// WithMetrics 启用指标
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager 创建菜单管理器
func NewManager(menus MenuRepository, items ItemRepository, opts ...Option) *Manager {
	m := &Manager{menus: menus, items: items}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache != nil {
		m.cache.metrics = m.metrics
	}
	return m
}

// Load 按ID加载菜单，不存在时返回 nil, nil
func (m *Manager) Load(ctx context.Context, id int64) (*model.Menu, error) {
	menu, err := m.menus.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load menu %d: %w", id, err)
	}
	return menu, nil
}

// LoadByAlias 按别名加载菜单，不存在时返回 nil, nil
func (m *Manager) LoadByAlias(ctx context.Context, alias string) (*model.Menu, error) {
	load := func(ctx context.Context) (*model.Menu, error) {
		return m.menus.FindOneByAlias(ctx, alias)
	}

	var (
		menu *model.Menu
		err  error
	)
	if m.cache != nil {
		menu, err = m.cache.Get(ctx, alias, load)
	} else {
		menu, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load menu by alias %q: %w", alias, err)
	}
	return menu, nil
}

// Remove 删除菜单及其菜单项
func (m *Manager) Remove(ctx context.Context, menu *model.Menu) error {
	if menu == nil {
		return nil
	}
	if err := m.menus.Remove(ctx, menu); err != nil {
		return fmt.Errorf("remove menu %d: %w", menu.ID, err)
	}
	m.invalidate(ctx, menu.Alias)
	logger.Ctx(ctx).Info("菜单已删除", zap.Int64("menuId", menu.ID), zap.String("alias", menu.Alias))
	return nil
}

// Save 新增或更新菜单，别名变更时同时失效旧别名缓存
func (m *Manager) Save(ctx context.Context, menu *model.Menu) error {
	stale := []string{menu.Alias}
	if menu.ID != 0 && m.cache != nil {
		if prev, err := m.menus.FindByID(ctx, menu.ID); err == nil && prev != nil && prev.Alias != menu.Alias {
			stale = append(stale, prev.Alias)
		}
	}
	if err := m.menus.Save(ctx, menu); err != nil {
		return fmt.Errorf("save menu %q: %w", menu.Alias, err)
	}
	m.invalidate(ctx, stale...)
	return nil
}

// FindAll 返回全部菜单
func (m *Manager) FindAll(ctx context.Context) ([]model.Menu, error) {
	menus, err := m.menus.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find menus: %w", err)
	}
	return menus, nil
}

// AddItem 向菜单追加菜单项，排在同级末尾
func (m *Manager) AddItem(ctx context.Context, menu *model.Menu, item *model.MenuItem) error {
	if item.ParentID != nil && !containsItem(menu.Items, *item.ParentID) {
		return apperrors.BadRequest("父菜单项不属于该菜单")
	}
	if item.Target == "" {
		item.Target = model.TargetSelf
	}
	if !model.IsValidTarget(item.Target) {
		return apperrors.BadRequest("无效的打开方式: " + item.Target)
	}

	siblings := 0
	for i := range menu.Items {
		if sameParent(&menu.Items[i], item.ParentID) {
			siblings++
		}
	}
	item.ID = 0
	item.MenuID = menu.ID
	item.Position = siblings
	menu.Items = append(menu.Items, *item)

	if err := m.Save(ctx, menu); err != nil {
		menu.Items = menu.Items[:len(menu.Items)-1]
		return err
	}
	*item = menu.Items[len(menu.Items)-1]
	return nil
}

// GetMenuItems 按层级与状态过滤菜单项
func (m *Manager) GetMenuItems(menu *model.Menu, root RootFilter, status StatusFilter) []*model.MenuItem {
	return FilterItems(menu.Items, root, status)
}

// GetRootItems 获取根菜单项
func (m *Manager) GetRootItems(menu *model.Menu, status StatusFilter) []*model.MenuItem {
	return m.GetMenuItems(menu, ItemRoot, status)
}

// GetEnabledItems 获取启用的菜单项
func (m *Manager) GetEnabledItems(menu *model.Menu) []*model.MenuItem {
	return m.GetMenuItems(menu, ItemAll, StatusEnabled)
}

// GetDisabledItems 获取禁用的菜单项
func (m *Manager) GetDisabledItems(menu *model.Menu) []*model.MenuItem {
	return m.GetMenuItems(menu, ItemAll, StatusDisabled)
}

// GetTree 构建菜单树，同级按 position、id 排序；父节点被过滤掉的子节点不出现
func (m *Manager) GetTree(menu *model.Menu, status StatusFilter) []*model.MenuItem {
	filtered := FilterItems(menu.Items, ItemAll, status)

	nodes := make(map[int64]*model.MenuItem, len(filtered))
	for _, item := range filtered {
		node := *item
		node.Children = nil
		nodes[node.ID] = &node
	}

	var roots []*model.MenuItem
	for _, item := range filtered {
		node := nodes[item.ID]
		if node.IsRoot() {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	sortTree(roots)
	return roots
}

func sortTree(nodes []*model.MenuItem) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Position != nodes[j].Position {
			return nodes[i].Position < nodes[j].Position
		}
		return nodes[i].ID < nodes[j].ID
	})
	for _, n := range nodes {
		sortTree(n.Children)
	}
}

func (m *Manager) invalidate(ctx context.Context, aliases ...string) {
	if m.cache != nil {
		m.cache.Invalidate(ctx, aliases...)
	}
}

func containsItem(items []model.MenuItem, id int64) bool {
	for i := range items {
		if items[i].ID == id {
			return true
		}
	}
	return false
}

func sameParent(item *model.MenuItem, parentID *int64) bool {
	if parentID == nil {
		return item.IsRoot()
	}
	return item.HasParent(*parentID)
}
