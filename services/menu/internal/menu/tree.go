package menu

import (
	"context"
	"fmt"

	"github.com/gomenu/pkg/logger"
	"github.com/gomenu/pkg/utils"
	"github.com/gomenu/services/menu/internal/model"
	"go.uber.org/zap"
)

// TreeNode 编辑器提交的树节点
type TreeNode struct {
	ID       int64      `json:"id"`
	Children []TreeNode `json:"children,omitempty"`
}

// TreeResult 树调整结果
type TreeResult struct {
	// Applied 为 false 表示菜单不存在或节点为空，未做任何修改
	Applied bool    `json:"applied"`
	Updated []int64 `json:"updated"`
	Skipped []int64 `json:"skipped"`
}

// UpdateMenuTreeByID 按菜单ID调整菜单树
func (m *Manager) UpdateMenuTreeByID(ctx context.Context, id int64, nodes []TreeNode) (*TreeResult, error) {
	if len(nodes) == 0 {
		m.metrics.treeUpdate("noop")
		return newTreeResult(), nil
	}
	menu, err := m.Load(ctx, id)
	if err != nil {
		m.metrics.treeUpdate("error")
		return nil, err
	}
	return m.UpdateMenuTree(ctx, menu, nodes)
}

// UpdateMenuTree 按提交的嵌套列表重写菜单项的 position 与父节点。
// 所有修改在遍历结束后于同一事务内提交，失败时不会留下部分结果。
func (m *Manager) UpdateMenuTree(ctx context.Context, menu *model.Menu, nodes []TreeNode) (*TreeResult, error) {
	result := newTreeResult()
	if menu == nil || len(nodes) == 0 {
		m.metrics.treeUpdate("noop")
		return result, nil
	}

	w := &treeWalk{
		items:  m.items,
		menuID: menu.ID,
		staged: make(map[int64]*model.MenuItem),
		result: result,
	}
	if err := w.walk(ctx, nodes, nil); err != nil {
		m.metrics.treeUpdate("error")
		return nil, fmt.Errorf("update menu tree %d: %w", menu.ID, err)
	}

	if err := m.items.SavePositions(ctx, w.pending()); err != nil {
		m.metrics.treeUpdate("error")
		logger.Ctx(ctx).Error("菜单树提交失败", zap.Int64("menuId", menu.ID), zap.Error(err))
		return nil, fmt.Errorf("update menu tree %d: %w", menu.ID, err)
	}

	syncItems(menu, w.staged)
	m.invalidate(ctx, menu.Alias)

	result.Applied = true
	m.metrics.treeUpdate("applied")
	m.metrics.treeNodes(len(result.Updated), len(result.Skipped))
	logger.Ctx(ctx).Info("菜单树已更新",
		zap.Int64("menuId", menu.ID),
		zap.Int("updated", len(result.Updated)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func newTreeResult() *TreeResult {
	return &TreeResult{Updated: []int64{}, Skipped: []int64{}}
}

// treeWalk 一次树调整的工作单元，staged 为已加载菜单项的身份映射
type treeWalk struct {
	items  ItemRepository
	menuID int64
	staged map[int64]*model.MenuItem
	order  []int64
	path   []int64
	result *TreeResult
}

// walk 先序遍历，pos 为节点在同级中的下标
func (w *treeWalk) walk(ctx context.Context, nodes []TreeNode, parent *model.MenuItem) error {
	for pos, node := range nodes {
		item, err := w.lookup(ctx, node.ID)
		if err != nil {
			return err
		}

		// 节点不存在或会成为自身祖先时跳过，其子节点挂到当前父节点下
		if item == nil || utils.Contains(w.path, item.ID) {
			w.result.Skipped = append(w.result.Skipped, node.ID)
			logger.Ctx(ctx).Debug("跳过菜单树节点", zap.Int64("menuId", w.menuID), zap.Int64("itemId", node.ID))
			if len(node.Children) > 0 {
				if err := w.walk(ctx, node.Children, parent); err != nil {
					return err
				}
			}
			continue
		}

		item.Position = pos
		item.SetParent(parent)
		w.stage(item)

		if len(node.Children) > 0 {
			w.path = append(w.path, item.ID)
			err := w.walk(ctx, node.Children, item)
			w.path = w.path[:len(w.path)-1]
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// lookup 优先返回本次已暂存的菜单项，重复ID以最后一次写入为准
func (w *treeWalk) lookup(ctx context.Context, id int64) (*model.MenuItem, error) {
	if item, ok := w.staged[id]; ok {
		return item, nil
	}
	return w.items.FindOneInMenu(ctx, id, w.menuID)
}

func (w *treeWalk) stage(item *model.MenuItem) {
	if _, ok := w.staged[item.ID]; !ok {
		w.staged[item.ID] = item
		w.order = append(w.order, item.ID)
		w.result.Updated = append(w.result.Updated, item.ID)
	}
}

func (w *treeWalk) pending() []*model.MenuItem {
	items := make([]*model.MenuItem, 0, len(w.order))
	for _, id := range w.order {
		items = append(items, w.staged[id])
	}
	return items
}

// syncItems 将已提交的修改同步到内存中的菜单
func syncItems(menu *model.Menu, staged map[int64]*model.MenuItem) {
	for i := range menu.Items {
		if s, ok := staged[menu.Items[i].ID]; ok {
			menu.Items[i].Position = s.Position
			menu.Items[i].ParentID = s.ParentID
		}
	}
}
