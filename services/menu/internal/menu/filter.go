package menu

import (
	"strings"

	apperrors "github.com/gomenu/pkg/errors"
	"github.com/gomenu/services/menu/internal/model"
)

// RootFilter 按层级过滤
type RootFilter int

const (
	ItemAll   RootFilter = iota // 根节点与子节点
	ItemRoot                    // 仅根节点
	ItemChild                   // 仅子节点
)

func (f RootFilter) String() string {
	switch f {
	case ItemRoot:
		return "root"
	case ItemChild:
		return "child"
	default:
		return "all"
	}
}

// keep 判断菜单项是否满足层级条件
func (f RootFilter) keep(item *model.MenuItem) bool {
	switch f {
	case ItemRoot:
		return item.IsRoot()
	case ItemChild:
		return !item.IsRoot()
	default:
		return true
	}
}

// ParseRootFilter 解析层级过滤参数，空值为 all
func ParseRootFilter(s string) (RootFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ItemAll, nil
	case "root":
		return ItemRoot, nil
	case "child":
		return ItemChild, nil
	}
	return ItemAll, apperrors.BadRequest("无效的层级过滤参数: " + s)
}

// StatusFilter 按启用状态过滤
type StatusFilter int

const (
	StatusAll      StatusFilter = iota // 启用与禁用
	StatusEnabled                      // 仅启用
	StatusDisabled                     // 仅禁用
)

func (f StatusFilter) String() string {
	switch f {
	case StatusEnabled:
		return "enabled"
	case StatusDisabled:
		return "disabled"
	default:
		return "all"
	}
}

func (f StatusFilter) keep(item *model.MenuItem) bool {
	switch f {
	case StatusEnabled:
		return item.Enabled
	case StatusDisabled:
		return !item.Enabled
	default:
		return true
	}
}

// ParseStatusFilter 解析状态过滤参数，空值为 all
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "enabled":
		return StatusEnabled, nil
	case "disabled":
		return StatusDisabled, nil
	}
	return StatusAll, apperrors.BadRequest("无效的状态过滤参数: " + s)
}

// FilterItems 单次遍历过滤菜单项，两个条件同时满足才保留，保持原有顺序
func FilterItems(items []model.MenuItem, root RootFilter, status StatusFilter) []*model.MenuItem {
	out := make([]*model.MenuItem, 0, len(items))
	for i := range items {
		item := &items[i]
		if root.keep(item) && status.keep(item) {
			out = append(out, item)
		}
	}
	return out
}
