package model

import (
	"github.com/gomenu/pkg/dal"
	"github.com/gomenu/pkg/utils"
)

// 链接打开方式
const (
	TargetSelf   = "_self"
	TargetBlank  = "_blank"
	TargetParent = "_parent"
	TargetTop    = "_top"
)

// ValidTargets 合法的打开方式
var ValidTargets = []string{TargetSelf, TargetBlank, TargetParent, TargetTop}

// IsValidTarget 检查打开方式是否合法
func IsValidTarget(target string) bool {
	return utils.Contains(ValidTargets, target)
}

// Menu 菜单，按别名对外引用
type Menu struct {
	dal.Model
	Alias string     `gorm:"size:64;not null;uniqueIndex" json:"alias"`
	Name  string     `gorm:"size:100;not null" json:"name"`
	Items []MenuItem `gorm:"foreignKey:MenuID" json:"items,omitempty"`
}

// TableName 表名
func (Menu) TableName() string {
	return "sys_menu"
}

// MenuItem 菜单项，ParentID 为空表示根节点
type MenuItem struct {
	dal.Model
	MenuID   int64       `gorm:"not null;index" json:"menuId"`
	ParentID *int64      `gorm:"index" json:"parentId"`
	Name     string      `gorm:"size:100;not null" json:"name"`
	URL      string      `gorm:"size:255" json:"url"`
	Target   string      `gorm:"size:16" json:"target"`
	Icon     string      `gorm:"size:50" json:"icon"`
	Position int         `gorm:"not null;default:0" json:"position"`
	Enabled  bool        `gorm:"not null" json:"enabled"`
	Children []*MenuItem `gorm:"-" json:"children,omitempty"`
}

// TableName 表名
func (MenuItem) TableName() string {
	return "sys_menu_item"
}

// IsRoot 是否根节点
func (i *MenuItem) IsRoot() bool {
	return i.ParentID == nil
}

// SetParent 设置父节点，nil 表示提升为根节点
func (i *MenuItem) SetParent(parent *MenuItem) {
	if parent == nil {
		i.ParentID = nil
		return
	}
	id := parent.ID
	i.ParentID = &id
}

// HasParent 父节点是否为指定ID
func (i *MenuItem) HasParent(id int64) bool {
	return i.ParentID != nil && *i.ParentID == id
}
