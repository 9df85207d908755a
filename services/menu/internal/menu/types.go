package menu

// CreateRequest 创建菜单请求
type CreateRequest struct {
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

// UpdateRequest 更新菜单请求
type UpdateRequest struct {
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

// CreateItemRequest 新增菜单项请求
type CreateItemRequest struct {
	ParentID *int64 `json:"parentId"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Target   string `json:"target"`
	Icon     string `json:"icon"`
	Enabled  *bool  `json:"enabled"`
}

// UpdateItemRequest 更新菜单项请求，空字段不修改
type UpdateItemRequest struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Target  string `json:"target"`
	Icon    string `json:"icon"`
	Enabled *bool  `json:"enabled"`
}

// UpdateTreeRequest 调整菜单树请求
type UpdateTreeRequest struct {
	Items []TreeNode `json:"items"`
}
