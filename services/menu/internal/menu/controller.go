package menu

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	apperrors "github.com/gomenu/pkg/errors"
	"github.com/gomenu/pkg/logger"
	"github.com/gomenu/pkg/middleware"
	"github.com/gomenu/pkg/response"
	"github.com/gomenu/pkg/router"
	"github.com/gomenu/services/menu/internal/model"
	"go.uber.org/zap"
)

// Controller 菜单管理接口
type Controller struct {
	manager *Manager
}

// NewController 创建菜单控制器
func NewController(manager *Manager) *Controller {
	return &Controller{manager: manager}
}

// Prefix 路由前缀
func (ctl *Controller) Prefix() string {
	return "/menus"
}

// Routes 路由配置，读接口需要 auth，写接口额外需要 editor
func (ctl *Controller) Routes(mw map[string]fiber.Handler) []router.Route {
	read := router.Use(mw, "auth")
	write := router.Use(mw, "auth", "editor")
	return []router.Route{
		{Method: fiber.MethodGet, Path: "", Handler: ctl.List, Middlewares: read},
		{Method: fiber.MethodPost, Path: "", Handler: ctl.Create, Middlewares: write},
		{Method: fiber.MethodGet, Path: "alias/:alias", Handler: ctl.GetByAlias, Middlewares: read},
		{Method: fiber.MethodGet, Path: ":id", Handler: ctl.Get, Middlewares: read},
		{Method: fiber.MethodPut, Path: ":id", Handler: ctl.Update, Middlewares: write},
		{Method: fiber.MethodDelete, Path: ":id", Handler: ctl.Delete, Middlewares: write},
		{Method: fiber.MethodGet, Path: ":id/items", Handler: ctl.Items, Middlewares: read},
		{Method: fiber.MethodPost, Path: ":id/items", Handler: ctl.CreateItem, Middlewares: write},
		{Method: fiber.MethodPut, Path: ":id/items/:itemId", Handler: ctl.UpdateItem, Middlewares: write},
		{Method: fiber.MethodGet, Path: ":id/tree", Handler: ctl.Tree, Middlewares: read},
		{Method: fiber.MethodPut, Path: ":id/tree", Handler: ctl.UpdateTree, Middlewares: write},
	}
}

// List 菜单列表
func (ctl *Controller) List(c *fiber.Ctx) error {
	menus, err := ctl.manager.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, menus)
}

// Get 获取菜单详情
func (ctl *Controller) Get(c *fiber.Ctx) error {
	menu, err := ctl.loadMenu(c)
	if err != nil {
		return err
	}
	return response.Success(c, menu)
}

// GetByAlias 按别名获取菜单
func (ctl *Controller) GetByAlias(c *fiber.Ctx) error {
	menu, err := ctl.manager.LoadByAlias(c.UserContext(), c.Params("alias"))
	if err != nil {
		return err
	}
	if menu == nil {
		return apperrors.NotFound("菜单")
	}
	return response.Success(c, menu)
}

// Create 创建菜单
func (ctl *Controller) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	req.Alias = strings.TrimSpace(req.Alias)
	if req.Alias == "" || req.Name == "" {
		return apperrors.Validation("别名和名称不能为空")
	}
	if err := ctl.ensureAliasFree(c, req.Alias, 0); err != nil {
		return err
	}

	menu := &model.Menu{Alias: req.Alias, Name: req.Name}
	if err := ctl.manager.Save(c.UserContext(), menu); err != nil {
		return err
	}
	return response.Success(c, menu)
}

// Update 更新菜单
func (ctl *Controller) Update(c *fiber.Ctx) error {
	menu, err := ctl.loadMenu(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	if alias := strings.TrimSpace(req.Alias); alias != "" && alias != menu.Alias {
		if err := ctl.ensureAliasFree(c, alias, menu.ID); err != nil {
			return err
		}
		menu.Alias = alias
	}
	if req.Name != "" {
		menu.Name = req.Name
	}
	if err := ctl.manager.Save(c.UserContext(), menu); err != nil {
		return err
	}
	return response.Success(c, menu)
}

// Delete 删除菜单
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	menu, err := ctl.loadMenu(c)
	if err != nil {
		return err
	}
	if err := ctl.manager.Remove(c.UserContext(), menu); err != nil {
		return err
	}
	logger.Ctx(c.UserContext()).Info("menu removed via api",
		zap.Int64("menuId", menu.ID),
		zap.String("operator", middleware.GetUsername(c)))
	return response.Success(c, nil)
}

// Items 过滤菜单项 ?root=root|child|all&status=enabled|disabled|all
func (ctl *Controller) Items(c *fiber.Ctx) error {
	root, err := ParseRootFilter(c.Query("root"))
	if err != nil {
		return err
	}
	status, err := ParseStatusFilter(c.Query("status"))
	if err != nil {
		return err
	}
	menu, err := ctl.loadMenu(c)
	if err != nil {
		return err
	}
	return response.Success(c, ctl.manager.GetMenuItems(menu, root, status))
}

// CreateItem 新增菜单项
func (ctl *Controller) CreateItem(c *fiber.Ctx) error {
	menu, err := ctl.loadMenu(c)
	if err != nil {
		return err
	}
	var req CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	if req.Name == "" {
		return apperrors.Validation("名称不能为空")
	}
	item := &model.MenuItem{
		ParentID: req.ParentID,
		Name:     req.Name,
		URL:      req.URL,
		Target:   req.Target,
		Icon:     req.Icon,
		Enabled:  req.Enabled == nil || *req.Enabled,
	}
	if err := ctl.manager.AddItem(c.UserContext(), menu, item); err != nil {
		return err
	}
	return response.Success(c, item)
}

// UpdateItem 更新菜单项
func (ctl *Controller) UpdateItem(c *fiber.Ctx) error {
	menu, err := ctl.loadMenu(c)
	if err != nil {
		return err
	}
	itemID, err := c.ParamsInt("itemId")
	if err != nil {
		return apperrors.BadRequest("无效的菜单项ID")
	}
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	if req.Target != "" && !model.IsValidTarget(req.Target) {
		return apperrors.BadRequest("无效的打开方式: " + req.Target)
	}

	var item *model.MenuItem
	for i := range menu.Items {
		if menu.Items[i].ID == int64(itemID) {
			item = &menu.Items[i]
			break
		}
	}
	if item == nil {
		return apperrors.NotFound("菜单项")
	}
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.URL != "" {
		item.URL = req.URL
	}
	if req.Target != "" {
		item.Target = req.Target
	}
	if req.Icon != "" {
		item.Icon = req.Icon
	}
	if req.Enabled != nil {
		item.Enabled = *req.Enabled
	}
	if err := ctl.manager.Save(c.UserContext(), menu); err != nil {
		return err
	}
	return response.Success(c, item)
}

// Tree 获取菜单树
func (ctl *Controller) Tree(c *fiber.Ctx) error {
	status, err := ParseStatusFilter(c.Query("status"))
	if err != nil {
		return err
	}
	menu, err := ctl.loadMenu(c)
	if err != nil {
		return err
	}
	return response.Success(c, ctl.manager.GetTree(menu, status))
}

// UpdateTree 保存编辑器提交的菜单树
func (ctl *Controller) UpdateTree(c *fiber.Ctx) error {
	menu, err := ctl.loadMenu(c)
	if err != nil {
		return err
	}
	var req UpdateTreeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	result, err := ctl.manager.UpdateMenuTree(c.UserContext(), menu, req.Items)
	if err != nil {
		return err
	}
	return response.Success(c, result)
}

// loadMenu 按路径参数加载菜单，不存在时返回 404
func (ctl *Controller) loadMenu(c *fiber.Ctx) (*model.Menu, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, apperrors.BadRequest("无效的菜单ID")
	}
	menu, err := ctl.manager.Load(c.UserContext(), int64(id))
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, apperrors.NotFound("菜单")
	}
	return menu, nil
}

func (ctl *Controller) ensureAliasFree(c *fiber.Ctx, alias string, selfID int64) error {
	existing, err := ctl.manager.LoadByAlias(c.UserContext(), alias)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperrors.Duplicate("别名")
	}
	return nil
}
