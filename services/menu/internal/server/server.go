package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gomenu/pkg/auth"
	"github.com/gomenu/pkg/config"
	"github.com/gomenu/pkg/logger"
	"github.com/gomenu/pkg/metric"
	"github.com/gomenu/pkg/middleware"
	"github.com/gomenu/pkg/router"
	"github.com/gomenu/services/menu/internal/menu"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	ServiceName = "menu-service"

	// EditorRole 允许修改菜单的角色
	EditorRole = "menu:write"
)

// Server 菜单服务
type Server struct {
	App      *fiber.App
	Manager  *menu.Manager
	Registry *prometheus.Registry
	cfg      *config.Config
}

// New 组装菜单服务，rdb 为 nil 时不启用别名缓存
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics := menu.NewMetrics(reg)
	opts := []menu.Option{menu.WithMetrics(metrics)}
	if rdb != nil {
		ttl := time.Duration(cfg.Menu.CacheTTL) * time.Second
		opts = append(opts, menu.WithCache(menu.NewAliasCache(rdb, cfg.Menu.CachePrefix, ttl)))
	}
	manager := menu.NewManager(menu.NewMenuRepository(db), menu.NewItemRepository(db), opts...)

	app := fiber.New(fiber.Config{
		AppName:               ServiceName,
		ErrorHandler:          middleware.ErrorHandler,
		ReadTimeout:           time.Duration(cfg.Server.HTTP.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.HTTP.WriteTimeout) * time.Second,
		DisableStartupMessage: true,
	})

	requests := metric.NewCounterWithRegistry(reg, "http_requests_total",
		"HTTP requests by method, route and status.", "method", "route", "status")
	latency := metric.NewHistogramWithRegistry(reg, "http_request_duration_seconds",
		"HTTP request latency by method and route.", "method", "route")

	app.Use(middleware.Recovery())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog("/health", "/metrics"))
	app.Use(middleware.Metrics(requests, latency))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": ServiceName,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metric.GetHandlerForRegistry(reg)))

	jwtManager := auth.NewJWTManager(&cfg.JWT)
	router.Register(app, map[string]fiber.Handler{
		"auth":   middleware.JWTAuth(jwtManager),
		"editor": middleware.RequireRole(EditorRole),
	}, menu.NewController(manager))

	return &Server{
		App:      app,
		Manager:  manager,
		Registry: reg,
		cfg:      cfg,
	}
}

// Run 启动HTTP服务，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Server.HTTP.Addr()
	timeout := time.Duration(s.cfg.Server.HTTP.ShutdownTimeout) * time.Second

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("服务启动", zap.String("service", ServiceName), zap.String("addr", addr))
		if err := s.App.Listen(addr); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("服务关闭中", zap.Duration("timeout", timeout))
		if err := s.App.ShutdownWithTimeout(timeout); err != nil {
			logger.Error("服务关闭失败", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
