package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gomenu/pkg/auth"
	"github.com/gomenu/pkg/config"
	"github.com/gomenu/pkg/database"
	"github.com/gomenu/pkg/logger"
	"github.com/gomenu/services/menu/internal/menu"
	"github.com/gomenu/services/menu/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

// NewRootCmd 构建根命令
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu-service",
		Short: "menu-service - 菜单管理服务",
	}
	cmd.SilenceUsage = true
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径，默认查找 configs/config.yaml")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// Execute 命令入口
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap 加载配置、初始化日志
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if err := logger.Init(&cfg.Log); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动HTTP服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("配置无效: %w", err)
			}

			if err := database.Init(&cfg.Database); err != nil {
				return fmt.Errorf("初始化数据库失败: %w", err)
			}
			defer database.Close()

			if migrate {
				if err := menu.AutoMigrate(database.Get()); err != nil {
					return fmt.Errorf("数据库迁移失败: %w", err)
				}
				logger.Info("数据库迁移完成")
			}

			if cfg.Redis.Enabled() {
				if err := database.InitRedis(&cfg.Redis); err != nil {
					return fmt.Errorf("初始化Redis失败: %w", err)
				}
				defer database.CloseRedis()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, database.Get(), database.GetRedis())
			if err := srv.Run(ctx); err != nil {
				logger.Error("服务运行失败", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "启动前执行数据库迁移")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.Open(&cfg.Database)
			if err != nil {
				return fmt.Errorf("初始化数据库失败: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := menu.AutoMigrate(db); err != nil {
				return fmt.Errorf("数据库迁移失败: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID   int64
		username string
		editor   bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发调试用访问令牌",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("配置无效: %w", err)
			}
			var roles []string
			if editor {
				roles = append(roles, server.EditorRole)
			}
			token, err := auth.NewJWTManager(&cfg.JWT).GenerateToken(userID, username, roles...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 1, "用户ID")
	cmd.Flags().StringVar(&username, "username", "admin", "用户名")
	cmd.Flags().BoolVar(&editor, "editor", false, "授予菜单编辑权限")
	return cmd
}
