package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/config"
	"github.com/SEGIMED/back-sub000/internal/api/handler"
	"github.com/SEGIMED/back-sub000/internal/api/router"
	"github.com/SEGIMED/back-sub000/internal/repository"
	"github.com/SEGIMED/back-sub000/internal/service"
	"github.com/SEGIMED/back-sub000/pkg/database"
	"github.com/SEGIMED/back-sub000/pkg/jwt"
	applogger "github.com/SEGIMED/back-sub000/pkg/logger"
	"github.com/SEGIMED/back-sub000/pkg/messaging"
	"github.com/SEGIMED/back-sub000/pkg/redis"
	"github.com/SEGIMED/back-sub000/pkg/telemetry"
)

const serviceName = "agenda-server"

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "医生排班与号源服务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// bootstrap 加载配置、初始化日志并连接数据库
func bootstrap(configPath string) (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log, serviceName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	logger.Info("数据库连接成功")

	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
}

// ────────────────────── serve ──────────────────────

func serveCmd(configPath *string) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath, skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "启动时不执行数据库迁移")
	return cmd
}

func runServer(configPath string, skipMigrate bool) error {
	cfg, logger, db, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer closeDB(db)

	logger.Info("应用启动中...",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Schedule.Timezone),
	)

	if !skipMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return err
		}
	}

	// 链路追踪（未启用时为 noop）
	shutdownTracing, err := telemetry.Setup(context.Background(), &cfg.Telemetry, version)
	if err != nil {
		return fmt.Errorf("初始化链路追踪失败: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("关闭链路追踪失败", zap.Error(err))
		}
	}()

	// Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// 领域事件（可选：未启用或连接失败时不发布）
	publisher := messaging.NewNoopPublisher()
	if cfg.Broker.Enabled {
		p, err := messaging.NewRabbitPublisher(&cfg.Broker, logger)
		if err != nil {
			logger.Warn("RabbitMQ 连接失败，领域事件将不会发布", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc, err := service.NewService(cfg, repo, publisher, logger)
	if err != nil {
		return err
	}
	h := handler.NewHandler(svc)

	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		return fmt.Errorf("HTTP 服务器异常: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}

// ────────────────────── migrate ──────────────────────

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "应用全部未执行的迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer closeDB(db)

			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return database.RunMigrations(sqlDB, logger)
		},
	})

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer closeDB(db)

			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return database.RollbackMigrations(sqlDB, steps, logger)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "回滚步数")
	cmd.AddCommand(downCmd)

	return cmd
}
