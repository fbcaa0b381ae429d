package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-finder/internal/api"
	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/catalog"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir, "recipe-api"); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("upstream_url", cfg.Upstream.URL),
		zap.Int("retry_max_attempts", cfg.Upstream.RetryMaxAttempts),
		zap.Duration("retry_delay", cfg.Upstream.RetryDelay),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化資料庫
	store, err := catalog.OpenStore(cfg.Store.DSN)
	if err != nil {
		common.LogFatal("Failed to open recipe store", zap.Error(err))
	}
	defer store.Close()

	// 初始化快取
	cacheStore := cache.New(ctx, cfg.Cache, cfg.Redis)
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	svc := catalog.NewService(store, catalog.NewLoader(cfg.Upstream), cacheStore)

	if cfg.Upstream.LoadOnStart {
		loadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		count, err := svc.Load(loadCtx)
		cancel()
		if err != nil {
			common.LogError("Initial recipe load failed", zap.Error(err))
		} else {
			common.LogInfo("Initial recipe load finished", zap.Int("count", count))
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.SetupRouter(cfg, svc),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
