package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"GymTree/config"
	"GymTree/internal/handler"
	"GymTree/internal/middleware"
	"GymTree/internal/queue"
	"GymTree/internal/router"
	"GymTree/internal/service"
	"GymTree/internal/session"
	"GymTree/pkg/geoprovider"
	"GymTree/pkg/logger"
	"GymTree/pkg/metrics"
	pkgotel "GymTree/pkg/otel"
	"GymTree/pkg/snowflake"
	"GymTree/pkg/token"
	"GymTree/storage"
)

func main() {
	// 日志部分
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 初始化存储层，记得关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 链路追踪与指标
	if config.Cfg.TracingEnabled {
		shutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: "1.0.0",
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTLPEndpoint,
			SampleRatio:    config.Cfg.TracingSampler,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
				defer c()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()

			meter := otel.Meter("gymtree-server")
			if err := middleware.InitMetrics(meter); err != nil {
				logger.Logger.Warn("Failed to initialize HTTP metrics", zap.Error(err))
			}
			if err := metrics.InitEngineMetrics(meter); err != nil {
				logger.Logger.Warn("Failed to initialize engine metrics", zap.Error(err))
			}
		}
	}

	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	} // token 在中间件前初始化，middleware 依赖 token

	// 初始化中间件
	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	// 定位来源与会话管理
	provider, err := geoprovider.NewClient()
	if err != nil {
		logger.Logger.Fatal("Failed to create location provider", zap.Error(err))
	}

	manager := session.NewManager(
		provider,
		service.Profile(),
		service.Plan(),
		service.Workout(),
		queue.NewProducer(),
		session.CacheDoneMarker{},
		session.CacheAttemptLocker{},
	)
	defer manager.StopAll()

	var ingest handler.Ingestor
	if push, ok := provider.(*geoprovider.PushClient); ok {
		ingest = push
	}
	handler.Setup(manager, ingest)

	// 档案变更事件驱动在线会话刷新
	go func() {
		if err := queue.ConsumeProfileChanged(manager); err != nil {
			logger.Logger.Error("Profile changed consumer exited", zap.Error(err))
		}
	}()

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	h := server.Default(server.WithHostPorts(addr))

	router.Register(h)

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
