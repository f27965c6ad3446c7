package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"GymTree/config"
	"GymTree/internal/queue"
	"GymTree/pkg/logger"
	"GymTree/pkg/snowflake"
	"GymTree/storage"
)

func main() {

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

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 消费训练完成事件，维护周统计并回填完成标记
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := queue.ConsumeWorkoutCompleted(); err != nil {
			logger.Logger.Error("Workout completed consumer exited", zap.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
