// Package main runs the background email worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/emaillogs"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/worker"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/database"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/queue"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	logs := emaillogs.NewRepository(pool)
	sender := worker.NewSMTPSender(cfg.Email)
	processor := worker.NewEmailProcessor(jobQueue, logs, sender, logger)

	go processor.Run(ctx)
	logger.Info("email worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	// Let an in-flight job land before exiting.
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
