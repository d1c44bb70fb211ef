package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"atlas-backend/internal/config"
	"atlas-backend/internal/infrastructure/email"
	"atlas-backend/internal/infrastructure/queue"
	"atlas-backend/pkg/logger"
)

// The worker delivers background tasks, currently verification emails
// enqueued at signup.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("development")
		logger.Error("load config", err)
		os.Exit(1)
	}
	logger.Init(cfg.App.Environment)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 5,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeEmailVerify, queue.EmailVerifyHandler(
		email.NewSMTPEmailService(cfg.SMTP),
		cfg.App.BaseURL,
	))

	if err := srv.Start(mux); err != nil {
		logger.Error("start worker", err)
		os.Exit(1)
	}
	logger.Info("worker started", map[string]interface{}{"redis": cfg.Redis.Host})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("worker stopping", nil)
	srv.Shutdown()
}
