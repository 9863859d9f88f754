package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/database"
	"github.com/breathfree/quit_go_server/internal/pkg/email"
	"github.com/breathfree/quit_go_server/internal/pkg/logging"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/repository"
	"github.com/breathfree/quit_go_server/internal/worker"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Component: "worker"})

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	log.Info().Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	processor := worker.NewProcessor(repository.NewUserRepository(db), email.NewService(&cfg.Email))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info().Msg("received shutdown signal, waiting for workers")
		cancel()
	}()

	log.Info().Int("workers", cfg.Queue.MaxWorkers).Str("queue", cfg.Queue.NotificationQueue).Msg("worker started")
	worker.Run(ctx, notifications, processor, cfg.Queue.MaxWorkers)
	log.Info().Msg("worker stopped")
}
