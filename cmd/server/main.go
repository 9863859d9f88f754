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

	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/api"
	"github.com/breathfree/quit_go_server/internal/api/handler"
	"github.com/breathfree/quit_go_server/internal/database"
	"github.com/breathfree/quit_go_server/internal/pkg/cron"
	"github.com/breathfree/quit_go_server/internal/pkg/inflight"
	"github.com/breathfree/quit_go_server/internal/pkg/intent"
	"github.com/breathfree/quit_go_server/internal/pkg/logging"
	"github.com/breathfree/quit_go_server/internal/pkg/oauth"
	"github.com/breathfree/quit_go_server/internal/pkg/oss"
	"github.com/breathfree/quit_go_server/internal/pkg/pubsub"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/pkg/ws"
	"github.com/breathfree/quit_go_server/internal/repository"
	"github.com/breathfree/quit_go_server/internal/service"
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
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Component: "server"})

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	// 初始化 OSS（可选），未配置时头像上传返回错误
	var avatarStorage service.AvatarStorage
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Warn().Err(err).Msg("failed to init OSS client")
		} else {
			avatarStorage = ossClient
			log.Info().Msg("OSS client initialized")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket Hub，通过 redis pub/sub 接收其他实例的会话事件
	wsHub := ws.NewHub()
	go func() {
		if err := pubsub.NewSubscriber(rdb).Subscribe(ctx, wsHub.Deliver); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("chat subscriber stopped")
		}
	}()

	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	smokingRepo := repository.NewSmokingStatusRepository(db)
	planRepo := repository.NewQuitPlanRepository(db)
	logRepo := repository.NewProgressLogRepository(db)
	coachRepo := repository.NewCoachRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, oauth.NewStateStore(rdb), notifications, cfg)
	userService := service.NewUserService(userRepo, avatarStorage)
	subService := service.NewSubscriptionService(subRepo, rdb, cfg)
	membershipService := service.NewMembershipService(membershipRepo)
	paymentService := service.NewPaymentService(db, membershipRepo, subRepo, orderRepo, subService, intent.NewStore(rdb), notifications, cfg)
	smokingService := service.NewSmokingStatusService(smokingRepo)
	planService := service.NewQuitPlanService(planRepo, smokingRepo, subService, rdb, cfg)
	progressService := service.NewProgressService(logRepo, smokingRepo, planRepo, userRepo, cfg)
	coachService := service.NewCoachService(coachRepo, userRepo, pubsub.NewPublisher(rdb), wsHub)
	feedbackService := service.NewFeedbackService(feedbackRepo)
	adminService := service.NewAdminService(userRepo, subRepo, orderRepo, planRepo, feedbackRepo, logRepo, cfg)
	sweepService := service.NewSweepService(subRepo, orderRepo, planService, notifications, rdb, cfg)

	// 初始化 Router
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewSubscriptionHandler(subService, membershipService),
		handler.NewPaymentHandler(paymentService, cfg.Payment),
		handler.NewSmokingStatusHandler(smokingService),
		handler.NewQuitPlanHandler(planService),
		handler.NewProgressHandler(progressService),
		handler.NewCoachHandler(coachService),
		handler.NewFeedbackHandler(feedbackService),
		handler.NewAdminHandler(adminService),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
		subService,
		inflight.NewGuard(rdb, time.Duration(cfg.InFlight.TTLSeconds)*time.Second),
		cfg,
	)

	// 定时任务
	cronService := cron.NewService(sweepService, time.Hour, cfg.Server.Location())
	cronService.Start()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	cronService.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
