package main

import (
	"context"
	"flag"
	"os"

	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/database"
	"github.com/breathfree/quit_go_server/internal/pkg/logging"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/repository"
	"github.com/breathfree/quit_go_server/internal/service"
)

var (
	dryRun    = flag.Bool("dry-run", true, "Dry run mode, only count what would change")
	reminders = flag.Bool("reminders", true, "Queue expiry reminders")
)

func main() {
	flag.Parse()

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Component: "cleanup"})
	log.Info().Bool("dry_run", *dryRun).Msg("starting cleanup task")

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}

	subRepo := repository.NewSubscriptionRepository(db)
	smokingRepo := repository.NewSmokingStatusRepository(db)
	planRepo := repository.NewQuitPlanRepository(db)
	subService := service.NewSubscriptionService(subRepo, rdb, cfg)
	planService := service.NewQuitPlanService(planRepo, smokingRepo, subService, rdb, cfg)
	sweep := service.NewSweepService(
		subRepo,
		repository.NewOrderRepository(db),
		planService,
		queue.NewQueue(rdb, cfg.Queue.NotificationQueue),
		rdb,
		cfg,
	)

	ctx := context.Background()
	report, err := sweep.Run(ctx, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep failed")
	}
	if *reminders {
		if report.RemindersQueued, err = sweep.QueueReminders(ctx, *dryRun); err != nil {
			log.Fatal().Err(err).Msg("failed to queue reminders")
		}
	}

	log.Info().Str("report", report.String()).Msg("cleanup completed")
	if *dryRun {
		log.Warn().Msg("DRY RUN MODE - nothing was changed, run with -dry-run=false to apply")
	}
}
