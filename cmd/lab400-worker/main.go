package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/oplab/lab400/internal/broker"
	"github.com/oplab/lab400/internal/config"
	"github.com/oplab/lab400/internal/database"
	"github.com/oplab/lab400/internal/database/repository"
	"github.com/oplab/lab400/internal/fixer"
	"github.com/oplab/lab400/internal/runtime"
	"github.com/oplab/lab400/internal/scheduler"
	"github.com/oplab/lab400/internal/tasks"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := database.SeedDefaults(context.Background(), db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	spool := repository.NewSpoolRepo(db)
	history := repository.NewHistoryRepo(db)
	sysvals := repository.NewSystemValueRepo(db)
	subsystems := repository.NewSubsystemRepo(db)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      queueWeights(ctx, subsystems),
		},
	)
	mux := asynq.NewServeMux()
	tasks.NewHandlers(spool, history, logger).Register(mux)

	jobBroker := broker.New(cfg.Redis.Addr)
	defer jobBroker.Close()

	sched := scheduler.New(repository.NewScheduleRepo(db), sysvals, history,
		jobBroker, cfg.Scheduler.NTPServer, logger)
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduler stopped", "error", err)
		}
	}()

	if cfg.Fixer.Enabled {
		fx, err := buildFixer(cfg, db, history, logger)
		if err != nil {
			log.Fatalf("fixer: %v", err)
		}
		go func() {
			if err := fx.Watch(ctx, time.Minute); err != nil && ctx.Err() == nil {
				logger.Error("fixer stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	logger.Info("worker starting", "concurrency", cfg.Worker.Concurrency)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// queueWeights maps subsystem job queues to asynq queue priorities.
// Falls back to the stock queues when the table is unreadable.
func queueWeights(ctx context.Context, subsystems *repository.SubsystemRepo) map[string]int {
	weights := map[string]int{}
	descs, err := subsystems.List(ctx)
	if err == nil {
		for _, sbs := range descs {
			for _, q := range sbs.Queues {
				w := q.MaxActive
				if w <= 0 {
					w = 1
				}
				weights[strings.ToLower(q.JobQueue)] = w
			}
		}
	}
	if len(weights) == 0 {
		weights = map[string]int{"qbatch": 3, "qinter": 6, "qspl": 1}
	}
	return weights
}

func buildFixer(cfg *config.Config, db *sql.DB, history *repository.HistoryRepo, logger *slog.Logger) (*fixer.Fixer, error) {
	containers, err := runtime.New()
	if err != nil {
		return nil, fmt.Errorf("container runtime: %w", err)
	}
	runbooks, err := fixer.LoadRunbooks(cfg.Fixer.RunbookDir)
	if err != nil {
		return nil, fmt.Errorf("load runbooks: %w", err)
	}

	var advisor *fixer.Advisor
	if cfg.Fixer.AnthropicKey != "" {
		advisor = fixer.NewAdvisor(cfg.Fixer.AnthropicKey, cfg.Fixer.Model)
	}
	var notifier *fixer.Notifier
	if cfg.Fixer.TelegramToken != "" {
		notifier, err = fixer.NewNotifier(cfg.Fixer.TelegramToken, cfg.Fixer.TelegramChatID,
			repository.NewNotificationRepo(db), cfg.Fixer.ThrottleWindow, logger)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
	}
	return fixer.New(runbooks, containers, advisor, notifier, history, logger), nil
}
