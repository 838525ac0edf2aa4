package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/oplab/lab400/internal/auth"
	"github.com/oplab/lab400/internal/broker"
	"github.com/oplab/lab400/internal/config"
	"github.com/oplab/lab400/internal/database"
	"github.com/oplab/lab400/internal/database/repository"
	"github.com/oplab/lab400/internal/runtime"
	"github.com/oplab/lab400/internal/screen"
	"github.com/oplab/lab400/internal/server"
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

	// repositories
	users := repository.NewUserRepo(db)

	jobBroker := broker.New(cfg.Redis.Addr)
	defer jobBroker.Close()

	containers, err := runtime.New()
	if err != nil {
		log.Fatalf("container runtime: %v", err)
	}
	defer containers.Close()

	engine := screen.NewEngine(screen.Deps{
		Users:      users,
		Commands:   repository.NewCommandRepo(db),
		Messages:   repository.NewMessageRepo(db),
		Spool:      repository.NewSpoolRepo(db),
		Schedule:   repository.NewScheduleRepo(db),
		Subsystems: repository.NewSubsystemRepo(db),
		Objects:    repository.NewObjectRepo(db),
		AuthLists:  repository.NewAuthListRepo(db),
		SysValues:  repository.NewSystemValueRepo(db),
		History:    repository.NewHistoryRepo(db),
		Auth:       auth.NewAuthenticator(users),
		Broker:     jobBroker,
		Runtime:    containers,
		StartedAt:  time.Now(),
	})

	srv := server.New(engine, server.NewSessionStore(),
		cfg.Server.SessionTimeout, cfg.Server.SignonPerMin, cfg.Server.SignonBurst, logger)

	logger.Info("console listening", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Handler()); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
