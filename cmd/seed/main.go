// Command seed loads a YAML template catalog into the configured store.
//
//	go run ./cmd/seed                  # built-in gallery
//	go run ./cmd/seed -file my.yaml    # custom catalog
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/webforge-app/webforge-backend/config"
	"github.com/webforge-app/webforge-backend/internal/auth"
	"github.com/webforge-app/webforge-backend/internal/bootstrap"
	"github.com/webforge-app/webforge-backend/internal/catalog"
	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/service"
	"github.com/webforge-app/webforge-backend/internal/logging"
)

func main() {
	file := flag.String("file", "", "catalog YAML file (defaults to the built-in gallery)")
	owner := flag.String("as", "system", "principal id recorded for the seeding run")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var items []domain.TemplateInput
	if *file == "" {
		items, err = catalog.Default()
	} else {
		items, err = catalog.LoadFile(*file)
	}
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	svc := service.New(store, service.Options{
		TemplatesRequireAdmin: cfg.Auth.TemplatesRequireAdmin,
		Logger:                logger,
	})

	res, err := catalog.Seed(ctx, svc, auth.Principal{ID: *owner, Admin: true}, items, logger)
	if err != nil {
		logger.Fatal("seed", zap.Error(err), zap.Int("created", res.Created))
	}
	logger.Info("catalog seeded", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
}
