package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/webforge-app/webforge-backend/config"
	apimw "github.com/webforge-app/webforge-backend/internal/api/http/middleware"
	"github.com/webforge-app/webforge-backend/internal/bootstrap"
	"github.com/webforge-app/webforge-backend/internal/content/service"
	"github.com/webforge-app/webforge-backend/internal/logging"
	"github.com/webforge-app/webforge-backend/internal/monitor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close", zap.Error(err))
		}
	}()

	gate, err := bootstrap.NewSessionGate(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.New(store, service.Options{
		TemplatesRequireAdmin: cfg.Auth.TemplatesRequireAdmin,
		Logger:                logger,
		Metrics:               service.NewMetrics(reg),
	})

	var limiter *apimw.RateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = apimw.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	scheduler := monitor.NewScheduler(store, reg, logger)
	if limiter != nil {
		if err := scheduler.AddTask("0 */5 * * * *", "rate-limit-sweep", func() {
			if n := limiter.Sweep(); n > 0 {
				logger.Debug("rate limiters swept", zap.Int("removed", n))
			}
		}); err != nil {
			return err
		}
	}
	if err := scheduler.Start(cfg.Monitor.ProbeSchedule); err != nil {
		return err
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		StoreDriver:    cfg.Store.Driver,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Store:          store,
		Service:        svc,
		Gate:           gate,
		RateLimiter:    limiter,
		Registry:       reg,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("store", cfg.Store.Driver),
			zap.String("auth", cfg.Auth.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
