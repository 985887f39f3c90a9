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

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/Yolxander/businki-sub003/internal/bootstrap"
	"github.com/Yolxander/businki-sub003/internal/config"
	"github.com/Yolxander/businki-sub003/internal/infra/cache"
	mq "github.com/Yolxander/businki-sub003/internal/infra/queue"
	"github.com/Yolxander/businki-sub003/internal/modules/handler"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/service"
	"github.com/Yolxander/businki-sub003/internal/pkg/jwtauth"
	"github.com/Yolxander/businki-sub003/internal/router"
	"github.com/Yolxander/businki-sub003/internal/telemetry"
)

// Businki document API server.
//
//	@title						Businki Document API
//	@version					1.0
//	@description				AI document generation and versioning for dev projects
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inj := bootstrap.BuildContainer()
	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	if _, err := telemetry.SetupTracing(cfg); err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	engine := router.NewRouter(router.RouterDeps{
		Config:          cfg,
		Log:             log,
		Verifier:        do.MustInvoke[jwtauth.Verifier](inj),
		UserService:     do.MustInvoke[service.UserService](inj),
		SystemUser:      do.MustInvoke[*model.User](inj),
		ProjectHandler:  do.MustInvoke[*handler.ProjectHandler](inj),
		DocumentHandler: do.MustInvoke[*handler.DocumentHandler](inj),
		UserHandler:     do.MustInvoke[*handler.UserHandler](inj),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Sugar().Infow("starting http server", "addr", srv.Addr, "env", cfg.App.Env)
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
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}

	if cfg.RabbitMQ.Enabled {
		if err := do.MustInvoke[*mq.Publisher](inj).Close(); err != nil {
			log.Warn("close publisher", zap.Error(err))
		}
	}
	if cfg.Redis.Enabled {
		if err := cache.Close(do.MustInvoke[*redis.Client](inj)); err != nil {
			log.Warn("close redis", zap.Error(err))
		}
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown tracing", zap.Error(err))
	}
	return nil
}
