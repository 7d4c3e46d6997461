package main

import (
	"context"
	"fmt"
	"time"

	"bug-lifecycle-tracker/internal/auth"
	"bug-lifecycle-tracker/internal/repository"
	"bug-lifecycle-tracker/internal/transport/http/middleware"
	handlers_fiber "bug-lifecycle-tracker/internal/transport/http/server/handlers-fiber"
	"bug-lifecycle-tracker/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, log := a.cfg, a.log

	repo, err := repository.New(ctx, cfg.Storage.Backend, log, cfg)
	if err != nil {
		log.Errorw("repository initialization error", "error", err)
		return err
	}
	if err := repo.OnStart(ctx); err != nil {
		log.Errorw("repository start error", "error", err)
		return err
	}
	defer func() {
		_ = repo.OnStop(context.Background())
	}()

	timeout := cfg.HTTP.RequestTimeout
	uc := usecase.New(log, ctx, repo, timeout)
	authn := auth.New(cfg.Auth)

	serv := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	serv.Use(recover.New())
	serv.Use(requestid.New())
	serv.Use(middleware.RequestLogger(log.Named("http")))

	serv.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	h := handlers_fiber.NewHandler(log.Named("http"), uc)
	h.Register(serv.Group("/api/v1", middleware.Auth(log.Named("http"), authn)))

	return run(ctx, serv, cfg.ServerAddr(), cfg.Server.ShutdownTimeout, log)
}

// run serves until ctx is done or the listener fails. A listener error is
// returned so the command exits non-zero.
func run(ctx context.Context, serv *fiber.App, addr string, shutdownTimeout time.Duration, log *zap.SugaredLogger) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- serv.Listen(addr)
	}()
	log.Infow("server started", "addr", addr)

	select {
	case err := <-listenErr:
		if err != nil {
			log.Errorw("failed to start server", "error", err)
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = serv.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", shutdownTimeout)
	}
	return nil
}
