package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/egannguyen/go-commerce-api/internal/auth"
	delivery "github.com/egannguyen/go-commerce-api/internal/delivery/http"
	"github.com/egannguyen/go-commerce-api/internal/metrics"
	"github.com/egannguyen/go-commerce-api/internal/service"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "keep all data in process memory instead of Postgres",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	var repos repositories
	if c.Bool("in-memory") {
		logger.Warn("Running with in-memory storage, data is lost on exit")
		repos = memoryRepositories()
	} else {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeQuietly(logger, "database", db)
		repos = postgresRepositories(db)
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeQuietly(logger, "publisher", publisher)

	v := validation.New()
	m := metrics.New()
	hasher := auth.NewBcryptHasher()
	svc := delivery.Services{
		Orders: service.NewOrderService(repos.orders, repos.clients, repos.products, repos.events,
			publisher, v, m, logger),
		Clients:  service.NewClientService(repos.clients, v, logger, cfg.DefaultPageSize),
		Products: service.NewProductService(repos.products, v, logger, cfg.DefaultPageSize),
		Users:    service.NewUserService(repos.users, hasher, v, logger),
		Auth: service.NewAuthService(repos.users, repos.tokens, hasher,
			auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), m, logger),
	}

	limiter := delivery.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, m)
	limiter.StartCleanup(ctx, time.Minute)

	handler := delivery.NewHandler(svc, m, limiter, logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case sig := <-killSignalChan():
		logger.WithField("signal", sig.String()).Info("Shutting down")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func killSignalChan() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}
