package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/app"
	"github.com/lumina-africa/lumina/internal/auth"
	"github.com/lumina-africa/lumina/internal/bookings"
	"github.com/lumina-africa/lumina/internal/events"
	"github.com/lumina-africa/lumina/internal/guard"
	"github.com/lumina-africa/lumina/internal/nav"
	"github.com/lumina-africa/lumina/internal/observability"
	"github.com/lumina-africa/lumina/internal/platform/cache"
	"github.com/lumina-africa/lumina/internal/platform/db"
	"github.com/lumina-africa/lumina/internal/reviews"
	"github.com/lumina-africa/lumina/internal/users"
	"github.com/lumina-africa/lumina/internal/venues"
	"github.com/lumina-africa/lumina/jobs"
)

// NewServeCommand builds the HTTP server command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Lumina HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable at startup", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	table := access.MustLoadTable()
	metrics := observability.NewMetrics()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		return err
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenService(cfg.AuthSecret, cfg.AuthIssuer, cfg.TokenTTL, redisClient)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, jobsClient)
	authHandler := auth.NewHandler(logger, authService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	venuesRepo := venues.NewRepository(pool)
	venuesService := venues.NewService(venuesRepo)
	venuesHandler := venues.NewHandler(logger, venuesService)

	eventsRepo := events.NewRepository(pool)
	eventsService := events.NewService(eventsRepo)
	eventsHandler := events.NewHandler(logger, eventsService)

	bookingsRepo := bookings.NewRepository(pool)
	bookingsService := bookings.NewService(bookingsRepo, venuesRepo, usersRepo, jobsClient, logger)
	bookingsHandler := bookings.NewHandler(logger, bookingsService)

	reviewsRepo := reviews.NewRepository(pool)
	reviewsService := reviews.NewService(reviewsRepo, redisClient, jobsClient, logger)
	reviewsHandler := reviews.NewHandler(logger, reviewsService)

	guardHandler := guard.NewHandler(logger, table)
	navHandler := nav.NewHandler(logger, nav.Menu(), table)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Table:           table,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		VenuesHandler:   venuesHandler,
		EventsHandler:   eventsHandler,
		BookingsHandler: bookingsHandler,
		ReviewsHandler:  reviewsHandler,
		GuardHandler:    guardHandler,
		NavHandler:      navHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
