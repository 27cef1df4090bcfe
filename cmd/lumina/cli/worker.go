package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	mail "github.com/go-mail/mail"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/lumina-africa/lumina/internal/app"
	"github.com/lumina-africa/lumina/internal/bookings"
	jobmetrics "github.com/lumina-africa/lumina/internal/jobs"
	"github.com/lumina-africa/lumina/internal/platform/cache"
	"github.com/lumina-africa/lumina/internal/platform/db"
	"github.com/lumina-africa/lumina/internal/reviews"
	"github.com/lumina-africa/lumina/internal/venues"
	"github.com/lumina-africa/lumina/jobs"
)

// NewWorkerCommand builds the background worker command.
func NewWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background job worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker()
		},
	}
}

func runWorker() error {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	venuesRepo := venues.NewRepository(pool)
	bookingsRepo := bookings.NewRepository(pool)
	bookingsService := bookings.NewService(bookingsRepo, venuesRepo, nil, nil, logger)

	reviewsRepo := reviews.NewRepository(pool)
	reviewsService := reviews.NewService(reviewsRepo, redisClient, nil, logger)

	expiryJob := jobs.NewBookingExpiryJob(bookingsService, logger, metrics)
	refreshJob := jobs.NewReviewRefreshJob(reviewsService, logger, metrics)

	dialer := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	emailJob := jobs.NewSendEmailJob(dialer, cfg.SMTPFrom, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBookingExpiry, Handler: expiryJob.Handle},
			{Type: jobs.TaskReviewRefresh, Handler: refreshJob.Handle},
			{Type: jobs.TaskTypeSendEmail, Handler: emailJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: jobs.NewBookingExpiryTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		return err
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
