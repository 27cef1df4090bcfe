package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lumina-africa/lumina/internal/jobs"
)

// BookingExpirer is the slice of the bookings service the sweep needs.
type BookingExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// BookingExpiryJob releases pending bookings whose hold deadline passed.
type BookingExpiryJob struct {
	Bookings BookingExpirer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewBookingExpiryJob initialises the expiry sweep handler.
func NewBookingExpiryJob(bookings BookingExpirer, logger *slog.Logger, metrics *jobmetrics.Metrics) *BookingExpiryJob {
	return &BookingExpiryJob{Bookings: bookings, Logger: logger, Metrics: metrics}
}

// Handle executes the sweep.
func (j *BookingExpiryJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Bookings == nil {
		return errors.New("booking expiry: handler not configured")
	}
	tracker := j.metrics().Track(TaskBookingExpiry)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	n, err := j.Bookings.ExpireStale(ctx)
	if err != nil {
		resultErr = err
		j.logger().Error("sweep failed", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddExpiredBookings(n)
	j.logger().Info("completed expiry sweep",
		slog.Int64("expired", n),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *BookingExpiryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskBookingExpiry))
	}
	return slog.Default().With(slog.String("job", TaskBookingExpiry))
}

func (j *BookingExpiryJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}
