package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lumina-africa/lumina/internal/jobs"
)

// AggregateRefresher is the slice of the reviews service the refresh needs.
type AggregateRefresher interface {
	RefreshAggregate(ctx context.Context, venueID int64) error
}

// ReviewRefreshJob recomputes a venue's cached rating aggregate.
type ReviewRefreshJob struct {
	Reviews AggregateRefresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReviewRefreshJob initialises the refresh handler.
func NewReviewRefreshJob(reviews AggregateRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReviewRefreshJob {
	return &ReviewRefreshJob{Reviews: reviews, Logger: logger, Metrics: metrics}
}

// Handle executes the refresh.
func (j *ReviewRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reviews == nil {
		return errors.New("review refresh: handler not configured")
	}
	var payload ReviewRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.VenueID <= 0 {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskReviewRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Reviews.RefreshAggregate(ctx, payload.VenueID); err != nil {
		resultErr = err
		j.logger().Error("refresh failed", slog.Int64("venue_id", payload.VenueID), slog.Any("error", err))
		return resultErr
	}
	j.logger().Info("refreshed rating aggregate", slog.Int64("venue_id", payload.VenueID))
	return resultErr
}

func (j *ReviewRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReviewRefresh))
	}
	return slog.Default().With(slog.String("job", TaskReviewRefresh))
}

func (j *ReviewRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}
