package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/shared"
)

// CreateReviewRequest carries a new venue review.
type CreateReviewRequest struct {
	VenueID int64  `json:"venue_id" validate:"required,min=1"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

const aggregateTTL = 10 * time.Minute

func aggregateKey(venueID int64) string {
	return fmt.Sprintf("reviews:aggregate:%d", venueID)
}

// RefreshQueue schedules an aggregate recompute after a review write, so the
// next read finds a warm cache instead of paying the recompute. *jobs.Client
// satisfies it; nil disables warming and reads fall through to the database.
type RefreshQueue interface {
	EnqueueReviewRefresh(ctx context.Context, venueID int64) (*asynq.TaskInfo, error)
}

// Service orchestrates reviews. Rating aggregates are served from Redis
// and recomputed on write or cache miss.
type Service struct {
	repo   Repository
	rdb    *redis.Client
	queue  RefreshQueue
	logger *slog.Logger
}

func NewService(repo Repository, rdb *redis.Client, queue RefreshQueue, logger *slog.Logger) *Service {
	return &Service{repo: repo, rdb: rdb, queue: queue, logger: logger}
}

func (s *Service) scheduleRefresh(ctx context.Context, venueID int64) {
	if s.queue == nil {
		return
	}
	if _, err := s.queue.EnqueueReviewRefresh(ctx, venueID); err != nil {
		s.logger.Warn("enqueue aggregate refresh", "venue_id", venueID, "error", err)
	}
}

// Create records a review and invalidates the venue's cached aggregate.
func (s *Service) Create(ctx context.Context, caller *identity.Identity, req CreateReviewRequest) (*Review, error) {
	if !access.HasPermission(caller.Role, "reviews", "create") {
		return nil, shared.ErrForbidden
	}
	rev := &Review{
		VenueID: req.VenueID,
		UserID:  caller.ID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}
	if err := s.rdb.Del(ctx, aggregateKey(req.VenueID)).Err(); err != nil {
		s.logger.Warn("aggregate cache invalidation failed", "venue_id", req.VenueID, "error", err)
	}
	s.scheduleRefresh(ctx, req.VenueID)
	return rev, nil
}

// ListForVenue returns a venue's reviews, newest first.
func (s *Service) ListForVenue(ctx context.Context, venueID int64, page, perPage int) ([]Review, shared.Pagination, error) {
	list, total, err := s.repo.ListForVenue(ctx, venueID, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// VenueAggregate returns the venue's rating summary, cached in Redis.
// A cache failure falls through to the database.
func (s *Service) VenueAggregate(ctx context.Context, venueID int64) (*Aggregate, error) {
	key := aggregateKey(venueID)
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var agg Aggregate
		if json.Unmarshal(raw, &agg) == nil {
			return &agg, nil
		}
	}

	agg, err := s.repo.Aggregate(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(agg); err == nil {
		if err := s.rdb.Set(ctx, key, raw, aggregateTTL).Err(); err != nil {
			s.logger.Warn("aggregate cache write failed", "venue_id", venueID, "error", err)
		}
	}
	return agg, nil
}

// RefreshAggregate recomputes and re-caches a venue's rating summary.
// Called by the background refresh job.
func (s *Service) RefreshAggregate(ctx context.Context, venueID int64) error {
	agg, err := s.repo.Aggregate(ctx, venueID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(agg)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, aggregateKey(venueID), raw, aggregateTTL).Err()
}

// Delete removes a review. The author or an admin may delete.
func (s *Service) Delete(ctx context.Context, caller *identity.Identity, id int64) error {
	rev, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if rev.UserID != caller.ID && caller.Role != access.RoleAdmin {
		return shared.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, aggregateKey(rev.VenueID)).Err(); err != nil {
		s.logger.Warn("aggregate cache invalidation failed", "venue_id", rev.VenueID, "error", err)
	}
	s.scheduleRefresh(ctx, rev.VenueID)
	return nil
}
