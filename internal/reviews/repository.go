package reviews

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-africa/lumina/internal/shared"
)

// Repository defines persistence operations for reviews.
type Repository interface {
	Create(ctx context.Context, rev *Review) error
	ListForVenue(ctx context.Context, venueID int64, page, perPage int) ([]Review, int, error)
	Aggregate(ctx context.Context, venueID int64) (*Aggregate, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Review, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, rev *Review) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (venue_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		rev.VenueID, rev.UserID, rev.Rating, rev.Comment,
	).Scan(&rev.ID, &rev.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Review, error) {
	var rev Review
	err := r.pool.QueryRow(ctx, `
		SELECT id, venue_id, user_id, rating, coalesce(comment, ''), created_at
		FROM reviews WHERE id = $1`, id,
	).Scan(&rev.ID, &rev.VenueID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

func (r *PGRepository) ListForVenue(ctx context.Context, venueID int64, page, perPage int) ([]Review, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reviews WHERE venue_id = $1`, venueID).Scan(&total); err != nil {
		return nil, 0, err
	}

	pg := shared.NewPagination(page, perPage, total)
	rows, err := r.pool.Query(ctx, `
		SELECT id, venue_id, user_id, rating, coalesce(comment, ''), created_at
		FROM reviews WHERE venue_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		venueID, pg.PerPage, pg.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Review, 0, pg.PerPage)
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.VenueID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, rev)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) Aggregate(ctx context.Context, venueID int64) (*Aggregate, error) {
	agg := Aggregate{VenueID: venueID}
	err := r.pool.QueryRow(ctx, `
		SELECT coalesce(round(avg(rating)::numeric, 2), 0), count(*)
		FROM reviews WHERE venue_id = $1`, venueID,
	).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
