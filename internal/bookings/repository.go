package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-africa/lumina/internal/shared"
)

// Repository defines persistence operations for bookings.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id int64) (*Booking, error)
	GetByReference(ctx context.Context, ref string) (*Booking, error)
	List(ctx context.Context, req ListRequest) ([]Booking, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	HasOverlap(ctx context.Context, venueID int64, start, end time.Time) (bool, error)
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const bookingColumns = `id, reference, user_id, venue_id, start_date, end_date, guests, status, total_price, coalesce(expires_at, 'epoch'::timestamptz), created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.VenueID, &b.StartDate, &b.EndDate, &b.Guests, &b.Status, &b.TotalPrice, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) Create(ctx context.Context, b *Booking) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO bookings (reference, user_id, venue_id, start_date, end_date, guests, status, total_price, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		b.Reference, b.UserID, b.VenueID, b.StartDate, b.EndDate, b.Guests, b.Status, b.TotalPrice, b.ExpiresAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (r *PGRepository) GetByReference(ctx context.Context, ref string) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference = $1`, ref)
	return scanBooking(row)
}

func (r *PGRepository) List(ctx context.Context, req ListRequest) ([]Booking, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argPos := 1

	if req.UserID != 0 {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, req.UserID)
		argPos++
	}
	if req.VenueID != 0 {
		conditions = append(conditions, fmt.Sprintf("venue_id = $%d", argPos))
		args = append(args, req.VenueID)
		argPos++
	}
	if req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, req.Status)
		argPos++
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM bookings %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Booking, 0, page.PerPage)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HasOverlap reports whether an active booking already holds any day of
// [start, end) for the venue.
func (r *PGRepository) HasOverlap(ctx context.Context, venueID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE venue_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_date < $3 AND end_date > $2
		)`, venueID, start, end).Scan(&exists)
	return exists, err
}

// ExpirePending transitions stale pending bookings past their hold
// deadline and returns how many were expired.
func (r *PGRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings SET status = 'expired', updated_at = now()
		WHERE status = 'pending' AND expires_at <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
