package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-africa/lumina/internal/shared"
)

// Repository defines persistence operations for events.
type Repository interface {
	Create(ctx context.Context, e *Event) error
	Get(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context, req ListRequest) ([]Event, int, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const eventColumns = `id, organizer_id, coalesce(venue_id, 0), title, coalesce(description, ''), city, category, starts_at, ends_at, capacity, ticket_price, is_published, created_at, updated_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.OrganizerID, &e.VenueID, &e.Title, &e.Description, &e.City, &e.Category, &e.StartsAt, &e.EndsAt, &e.Capacity, &e.TicketPrice, &e.IsPublished, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PGRepository) Create(ctx context.Context, e *Event) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO events (organizer_id, venue_id, title, description, city, category, starts_at, ends_at, capacity, ticket_price, is_published)
		VALUES ($1, nullif($2, 0), $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		e.OrganizerID, e.VenueID, e.Title, e.Description, e.City, e.Category, e.StartsAt, e.EndsAt, e.Capacity, e.TicketPrice, e.IsPublished,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (r *PGRepository) List(ctx context.Context, req ListRequest) ([]Event, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argPos := 1

	if !req.IncludeUnpublished {
		conditions = append(conditions, "is_published")
	}
	if req.OrganizerID != 0 {
		conditions = append(conditions, fmt.Sprintf("organizer_id = $%d", argPos))
		args = append(args, req.OrganizerID)
		argPos++
	}
	if req.City != "" {
		conditions = append(conditions, fmt.Sprintf("city = $%d", argPos))
		args = append(args, req.City)
		argPos++
	}
	if req.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, req.Category)
		argPos++
	}
	if !req.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("starts_at >= $%d", argPos))
		args = append(args, req.From)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM events `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY starts_at ASC LIMIT $%d OFFSET $%d`,
		eventColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Event, 0, page.PerPage)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, e *Event) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET venue_id = nullif($1, 0), title = $2, description = $3, city = $4, category = $5,
		    starts_at = $6, ends_at = $7, capacity = $8, ticket_price = $9, is_published = $10, updated_at = now()
		WHERE id = $11`,
		e.VenueID, e.Title, e.Description, e.City, e.Category, e.StartsAt, e.EndsAt, e.Capacity, e.TicketPrice, e.IsPublished, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
