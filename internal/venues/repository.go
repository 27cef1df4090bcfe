package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-africa/lumina/internal/shared"
)

// Repository defines persistence operations for venues.
type Repository interface {
	Create(ctx context.Context, v *Venue) error
	Get(ctx context.Context, id int64) (*Venue, error)
	List(ctx context.Context, req ListRequest) ([]Venue, int, error)
	Update(ctx context.Context, v *Venue) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const venueColumns = `id, owner_id, name, coalesce(description, ''), city, coalesce(address, ''), category, capacity, price_per_day, is_published, created_at, updated_at`

func scanVenue(row pgx.Row) (*Venue, error) {
	var v Venue
	err := row.Scan(&v.ID, &v.OwnerID, &v.Name, &v.Description, &v.City, &v.Address, &v.Category, &v.Capacity, &v.PricePerDay, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) Create(ctx context.Context, v *Venue) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO venues (owner_id, name, description, city, address, category, capacity, price_per_day, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		v.OwnerID, v.Name, v.Description, v.City, v.Address, v.Category, v.Capacity, v.PricePerDay, v.IsPublished,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Venue, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id)
	return scanVenue(row)
}

func (r *PGRepository) List(ctx context.Context, req ListRequest) ([]Venue, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argPos := 1

	if !req.IncludeUnpublished {
		conditions = append(conditions, "is_published")
	}
	if req.OwnerID != 0 {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argPos))
		args = append(args, req.OwnerID)
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
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM venues `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM venues %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		venueColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	venues := make([]Venue, 0, page.PerPage)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, 0, err
		}
		venues = append(venues, *v)
	}
	return venues, total, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, v *Venue) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE venues
		SET name = $1, description = $2, city = $3, address = $4, category = $5,
		    capacity = $6, price_per_day = $7, is_published = $8, updated_at = now()
		WHERE id = $9`,
		v.Name, v.Description, v.City, v.Address, v.Category, v.Capacity, v.PricePerDay, v.IsPublished, v.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
