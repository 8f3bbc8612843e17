package deal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no deal row exists for the identifier.
	ErrNotFound = errors.New("deal: not found")
)

// Repository handles data access for deal listings.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Deal, error)
	GetByID(ctx context.Context, dealID string) (Deal, error)
	ListActive(ctx context.Context) ([]Deal, error)
	UpdateStatus(ctx context.Context, dealID string, status Status) (Deal, error)
}

// CreateParams contains write parameters for new listings.
type CreateParams struct {
	WholesalerID string
	Title        string
	State        string
	City         string
	PropertyType PropertyType
	AskingPrice  float64
}

// PGRepository implements Repository backed by PostgreSQL. Every read joins
// the seller's stored rating so the returned snapshot already carries the
// wholesaler reputation matching needs.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const dealColumns = `
	d.id, d.wholesaler_id, d.title, d.state, d.city, d.property_type::text,
	d.asking_price, d.status::text, u.rating, d.created_at, d.updated_at
`

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Deal, error) {
	const query = `
		WITH inserted AS (
			INSERT INTO deals (wholesaler_id, title, state, city, property_type, asking_price)
			VALUES ($1,$2,$3,$4,$5::property_type,$6)
			RETURNING *
		)
		SELECT ` + dealColumns + `
		FROM inserted d
		JOIN users u ON u.id = d.wholesaler_id
	`

	d, err := scanDeal(r.pool.QueryRow(ctx, query,
		params.WholesalerID,
		params.Title,
		params.State,
		params.City,
		params.PropertyType,
		params.AskingPrice,
	))
	if err != nil {
		return Deal{}, fmt.Errorf("deal: create: %w", err)
	}
	return d, nil
}

func (r *PGRepository) GetByID(ctx context.Context, dealID string) (Deal, error) {
	const query = `
		SELECT ` + dealColumns + `
		FROM deals d
		JOIN users u ON u.id = d.wholesaler_id
		WHERE d.id = $1
	`

	d, err := scanDeal(r.pool.QueryRow(ctx, query, dealID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deal{}, ErrNotFound
		}
		return Deal{}, fmt.Errorf("deal: get by id: %w", err)
	}
	return d, nil
}

func (r *PGRepository) ListActive(ctx context.Context) ([]Deal, error) {
	const query = `
		SELECT ` + dealColumns + `
		FROM deals d
		JOIN users u ON u.id = d.wholesaler_id
		WHERE d.status = 'active'
		ORDER BY d.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("deal: list active: %w", err)
	}
	defer rows.Close()

	out := make([]Deal, 0, 16)
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("deal: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("deal: iterate: %w", err)
	}
	return out, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, dealID string, status Status) (Deal, error) {
	const query = `
		WITH updated AS (
			UPDATE deals SET status = $2::deal_status, updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + dealColumns + `
		FROM updated d
		JOIN users u ON u.id = d.wholesaler_id
	`

	d, err := scanDeal(r.pool.QueryRow(ctx, query, dealID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deal{}, ErrNotFound
		}
		return Deal{}, fmt.Errorf("deal: update status: %w", err)
	}
	return d, nil
}

func scanDeal(row pgx.Row) (Deal, error) {
	var (
		d            Deal
		propertyType string
		status       string
	)
	err := row.Scan(
		&d.ID,
		&d.WholesalerID,
		&d.Title,
		&d.State,
		&d.City,
		&propertyType,
		&d.AskingPrice,
		&status,
		&d.WholesalerReputation,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return Deal{}, err
	}

	if d.PropertyType, err = ParsePropertyType(propertyType); err != nil {
		return Deal{}, err
	}
	d.Status = Status(status)
	return d, nil
}
