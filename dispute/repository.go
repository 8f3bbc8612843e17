package dispute

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("dispute: not found")
	ErrForbidden = errors.New("dispute: forbidden")
	ErrBadStatus = errors.New("dispute: invalid status transition")
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `d.id, d.transaction_id, d.opened_by, d.reason, d.status::text, d.created_at, d.updated_at, d.resolved_at`

// List returns disputes on transactions the user is a party to, newest first.
func (r *Repository) List(ctx context.Context, userID string, transactionID string) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM disputes d
		JOIN transactions t ON t.id = d.transaction_id
		WHERE (t.wholesaler_id = $1 OR t.investor_id = $1)
	`
	args := []any{userID}
	if transactionID != "" {
		query += " AND d.transaction_id = $2"
		args = append(args, transactionID)
	}
	query += " ORDER BY d.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dispute: list: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, 8)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("dispute: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dispute: iterate: %w", err)
	}
	return out, nil
}

// Create opens a dispute, provided the opener is a party to the transaction.
func (r *Repository) Create(ctx context.Context, openerID, transactionID, reason string) (Record, error) {
	const query = `
		INSERT INTO disputes (transaction_id, opened_by, reason, status)
		SELECT $1, $2, $3, 'under_review'
		FROM transactions t
		WHERE t.id = $1 AND (t.wholesaler_id = $2 OR t.investor_id = $2)
		RETURNING id, transaction_id, opened_by, reason, status::text, created_at, updated_at, resolved_at
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, transactionID, openerID, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrForbidden
		}
		return Record{}, fmt.Errorf("dispute: create: %w", err)
	}
	return rec, nil
}

// GetByID loads a single dispute record.
func (r *Repository) GetByID(ctx context.Context, disputeID string) (Record, error) {
	const query = `
		SELECT ` + recordColumns + `
		FROM disputes d
		WHERE d.id = $1
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, disputeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("dispute: get: %w", err)
	}
	return rec, nil
}

// Resolve marks an open dispute as resolved.
func (r *Repository) Resolve(ctx context.Context, disputeID string) (Record, error) {
	const query = `
		UPDATE disputes d
		SET status = 'resolved', resolved_at = now(), updated_at = now()
		WHERE d.id = $1 AND d.status <> 'resolved'
		RETURNING d.id, d.transaction_id, d.opened_by, d.reason, d.status::text, d.created_at, d.updated_at, d.resolved_at
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, disputeID))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("dispute: resolve: %w", err)
	}

	var status Status
	if err := r.pool.QueryRow(ctx, `SELECT status::text FROM disputes WHERE id = $1`, disputeID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("dispute: resolve fetch: %w", err)
	}
	return Record{}, ErrBadStatus
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec    Record
		status string
	)
	err := row.Scan(
		&rec.ID,
		&rec.TransactionID,
		&rec.OpenedBy,
		&rec.Reason,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.ResolvedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	return rec, nil
}
