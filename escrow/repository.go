package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrTransactionNotFound is returned when no transaction row exists for the provided identifier.
	ErrTransactionNotFound = errors.New("escrow: transaction not found")
)

// Repository handles read access to transactions and their status history.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads a transaction together with its full status history, ordered
// oldest first.
func (r *Repository) Get(ctx context.Context, transactionID string) (Transaction, error) {
	const query = `
		SELECT id, deal_id, wholesaler_id, investor_id, sale_price, purchase_price,
		       status::text, platform_fee, net_proceeds, completed_at, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	var (
		txn    Transaction
		status string
	)
	err := r.pool.QueryRow(ctx, query, transactionID).Scan(
		&txn.ID,
		&txn.DealID,
		&txn.WholesalerID,
		&txn.InvestorID,
		&txn.SalePrice,
		&txn.PurchasePrice,
		&status,
		&txn.PlatformFee,
		&txn.NetProceeds,
		&txn.CompletedAt,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, fmt.Errorf("escrow: get transaction: %w", err)
	}

	txn.Status, err = ParseStatus(status)
	if err != nil {
		return Transaction{}, err
	}

	txn.StatusHistory, err = r.history(ctx, transactionID)
	if err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// ListForUser returns transactions where the user is either party, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]Transaction, error) {
	const query = `
		SELECT id, deal_id, wholesaler_id, investor_id, sale_price, purchase_price,
		       status::text, platform_fee, net_proceeds, completed_at, created_at, updated_at
		FROM transactions
		WHERE wholesaler_id = $1 OR investor_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("escrow: list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]Transaction, 0, 8)
	for rows.Next() {
		var (
			txn    Transaction
			status string
		)
		if err := rows.Scan(
			&txn.ID,
			&txn.DealID,
			&txn.WholesalerID,
			&txn.InvestorID,
			&txn.SalePrice,
			&txn.PurchasePrice,
			&status,
			&txn.PlatformFee,
			&txn.NetProceeds,
			&txn.CompletedAt,
			&txn.CreatedAt,
			&txn.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("escrow: scan transaction: %w", err)
		}
		if txn.Status, err = ParseStatus(status); err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("escrow: iterate transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) history(ctx context.Context, transactionID string) ([]StatusChange, error) {
	const query = `
		SELECT status::text, changed_at
		FROM transaction_status_history
		WHERE transaction_id = $1
		ORDER BY changed_at, id
	`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("escrow: load status history: %w", err)
	}
	defer rows.Close()

	history := make([]StatusChange, 0, 4)
	for rows.Next() {
		var (
			entry  StatusChange
			status string
		)
		if err := rows.Scan(&status, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("escrow: scan status history: %w", err)
		}
		if entry.Status, err = ParseStatus(status); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("escrow: iterate status history: %w", err)
	}
	return history, nil
}
