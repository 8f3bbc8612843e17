package reputation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDuplicateRating signals the rater already rated this transaction.
	ErrDuplicateRating = errors.New("reputation: rating already submitted for transaction")
	// ErrRatedUserNotFound is returned when the rated user row does not exist.
	ErrRatedUserNotFound = errors.New("reputation: rated user not found")
)

// Repository defines the data access the service needs.
type Repository interface {
	Insert(ctx context.Context, rating Rating) (Rating, error)
	ListForUser(ctx context.Context, userID string) ([]Rating, error)
	UpdateUserReputation(ctx context.Context, userID string, score float64) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Insert(ctx context.Context, rating Rating) (Rating, error) {
	const query = `
		INSERT INTO ratings (transaction_id, rater_id, rated_user_id, score,
		                     communication, deal_quality, professionalism, timeliness, comment)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		rating.TransactionID,
		rating.RaterID,
		rating.RatedUserID,
		rating.Score,
		rating.Categories.Communication,
		rating.Categories.DealQuality,
		rating.Categories.Professionalism,
		rating.Categories.Timeliness,
		rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Rating{}, ErrDuplicateRating
		}
		return Rating{}, fmt.Errorf("reputation: insert rating: %w", err)
	}
	return rating, nil
}

func (r *PGRepository) ListForUser(ctx context.Context, userID string) ([]Rating, error) {
	const query = `
		SELECT id, transaction_id, rater_id, rated_user_id, score,
		       communication, deal_quality, professionalism, timeliness, comment, created_at
		FROM ratings
		WHERE rated_user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("reputation: list ratings: %w", err)
	}
	defer rows.Close()

	out := make([]Rating, 0, 8)
	for rows.Next() {
		var rating Rating
		if err := rows.Scan(
			&rating.ID,
			&rating.TransactionID,
			&rating.RaterID,
			&rating.RatedUserID,
			&rating.Score,
			&rating.Categories.Communication,
			&rating.Categories.DealQuality,
			&rating.Categories.Professionalism,
			&rating.Categories.Timeliness,
			&rating.Comment,
			&rating.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("reputation: scan rating: %w", err)
		}
		out = append(out, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reputation: iterate ratings: %w", err)
	}
	return out, nil
}

func (r *PGRepository) UpdateUserReputation(ctx context.Context, userID string, score float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET rating = $1, updated_at = now() WHERE id = $2`, score, userID)
	if err != nil {
		return fmt.Errorf("reputation: update user reputation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRatedUserNotFound
	}
	return nil
}
