package matching

import (
	"context"
	"errors"
	"fmt"

	"dealflow/deal"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferencesRepository handles storage of investor buy boxes. A missing
// row is not an error: it reads back as the zero Preferences, which matches
// nothing.
type PreferencesRepository interface {
	GetForInvestor(ctx context.Context, investorID string) (Preferences, error)
	Upsert(ctx context.Context, investorID string, prefs Preferences) error
	ListInvestors(ctx context.Context) ([]Investor, error)
}

// PGPreferencesRepository implements PreferencesRepository backed by PostgreSQL.
type PGPreferencesRepository struct {
	pool *pgxpool.Pool
}

func NewPreferencesRepository(pool *pgxpool.Pool) *PGPreferencesRepository {
	return &PGPreferencesRepository{pool: pool}
}

func (r *PGPreferencesRepository) GetForInvestor(ctx context.Context, investorID string) (Preferences, error) {
	const query = `
		SELECT states, cities, property_types::text[], min_price, max_price, min_reputation
		FROM investor_preferences
		WHERE investor_id = $1
	`

	prefs, err := scanPreferences(r.pool.QueryRow(ctx, query, investorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Preferences{}, nil
		}
		return Preferences{}, fmt.Errorf("matching: get preferences: %w", err)
	}
	return prefs, nil
}

func (r *PGPreferencesRepository) Upsert(ctx context.Context, investorID string, prefs Preferences) error {
	types := make([]string, len(prefs.PropertyTypes))
	for i, t := range prefs.PropertyTypes {
		types[i] = string(t)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO investor_preferences (investor_id, states, cities, property_types, min_price, max_price, min_reputation)
		VALUES ($1,$2,$3,$4::property_type[],$5,$6,$7)
		ON CONFLICT (investor_id) DO UPDATE SET
			states = EXCLUDED.states,
			cities = EXCLUDED.cities,
			property_types = EXCLUDED.property_types,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			min_reputation = EXCLUDED.min_reputation,
			updated_at = now()
	`, investorID, prefs.States, prefs.Cities, types, prefs.MinPrice, prefs.MaxPrice, prefs.MinReputation)
	if err != nil {
		return fmt.Errorf("matching: upsert preferences: %w", err)
	}
	return nil
}

func (r *PGPreferencesRepository) ListInvestors(ctx context.Context) ([]Investor, error) {
	const query = `
		SELECT investor_id, states, cities, property_types::text[], min_price, max_price, min_reputation
		FROM investor_preferences
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("matching: list investors: %w", err)
	}
	defer rows.Close()

	out := make([]Investor, 0, 16)
	for rows.Next() {
		var (
			inv   Investor
			types []string
		)
		if err := rows.Scan(
			&inv.ID,
			&inv.Preferences.States,
			&inv.Preferences.Cities,
			&types,
			&inv.Preferences.MinPrice,
			&inv.Preferences.MaxPrice,
			&inv.Preferences.MinReputation,
		); err != nil {
			return nil, fmt.Errorf("matching: scan investor: %w", err)
		}
		inv.Preferences.PropertyTypes = toPropertyTypes(types)
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("matching: iterate investors: %w", err)
	}
	return out, nil
}

func scanPreferences(row pgx.Row) (Preferences, error) {
	var (
		prefs Preferences
		types []string
	)
	err := row.Scan(
		&prefs.States,
		&prefs.Cities,
		&types,
		&prefs.MinPrice,
		&prefs.MaxPrice,
		&prefs.MinReputation,
	)
	if err != nil {
		return Preferences{}, err
	}
	prefs.PropertyTypes = toPropertyTypes(types)
	return prefs, nil
}

func toPropertyTypes(raw []string) []deal.PropertyType {
	if len(raw) == 0 {
		return nil
	}
	out := make([]deal.PropertyType, len(raw))
	for i, s := range raw {
		out[i] = deal.PropertyType(s)
	}
	return out
}
