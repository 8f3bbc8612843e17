package infra

import (
	"context"
	"os"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const defaultImage = "postgres:16"

// PGContainer owns a disposable PostgreSQL started for a test run. Its zero
// value represents an externally managed database, where Terminate is a no-op.
type PGContainer struct {
	c *postgres.PostgresContainer
}

// StartPostgres16 returns a DSN for integration tests. Resolution order:
// the explicit overrideDSN, the DEALFLOW_TEST_PG_DSN environment variable,
// and finally a fresh container (image overridable via DEALFLOW_TEST_PG_IMAGE).
func StartPostgres16(ctx context.Context, overrideDSN string) (*PGContainer, string, error) {
	if overrideDSN != "" {
		return &PGContainer{}, overrideDSN, nil
	}
	if dsn := os.Getenv("DEALFLOW_TEST_PG_DSN"); dsn != "" {
		return &PGContainer{}, dsn, nil
	}

	image := os.Getenv("DEALFLOW_TEST_PG_IMAGE")
	if image == "" {
		image = defaultImage
	}

	pgC, err := postgres.Run(ctx,
		image,
		postgres.WithDatabase("dealflow_test"),
		postgres.WithUsername("dealflow"),
		postgres.WithPassword("dealflow"),
	)
	if err != nil {
		return nil, "", err
	}

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, "", err
	}
	return &PGContainer{c: pgC}, dsn, nil
}

func (p *PGContainer) Terminate(ctx context.Context) error {
	if p == nil || p.c == nil {
		return nil
	}
	return p.c.Terminate(ctx)
}
