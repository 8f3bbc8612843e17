package infra

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationsFS resolves to the repository's migrations directory relative to
// this source file, so tests work from any package working directory.
func migrationsFS() (fs.FS, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("infra: cannot locate migrations directory")
	}
	return os.DirFS(filepath.Join(filepath.Dir(file), "..", "..", "migrations")), nil
}

// ApplyMigrations runs every .sql migration in lexical order against the DSN
// and returns a ready pool. When isolate is true the schema objects are created
// inside a schema unique to this run, and the returned teardown drops it, so
// parallel test runs against a shared database cannot collide.
func ApplyMigrations(ctx context.Context, dsn string, isolate bool) (*pgxpool.Pool, func(context.Context) error, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("infra: parse dsn: %w", err)
	}

	teardown := func(context.Context) error { return nil }
	if isolate {
		schema := fmt.Sprintf("dealflow_run_%d", time.Now().UnixNano())
		if err := createSchema(ctx, dsn, schema); err != nil {
			return nil, nil, err
		}

		searchPath := fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize())
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, searchPath)
			return err
		}
		teardown = func(ctx context.Context) error {
			return dropSchema(ctx, dsn, schema)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("infra: open pool: %w", err)
	}

	dir, err := migrationsFS()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	files, err := fs.Glob(dir, "*.sql")
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("infra: list migrations: %w", err)
	}
	for _, name := range files { // fs.Glob returns sorted names
		sql, err := fs.ReadFile(dir, name)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("infra: read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("infra: apply migration %s: %w", name, err)
		}
	}

	return pool, teardown, nil
}

func createSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("infra: connect for schema setup: %w", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize()); err != nil {
		return fmt.Errorf("infra: create schema %s: %w", schema, err)
	}
	return nil
}

func dropSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("infra: connect for schema teardown: %w", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, "DROP SCHEMA IF EXISTS "+pgx.Identifier{schema}.Sanitize()+" CASCADE"); err != nil {
		return fmt.Errorf("infra: drop schema %s: %w", schema, err)
	}
	return nil
}
