// Package store persists finished analysis runs to Postgres. The database is
// optional: the pipeline runs fine without one.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the shared connection pool from a Postgres DSN.
func InitDB(ctx context.Context, dsn string) error {
	var err error
	once.Do(func() {
		if dsn == "" {
			err = fmt.Errorf("database DSN not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dsn)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the database connection pool.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
