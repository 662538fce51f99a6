// Package db is the optional PostgreSQL backend. The servers always work on
// the in-memory stores; this package hydrates them at boot and snapshots
// them back, so the hot path never waits on the database.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer is the write surface shared by the pool and an open transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DB wraps a pgx connection pool shared by the repositories.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Accounts returns the account repository.
func (d *DB) Accounts() *AccountRepository {
	return &AccountRepository{pool: d.pool}
}

// Characters returns the character repository.
func (d *DB) Characters() *CharacterRepository {
	return &CharacterRepository{pool: d.pool}
}

// Inventories returns the inventory repository.
func (d *DB) Inventories() *InventoryRepository {
	return &InventoryRepository{pool: d.pool}
}
