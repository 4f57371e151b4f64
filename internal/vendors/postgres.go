package vendors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societyhub/societyhub/internal/platform/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS vendors (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
)`

// pgPool is the subset of *pgxpool.Pool the directory uses.
type pgPool interface {
	db.Beginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ pgPool = (*pgxpool.Pool)(nil)

// PGDirectory reads vendor names from the vendors table.
type PGDirectory struct {
	pool pgPool
}

// NewPGDirectory constructs a Postgres backed directory.
func NewPGDirectory(pool *pgxpool.Pool) *PGDirectory {
	return &PGDirectory{pool: pool}
}

// EnsureSchema creates the vendors table when it does not exist.
func (d *PGDirectory) EnsureSchema(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("vendors: ensure schema: %w", err)
	}
	return nil
}

// Upsert inserts or renames vendors in a single transaction.
func (d *PGDirectory) Upsert(ctx context.Context, vendors ...Vendor) error {
	const stmt = `
INSERT INTO vendors (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now(), deleted_at = NULL`
	for _, v := range vendors {
		if v.ID == "" || v.Name == "" {
			return ErrInvalidVendor
		}
	}
	return db.WithTx(ctx, d.pool, func(tx pgx.Tx) error {
		for _, v := range vendors {
			if _, err := tx.Exec(ctx, stmt, v.ID, v.Name); err != nil {
				return fmt.Errorf("vendors: upsert %s: %w", v.ID, err)
			}
		}
		return nil
	})
}

// VendorName returns ErrVendorNotFound for unknown or soft-deleted ids.
func (d *PGDirectory) VendorName(ctx context.Context, vendorID string) (string, error) {
	const query = `SELECT name FROM vendors WHERE id = $1 AND deleted_at IS NULL`
	var name string
	if err := d.pool.QueryRow(ctx, query, vendorID).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrVendorNotFound
		}
		return "", fmt.Errorf("vendors: lookup %s: %w", vendorID, err)
	}
	return name, nil
}
