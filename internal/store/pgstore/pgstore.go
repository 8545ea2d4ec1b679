// Package pgstore is a self-hosted store backend on PostgreSQL. Every table
// lives in a single JSONB-backed records table keyed by table name.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clubdir/internal/store"
	"clubdir/migrations"
)

const pageSize = 100

// Store wraps a pgxpool connection pool.
type Store struct {
	Pool *pgxpool.Pool
}

var _ store.Client = (*Store)(nil)

// New creates a connection pool and verifies it.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{Pool: pool}, nil
}

// RunMigrations applies the embedded schema.
func (s *Store) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.Pool.Close()
}

// Create inserts a row. Nil values are dropped.
func (s *Store) Create(ctx context.Context, table string, fields store.Fields) (store.Record, error) {
	clean := make(store.Fields, len(fields))
	for k, v := range fields {
		if v != nil {
			clean[k] = v
		}
	}
	payload, err := json.Marshal(clean)
	if err != nil {
		return store.Record{}, fmt.Errorf("encode fields: %w", err)
	}

	query := `
		INSERT INTO records (id, table_name, fields)
		VALUES ($1, $2, $3::jsonb)
		RETURNING id, fields, created_at
	`
	rec, err := scanRecord(s.Pool.QueryRow(ctx, query, store.NewRecordID(), table, string(payload)))
	if err != nil {
		return store.Record{}, &store.RemoteError{Op: "create", Table: table, Err: err}
	}
	return rec, nil
}

// Update merges fields into the row. Nil values clear columns.
func (s *Store) Update(ctx context.Context, table, id string, fields store.Fields) (store.Record, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return store.Record{}, fmt.Errorf("encode fields: %w", err)
	}

	query := `
		UPDATE records SET fields = jsonb_strip_nulls(fields || $3::jsonb)
		WHERE table_name = $1 AND id = $2
		RETURNING id, fields, created_at
	`
	rec, err := scanRecord(s.Pool.QueryRow(ctx, query, table, id, string(payload)))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, &store.RemoteError{Op: "update", Table: table, Err: err}
	}
	return rec, nil
}

// Find retrieves a row by id.
func (s *Store) Find(ctx context.Context, table, id string) (store.Record, error) {
	query := `SELECT id, fields, created_at FROM records WHERE table_name = $1 AND id = $2`

	rec, err := scanRecord(s.Pool.QueryRow(ctx, query, table, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, &store.RemoteError{Op: "find", Table: table, Err: err}
	}
	return rec, nil
}

// FirstPage returns at most min(MaxRecords, 100) rows.
func (s *Store) FirstPage(ctx context.Context, table string, q store.Query) ([]store.Record, error) {
	limit := pageSize
	if q.MaxRecords > 0 && q.MaxRecords < limit {
		limit = q.MaxRecords
	}
	return s.list(ctx, "firstPage", table, q, limit)
}

// All returns every matching row, honoring MaxRecords.
func (s *Store) All(ctx context.Context, table string, q store.Query) ([]store.Record, error) {
	return s.list(ctx, "all", table, q, q.MaxRecords)
}

func (s *Store) list(ctx context.Context, op, table string, q store.Query, limit int) ([]store.Record, error) {
	sql, args, err := BuildSelect(table, q, limit)
	if err != nil {
		return nil, &store.RemoteError{Op: op, Table: table, Err: err}
	}

	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &store.RemoteError{Op: op, Table: table, Err: err}
	}
	defer rows.Close()

	records := make([]store.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &store.RemoteError{Op: op, Table: table, Err: err}
		}
		rec.Fields = store.Project(rec.Fields, q.Fields)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.RemoteError{Op: op, Table: table, Err: err}
	}
	return records, nil
}

func scanRecord(row pgx.Row) (store.Record, error) {
	var (
		rec store.Record
		raw []byte
	)
	if err := row.Scan(&rec.ID, &raw, &rec.CreatedTime); err != nil {
		return store.Record{}, err
	}
	if err := json.Unmarshal(raw, &rec.Fields); err != nil {
		return store.Record{}, fmt.Errorf("decode fields: %w", err)
	}
	if rec.Fields == nil {
		rec.Fields = store.Fields{}
	}
	return rec, nil
}
