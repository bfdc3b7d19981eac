// Package persistence is a scoped, versioned byte-stream store. It imposes
// no format on what it stores; callers serialize graphs, triplets, or plans
// however they like and hand this package the resulting bytes.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// ErrVersionMismatch is returned by Save when expectedVersion does not match
// the row currently stored under key.
var ErrVersionMismatch = errors.New("persistence: version mismatch")

// ErrNotFound is returned by Load when no row exists under key.
var ErrNotFound = errors.New("persistence: not found")

// Record is one opaque blob under a run-scoped key.
type Record struct {
	RunID   uuid.UUID
	Key     string
	Blob    []byte
	Version int64
}

// Store is the persistence collaborator. Every method is a scoped
// (key, blob) round-trip: the store never interprets what it stores.
type Store interface {
	SaveGraph(ctx context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error)
	LoadGraph(ctx context.Context, runID uuid.UUID, key string) ([]byte, error)
	SaveTriplets(ctx context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error)
	LoadTriplets(ctx context.Context, runID uuid.UUID, key string) ([]byte, error)
	SavePlan(ctx context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error)
	LoadPlan(ctx context.Context, runID uuid.UUID, key string) ([]byte, error)
	Close() error
}

// kind namespaces the three blob categories within one physical table.
type kind string

const (
	kindGraph    kind = "graph"
	kindTriplets kind = "triplets"
	kindPlan     kind = "plan"
)

// PostgresStore implements Store backed by Postgres via database/sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection using KGTOUR_DATABASE_URL (falling
// back to DATABASE_URL) and ensures the backing table exists.
func NewPostgresStore() (*PostgresStore, error) {
	dsn := os.Getenv("KGTOUR_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, errors.New("persistence: KGTOUR_DATABASE_URL/DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return NewPostgresStoreWithDB(db)
}

// NewPostgresStoreWithDB reuses an already-opened *sql.DB.
func NewPostgresStoreWithDB(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("persistence: db is required")
	}
	if err := ensureTable(db); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func ensureTable(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kgtour_blobs (
  run_id uuid NOT NULL,
  kind text NOT NULL,
  key text NOT NULL,
  blob bytea NOT NULL,
  version bigint NOT NULL DEFAULT 0,
  updated_at timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (run_id, kind, key)
);
`
	_, err := db.Exec(ddl)
	return err
}

func (s *PostgresStore) save(ctx context.Context, runID uuid.UUID, k kind, key string, blob []byte, expectedVersion int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var currentVersion int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM kgtour_blobs WHERE run_id=$1 AND kind=$2 AND key=$3`,
		runID, k, key).Scan(&currentVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if expectedVersion > 0 {
			return 0, fmt.Errorf("%w: expected %d but key missing", ErrVersionMismatch, expectedVersion)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kgtour_blobs (run_id, kind, key, blob, version) VALUES ($1,$2,$3,$4,1)`,
			runID, k, key, blob); err != nil {
			return 0, err
		}
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		return 1, nil
	case err != nil:
		return 0, err
	}

	if expectedVersion > 0 && currentVersion != expectedVersion {
		return 0, fmt.Errorf("%w: expected %d got %d", ErrVersionMismatch, expectedVersion, currentVersion)
	}
	nextVersion := currentVersion + 1
	if _, err := tx.ExecContext(ctx,
		`UPDATE kgtour_blobs SET blob=$1, version=$2, updated_at=now() WHERE run_id=$3 AND kind=$4 AND key=$5`,
		blob, nextVersion, runID, k, key); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return nextVersion, nil
}

func (s *PostgresStore) load(ctx context.Context, runID uuid.UUID, k kind, key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM kgtour_blobs WHERE run_id=$1 AND kind=$2 AND key=$3`,
		runID, k, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func (s *PostgresStore) SaveGraph(ctx context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error) {
	return s.save(ctx, runID, kindGraph, key, blob, expectedVersion)
}

func (s *PostgresStore) LoadGraph(ctx context.Context, runID uuid.UUID, key string) ([]byte, error) {
	return s.load(ctx, runID, kindGraph, key)
}

func (s *PostgresStore) SaveTriplets(ctx context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error) {
	return s.save(ctx, runID, kindTriplets, key, blob, expectedVersion)
}

func (s *PostgresStore) LoadTriplets(ctx context.Context, runID uuid.UUID, key string) ([]byte, error) {
	return s.load(ctx, runID, kindTriplets, key)
}

func (s *PostgresStore) SavePlan(ctx context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error) {
	return s.save(ctx, runID, kindPlan, key, blob, expectedVersion)
}

func (s *PostgresStore) LoadPlan(ctx context.Context, runID uuid.UUID, key string) ([]byte, error) {
	return s.load(ctx, runID, kindPlan, key)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NewRunID mints a fresh run identifier, the way signalstore/kvstore rows
// get stamped with a generated id per write.
func NewRunID() uuid.UUID {
	return uuid.New()
}
