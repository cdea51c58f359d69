// Package auditstore is the optional Postgres sink for run manifests
// (spec.md §9 domain stack; never required for a run to complete — a nil
// Store is a valid ports.AuditSink-less configuration).
package auditstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"chillgrid/domain/run"
)

// Store persists run manifests to Postgres for cross-run history review.
type Store struct {
	db *sqlx.DB
}

// Open connects to a Postgres audit database and ensures the runs table
// exists.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to audit database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensuring audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	run_id TEXT PRIMARY KEY,
	input_fingerprint TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	final_confidence DOUBLE PRECISION NOT NULL,
	halted BOOLEAN NOT NULL,
	manifest JSONB NOT NULL
)`

// RecordRun implements ports.AuditSink.
func (s *Store) RecordRun(ctx context.Context, manifest *run.Manifest) error {
	payload, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (run_id, input_fingerprint, started_at, finished_at, final_confidence, halted, manifest)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			final_confidence = EXCLUDED.final_confidence,
			halted = EXCLUDED.halted,
			manifest = EXCLUDED.manifest`,
		string(manifest.ID), string(manifest.InputFingerprint),
		manifest.StartedAt.Time(), manifest.FinishedAt.Time(),
		manifest.FinalConfidence, manifest.Halted(), payload,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", manifest.ID, err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }
