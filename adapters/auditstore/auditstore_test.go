package auditstore

import (
	"context"
	"os"
	"testing"

	"chillgrid/domain/core"
	"chillgrid/domain/run"
)

func TestRecordRun_AgainstLiveDatabase(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping live test: DATABASE_URL not set")
	}

	store, err := Open(dsn)
	if err != nil {
		t.Fatalf("opening audit database: %v", err)
	}
	defer store.Close()

	m := run.New(run.Options{InputDir: "./data"}, core.InputFingerprint("abc123"))
	m.RecordStage(run.StageTiming{Confidence: 0.9})
	m.Finish()

	if err := store.RecordRun(context.Background(), m); err != nil {
		t.Fatalf("recording run: %v", err)
	}

	// Re-recording the same run ID must upsert rather than conflict.
	m.FinalConfidence = 0.5
	if err := store.RecordRun(context.Background(), m); err != nil {
		t.Fatalf("re-recording run: %v", err)
	}
}
