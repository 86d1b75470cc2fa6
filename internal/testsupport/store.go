package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"tidymark/internal/store"
)

// OpenStore opens a history store in a temp directory and closes it when the
// test finishes.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// SeedResults inserts records under a fresh run and returns the run ID.
func SeedResults(t testing.TB, s *store.Store, records []store.Record) string {
	t.Helper()
	ctx := context.Background()
	runID, err := s.BeginRun(ctx)
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	for _, record := range records {
		record.RunID = runID
		if err := s.SaveResult(ctx, record); err != nil {
			t.Fatalf("save result: %v", err)
		}
	}
	return runID
}
