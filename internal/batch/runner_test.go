package batch

import (
	"context"
	"testing"

	"tidymark/internal/classify"
	"tidymark/internal/logging"
	"tidymark/internal/testsupport"
)

func testClassifier(t *testing.T) *classify.Classifier {
	t.Helper()
	c, err := classify.New(testsupport.NewConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("classify.New: %v", err)
	}
	return c
}

func TestRunEmptyInput(t *testing.T) {
	runner := NewRunner(testClassifier(t), Options{Logger: logging.NewNop()})
	summary, err := runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 0 || len(summary.Results) != 0 {
		t.Fatalf("summary = %+v, want empty", summary)
	}
}

func TestRunKeepsInputOrder(t *testing.T) {
	runner := NewRunner(testClassifier(t), Options{Workers: 3, Logger: logging.NewNop()})

	bookmarks := []Bookmark{
		{URL: "https://github.com/a/a", Title: "programming notes"},
		{URL: "https://obscure-example.zz/x", Title: "zxqvw"},
		{URL: "https://huggingface.co/models", Title: "machine learning models"},
	}
	summary, err := runner.Run(context.Background(), bookmarks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 3 {
		t.Fatalf("total = %d, want 3", summary.Total)
	}
	for i, result := range summary.Results {
		if result.URL != bookmarks[i].URL {
			t.Fatalf("results[%d].URL = %q, want %q", i, result.URL, bookmarks[i].URL)
		}
	}
	if summary.Results[0].Category != "Tech/Code" {
		t.Fatalf("results[0] = %q, want Tech/Code", summary.Results[0].Category)
	}
	if !summary.Results[1].Unclassified() {
		t.Fatalf("results[1] = %q, want unclassified", summary.Results[1].Category)
	}
	if summary.Classified != 2 || summary.Unclassified != 1 {
		t.Fatalf("classified=%d unclassified=%d, want 2/1", summary.Classified, summary.Unclassified)
	}
}

func TestRunPersistsToStore(t *testing.T) {
	s := testsupport.OpenStore(t)

	runner := NewRunner(testClassifier(t), Options{
		Workers: 2,
		Store:   s,
		Logger:  logging.NewNop(),
	})

	bookmarks := []Bookmark{
		{URL: "https://github.com/a/a", Title: "programming notes"},
		{URL: "https://github.com/b/b", Title: "source code browser"},
	}
	summary, err := runner.Run(context.Background(), bookmarks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected a run id when a store is configured")
	}

	ctx := context.Background()
	records, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for _, record := range records {
		if record.RunID != summary.RunID {
			t.Fatalf("record run id = %q, want %q", record.RunID, summary.RunID)
		}
		if record.Domain != "github.com" {
			t.Fatalf("record domain = %q, want github.com", record.Domain)
		}
	}

	runs, err := s.Runs(ctx, 5)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Total != 2 {
		t.Fatalf("runs = %+v, want one run with total 2", runs)
	}
}

func TestRunCancelledContext(t *testing.T) {
	runner := NewRunner(testClassifier(t), Options{Logger: logging.NewNop()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Run(ctx, []Bookmark{{URL: "https://github.com/a/a", Title: "x"}}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
