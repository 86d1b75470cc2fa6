// Package batch classifies whole bookmark collections with a bounded worker
// pool, persisting outcomes to the history store and reporting progress.
package batch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/jedib0t/go-pretty/v6/progress"
	"golang.org/x/sync/errgroup"

	"tidymark/internal/bookmark"
	"tidymark/internal/classify"
	"tidymark/internal/logging"
	"tidymark/internal/services"
	"tidymark/internal/store"
)

// Bookmark is one input to a batch run.
type Bookmark struct {
	URL   string
	Title string
}

// Summary aggregates a finished run.
type Summary struct {
	RunID        string
	Total        int
	Classified   int
	Unclassified int
	CacheHits    uint64
	CacheMisses  uint64
	Duration     time.Duration
	Results      []classify.Result
}

// Options configures a Runner.
type Options struct {
	Workers  int
	Store    *store.Store // optional; nil disables persistence
	Progress io.Writer    // optional; nil disables the progress bar
	Logger   *slog.Logger
}

// Runner classifies bookmark collections.
type Runner struct {
	classifier *classify.Classifier
	opts       Options
	logger     *slog.Logger
}

// NewRunner builds a batch runner around an assembled classifier.
func NewRunner(classifier *classify.Classifier, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Runner{
		classifier: classifier,
		opts:       opts,
		logger:     logging.NewComponentLogger(opts.Logger, "batch"),
	}
}

// Run classifies every bookmark. Results keep input order. When a store is
// configured the run takes a file lock so concurrent invocations cannot
// interleave writes into the same database.
func (r *Runner) Run(ctx context.Context, bookmarks []Bookmark) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		Total:   len(bookmarks),
		Results: make([]classify.Result, len(bookmarks)),
	}
	if len(bookmarks) == 0 {
		return summary, nil
	}

	if r.opts.Store != nil {
		lock := flock.New(r.opts.Store.Path() + ".lock")
		ok, err := lock.TryLock()
		if err != nil {
			return nil, services.Wrap(services.ErrStore, "batch", "lock", "acquire run lock", err)
		}
		if !ok {
			return nil, services.Wrap(services.ErrStore, "batch", "lock", "another classification run is already writing to this history database", nil)
		}
		defer func() { _ = lock.Unlock() }()

		runID, err := r.opts.Store.BeginRun(ctx)
		if err != nil {
			return nil, err
		}
		summary.RunID = runID
	}

	var tracker *progress.Tracker
	var pw progress.Writer
	if r.opts.Progress != nil {
		pw = progress.NewWriter()
		pw.SetOutputWriter(r.opts.Progress)
		pw.SetUpdateFrequency(100 * time.Millisecond)
		tracker = &progress.Tracker{
			Message: "classifying bookmarks",
			Total:   int64(len(bookmarks)),
			Units:   progress.UnitsDefault,
		}
		pw.AppendTracker(tracker)
		go pw.Render()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.Workers)

	var mu sync.Mutex
	for i, input := range bookmarks {
		group.Go(func() error {
			result, err := r.classifier.Classify(groupCtx, input.URL, input.Title)
			if err != nil {
				return err
			}
			mu.Lock()
			summary.Results[i] = result
			mu.Unlock()
			if tracker != nil {
				tracker.Increment(1)
			}
			return nil
		})
	}
	err := group.Wait()

	if tracker != nil {
		if err != nil {
			tracker.MarkAsErrored()
		} else {
			tracker.MarkAsDone()
		}
		pw.Stop()
	}
	if err != nil {
		return nil, err
	}

	for _, result := range summary.Results {
		if result.Unclassified() {
			summary.Unclassified++
		} else {
			summary.Classified++
		}
	}
	summary.CacheHits, summary.CacheMisses = r.classifier.CacheStats()
	summary.Duration = time.Since(start)

	if r.opts.Store != nil {
		if err := r.persist(ctx, summary); err != nil {
			return nil, err
		}
	}

	r.logger.Info("batch run complete",
		logging.Int("total", summary.Total),
		logging.Int("classified", summary.Classified),
		logging.Int("unclassified", summary.Unclassified),
		logging.Duration("duration", summary.Duration))

	return summary, nil
}

// persist writes results sequentially; SQLite allows one writer at a time and
// the batch is already fully classified by now.
func (r *Runner) persist(ctx context.Context, summary *Summary) error {
	for _, result := range summary.Results {
		features := bookmark.Extract(result.URL, result.Title)
		record := store.Record{
			RunID:        summary.RunID,
			URL:          result.URL,
			Title:        result.Title,
			Domain:       features.Domain,
			Category:     result.Category,
			Subject:      result.Subject,
			ResourceType: result.ResourceType,
			Subcategory:  result.Subcategory,
			Confidence:   result.Confidence,
			Methods:      result.Methods,
		}
		if err := r.opts.Store.SaveResult(ctx, record); err != nil {
			return err
		}
	}
	return r.opts.Store.FinishRun(ctx, store.RunSummary{
		ID:           summary.RunID,
		Total:        summary.Total,
		Classified:   summary.Classified,
		Unclassified: summary.Unclassified,
		CacheHits:    int(summary.CacheHits),
		CacheMisses:  int(summary.CacheMisses),
	})
}
