// Package profile scores bookmarks from the user's own classification
// history: a domain that has repeatedly landed in one category is a strong
// hint for the next bookmark from that domain. The scorer is fed from the
// history store at startup and learns as new classifications complete.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"tidymark/internal/bookmark"
	"tidymark/internal/ensemble"
	"tidymark/internal/logging"
)

// minObservations is how often a domain must have been seen before the
// scorer votes at all.
const minObservations = 2

// maxConfidence keeps the profile from claiming certainty; history is a
// prior, not evidence about the bookmark at hand.
const maxConfidence = 0.95

// Scorer tracks per-domain category counts. Safe for concurrent use; Observe
// may run while classifications are in flight.
type Scorer struct {
	mu      sync.RWMutex
	domains map[string]map[string]int
	logger  *slog.Logger
}

// NewScorer creates an empty profile scorer.
func NewScorer(logger *slog.Logger) *Scorer {
	return &Scorer{
		domains: make(map[string]map[string]int),
		logger:  logging.NewComponentLogger(logger, "profile"),
	}
}

// Observe records that a bookmark from domain was classified into category.
// Unclassified outcomes are not learned from.
func (s *Scorer) Observe(domain, category string) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	category = strings.TrimSpace(category)
	if domain == "" || category == "" || category == ensemble.Unclassified {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	counts, ok := s.domains[domain]
	if !ok {
		counts = make(map[string]int, 2)
		s.domains[domain] = counts
	}
	counts[category]++
}

// ObserveCounts bulk-loads historical counts, typically from the history
// store at startup.
func (s *Scorer) ObserveCounts(counts map[string]map[string]int) {
	for domain, categories := range counts {
		for category, count := range categories {
			for i := 0; i < count; i++ {
				s.Observe(domain, category)
			}
		}
	}
}

// Name implements ensemble.Method.
func (s *Scorer) Name() string { return ensemble.MethodProfile }

// Classify votes for the dominant historical category of the bookmark's
// domain. Confidence is the category's share of the domain's history, capped
// below certainty; ties resolve to the lexicographically smaller category.
func (s *Scorer) Classify(_ context.Context, features bookmark.Features) (ensemble.MethodResult, bool) {
	domain := strings.ToLower(features.Domain)
	if domain == "" {
		return ensemble.MethodResult{}, false
	}

	s.mu.RLock()
	counts := s.domains[domain]
	total := 0
	type pair struct {
		category string
		count    int
	}
	pairs := make([]pair, 0, len(counts))
	for category, count := range counts {
		total += count
		pairs = append(pairs, pair{category, count})
	}
	s.mu.RUnlock()

	if total < minObservations {
		return ensemble.MethodResult{}, false
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].category < pairs[j].category
	})

	best := pairs[0]
	confidence := float64(best.count) / float64(total)
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return ensemble.MethodResult{
		Category:   best.category,
		Confidence: confidence,
		Reasoning: []string{
			fmt.Sprintf("domain %s classified as %q in %d of %d prior bookmarks", domain, best.category, best.count, total),
		},
		Method: ensemble.MethodProfile,
	}, true
}

// Domains returns how many distinct domains the profile has seen.
func (s *Scorer) Domains() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.domains)
}
