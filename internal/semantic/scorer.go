// Package semantic scores bookmarks by cosine similarity between the
// bookmark's token fingerprint and per-category keyword profiles derived from
// the configured rules. It is a lightweight, deterministic stand-in for a
// full embedding model.
package semantic

import (
	"context"
	"fmt"
	"log/slog"

	"tidymark/internal/bookmark"
	"tidymark/internal/config"
	"tidymark/internal/ensemble"
	"tidymark/internal/logging"
	"tidymark/internal/textutil"
)

// minSimilarity is the floor under which the scorer abstains rather than
// voting on noise.
const minSimilarity = 0.12

type categoryProfile struct {
	category    string
	fingerprint *textutil.Fingerprint
}

// Scorer holds the per-category keyword fingerprints. Read-only after
// construction.
type Scorer struct {
	profiles []categoryProfile
	idf      map[string]float64
	logger   *slog.Logger
}

// NewScorer builds category profiles from the rule configuration's keyword
// lists. Categories whose keywords produce no tokens are skipped.
func NewScorer(cfg config.Rules, logger *slog.Logger) *Scorer {
	logger = logging.NewComponentLogger(logger, "semantic")

	corpus := textutil.NewCorpus()
	raw := make([]categoryProfile, 0, len(cfg.Categories))
	for _, category := range cfg.ProcessingOrder {
		group, ok := cfg.Categories[category]
		if !ok {
			continue
		}
		keywords := make([]string, 0, 16)
		for _, rule := range group.Rules {
			keywords = append(keywords, rule.Keywords...)
		}
		fingerprint := textutil.NewFingerprintFromTokens(keywords)
		if fingerprint == nil {
			continue
		}
		corpus.Add(fingerprint)
		raw = append(raw, categoryProfile{category: category, fingerprint: fingerprint})
	}

	idf := corpus.IDF()
	profiles := make([]categoryProfile, 0, len(raw))
	for _, profile := range raw {
		weighted := profile.fingerprint.WithIDF(idf)
		if weighted == nil {
			continue
		}
		profiles = append(profiles, categoryProfile{category: profile.category, fingerprint: weighted})
	}

	logger.Debug("built category profiles", logging.Args(logging.Int("profiles", len(profiles)))...)
	return &Scorer{profiles: profiles, idf: idf, logger: logger}
}

// Name implements ensemble.Method.
func (s *Scorer) Name() string { return ensemble.MethodSemantic }

// Classify compares the bookmark's title, domain, and path tokens against
// every category profile and votes for the most similar one. Profiles are
// iterated in processing order, so equal similarities resolve
// deterministically to the earlier category.
func (s *Scorer) Classify(_ context.Context, features bookmark.Features) (ensemble.MethodResult, bool) {
	if len(s.profiles) == 0 {
		return ensemble.MethodResult{}, false
	}

	text := features.Title + " " + features.Domain + " " + features.Path()
	fingerprint := textutil.NewFingerprint(text).WithIDF(s.idf)
	if fingerprint == nil {
		return ensemble.MethodResult{}, false
	}

	bestCategory := ""
	bestSimilarity := 0.0
	for _, profile := range s.profiles {
		similarity := textutil.Cosine(fingerprint, profile.fingerprint)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			bestCategory = profile.category
		}
	}

	if bestCategory == "" || bestSimilarity < minSimilarity {
		return ensemble.MethodResult{}, false
	}

	return ensemble.MethodResult{
		Category:   bestCategory,
		Confidence: bestSimilarity,
		Reasoning: []string{
			fmt.Sprintf("semantic similarity %.2f to %q keyword profile", bestSimilarity, bestCategory),
		},
		Method: ensemble.MethodSemantic,
	}, true
}
