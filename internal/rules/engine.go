package rules

import (
	"context"
	"fmt"
	"log/slog"

	"tidymark/internal/bookmark"
	"tidymark/internal/config"
	"tidymark/internal/ensemble"
	"tidymark/internal/logging"
	"tidymark/internal/services"
)

// group holds a category's compiled rules in processing order position.
type group struct {
	category string
	rules    []rule
	minScore float64
	// maxWeight is the sum of usable rule weights, the normalizing constant
	// that keeps confidence monotonic in score while bounded by 1.
	maxWeight float64
}

// Engine evaluates the compiled rule set against feature records. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	groups []group
	logger *slog.Logger
}

// NewEngine compiles the configured rule groups. Malformed rules are fatal;
// rules with an empty keyword set are skipped with a warning, and a group
// left without usable rules is surfaced as a warning rather than silently
// dropped.
func NewEngine(cfg config.Rules, logger *slog.Logger) (*Engine, error) {
	logger = logging.NewComponentLogger(logger, "rules")

	groups := make([]group, 0, len(cfg.Categories))
	ruleCount := 0
	for _, category := range cfg.ProcessingOrder {
		spec, ok := cfg.Categories[category]
		if !ok {
			continue
		}
		g := group{category: category, minScore: spec.MinScore}
		if g.minScore <= 0 {
			g.minScore = cfg.MinScore
		}
		for i, ruleSpec := range spec.Rules {
			compiled, err := compileRule(category, i, ruleSpec)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "rules", "compile",
					fmt.Sprintf("category %q rule %d", category, i), err)
			}
			if compiled.empty() {
				logger.Warn("skipping rule with empty keyword set",
					logging.Args(
						logging.String("rule", compiled.id),
						logging.String(logging.FieldImpact, "rule never fires"),
					)...)
				continue
			}
			g.rules = append(g.rules, compiled)
			g.maxWeight += compiled.weight
			ruleCount++
		}
		if len(g.rules) == 0 {
			logger.Warn("category has no usable rules",
				logging.Args(
					logging.String(logging.FieldCategory, category),
					logging.String(logging.FieldImpact, "category can only win via other methods"),
				)...)
		}
		groups = append(groups, g)
	}

	logger.Debug("compiled rule set",
		logging.Args(logging.Int("groups", len(groups)), logging.Int("rules", ruleCount))...)

	return &Engine{groups: groups, logger: logger}, nil
}

// Name implements ensemble.Method.
func (e *Engine) Name() string { return ensemble.MethodRules }

// Classify implements ensemble.Method by delegating to Evaluate.
func (e *Engine) Classify(_ context.Context, features bookmark.Features) (ensemble.MethodResult, bool) {
	return e.Evaluate(features)
}

// candidate is the per-category score accumulator for one evaluation; it
// lives only for the duration of the call.
type candidate struct {
	group       *group
	score       float64
	matched     []string
	subcategory string
}

// Evaluate scores every rule group against the features and returns the best
// category as a method result, or false when nothing clears its group's
// minimum score.
func (e *Engine) Evaluate(features bookmark.Features) (ensemble.MethodResult, bool) {
	var best *candidate

	for i := range e.groups {
		g := &e.groups[i]
		cand := candidate{group: g}
		for _, r := range g.rules {
			target := r.target(features)
			if !r.fires(target, features) {
				continue
			}
			if r.excluded(target, features) {
				// A matched exclusion zeroes the rule's contribution
				// outright.
				continue
			}
			cand.score += r.weight
			cand.matched = append(cand.matched, fmt.Sprintf("rule %s matched (+%g)", r.id, r.weight))
			if r.splitSegment > 0 && cand.subcategory == "" {
				if idx := r.splitSegment - 1; idx < len(features.PathSegments) {
					cand.subcategory = features.PathSegments[idx]
				}
			}
		}
		if cand.score <= 0 {
			continue
		}
		// Strict comparison keeps the earlier group on ties, matching the
		// processing order.
		if best == nil || cand.score > best.score {
			copied := cand
			best = &copied
		}
	}

	if best == nil || best.score < best.group.minScore {
		return ensemble.MethodResult{}, false
	}

	confidence := 1.0
	if best.group.maxWeight > 0 {
		confidence = best.score / best.group.maxWeight
		if confidence > 1 {
			confidence = 1
		}
	}

	return ensemble.MethodResult{
		Category:    best.group.category,
		Confidence:  confidence,
		Subcategory: best.subcategory,
		Reasoning:   best.matched,
		Method:      ensemble.MethodRules,
	}, true
}

// Categories returns the category names in processing order, used by callers
// that need the rule-known category set (e.g. the LLM prompt).
func (e *Engine) Categories() []string {
	names := make([]string, 0, len(e.groups))
	for _, g := range e.groups {
		names = append(names, g.category)
	}
	return names
}
