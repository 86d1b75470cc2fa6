// Package classify wires the classification methods, fusion, taxonomy
// normalization, and result cache into the single entry point the CLI and
// batch runner call.
package classify

import (
	"context"
	"log/slog"
	"time"

	"tidymark/internal/bayes"
	"tidymark/internal/bookmark"
	"tidymark/internal/config"
	"tidymark/internal/ensemble"
	"tidymark/internal/llmscorer"
	"tidymark/internal/logging"
	"tidymark/internal/profile"
	"tidymark/internal/resultcache"
	"tidymark/internal/rules"
	"tidymark/internal/semantic"
	"tidymark/internal/taxonomy"
)

// Result is one classified bookmark. Category keeps the fused label exactly
// as the rule configuration names it, which may be a two-level form like
// "Tech/Code"; Subject is that label's canonical subject after taxonomy
// normalization. Exports group by Category so the output mirrors the
// configured groups.
type Result struct {
	URL          string
	Title        string
	Category     string
	Subject      string
	ResourceType string
	Subcategory  string
	Confidence   float64
	Alternatives []ensemble.Alternative
	Methods      []string
	Reasoning    []string
	Cached       bool
	Duration     time.Duration
}

// Unclassified reports whether no category cleared the threshold.
func (r Result) Unclassified() bool {
	return r.Category == ensemble.Unclassified
}

// Classifier classifies bookmarks. Safe for concurrent use.
type Classifier struct {
	cfg          *config.Config
	engine       *rules.Engine
	pipeline     *ensemble.Pipeline
	standardizer *taxonomy.Standardizer
	cache        *resultcache.Cache[Result]
	profile      *profile.Scorer
	bayes        *bayes.Classifier
	logger       *slog.Logger
}

// Option adjusts construction, mainly so tests and the batch runner can
// inject pre-built methods.
type Option func(*options)

type options struct {
	profile *profile.Scorer
	bayes   *bayes.Classifier
	llm     ensemble.Method
}

// WithProfile supplies a profile scorer preloaded from history.
func WithProfile(s *profile.Scorer) Option {
	return func(o *options) { o.profile = s }
}

// WithBayes supplies a trained bayes classifier.
func WithBayes(c *bayes.Classifier) Option {
	return func(o *options) { o.bayes = c }
}

// WithLLM replaces the LLM stage, used by tests.
func WithLLM(m ensemble.Method) Option {
	return func(o *options) { o.llm = m }
}

// New builds a classifier from configuration. The rule engine must compile;
// every other method is optional and degrades to abstention.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Classifier, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	componentLogger := logging.NewComponentLogger(logger, "classify")

	engine, err := rules.NewEngine(cfg.Rules, logger)
	if err != nil {
		return nil, err
	}

	stages := []ensemble.Method{engine}

	if cfg.AI.UseBayes {
		if o.bayes == nil {
			o.bayes = bayes.NewClassifier(logger)
		}
		stages = append(stages, o.bayes)
	}
	if cfg.AI.UseSemantic {
		stages = append(stages, semantic.NewScorer(cfg.Rules, logger))
	}
	if cfg.AI.UseProfile {
		if o.profile == nil {
			o.profile = profile.NewScorer(logger)
		}
		stages = append(stages, o.profile)
	}
	if cfg.AI.UseLLM {
		if o.llm != nil {
			stages = append(stages, o.llm)
		} else if s := llmscorer.NewScorer(cfg.LLM, engine.Categories(), logger); s != nil {
			stages = append(stages, s)
		} else {
			componentLogger.Warn("llm method enabled but no api key configured, skipping")
		}
	}

	pipeline := ensemble.NewPipeline(stages, ensemble.PipelineOptions{
		Weights:           cfg.AI.MethodWeights,
		FastPath:          cfg.AI.FastPath,
		FastPathThreshold: cfg.AI.FastPathThreshold,
		Logger:            logger,
	})

	return &Classifier{
		cfg:          cfg,
		engine:       engine,
		pipeline:     pipeline,
		standardizer: taxonomy.NewStandardizer(cfg.Taxonomy),
		cache:        resultcache.New[Result](cfg.AI.CacheSize),
		profile:      o.profile,
		bayes:        o.bayes,
		logger:       componentLogger,
	}, nil
}

// Classify runs the full ensemble for one bookmark. Identical URL and title
// pairs are served from the cache; concurrent duplicates share one
// computation.
func (c *Classifier) Classify(ctx context.Context, url, title string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	features := bookmark.Extract(url, title)
	result, cached, err := c.cache.GetOrCompute(features.Key(), func() (Result, error) {
		computed := c.compute(ctx, features)
		// A cancellation mid-pipeline yields a degraded result built from
		// partial votes. Returning the error keeps it out of the cache.
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		return computed, nil
	})
	if err != nil {
		return Result{}, err
	}

	result.Cached = cached
	result.Duration = time.Since(start)

	if !cached && c.profile != nil && !result.Unclassified() {
		c.profile.Observe(features.Domain, result.Category)
	}

	c.logger.Debug("bookmark classified",
		logging.String(logging.FieldURL, url),
		logging.String(logging.FieldCategory, result.Category),
		logging.Float64("confidence", result.Confidence),
		logging.Bool("cached", cached),
		logging.Duration("duration", result.Duration))

	return result, nil
}

func (c *Classifier) compute(ctx context.Context, features bookmark.Features) Result {
	votes := c.pipeline.Run(ctx, features)
	fused := ensemble.Fuse(votes, ensemble.FuseOptions{
		Weights:      c.cfg.AI.MethodWeights,
		Threshold:    c.cfg.AI.ConfidenceThreshold,
		BoostFactor:  c.cfg.AI.BoostFactor,
		BoostTrigger: c.cfg.AI.BoostTrigger,
	})

	result := Result{
		URL:          features.URL,
		Title:        features.Title,
		Category:     fused.Category,
		Subcategory:  fused.Subcategory,
		Confidence:   fused.Confidence,
		Alternatives: fused.Alternatives,
		Methods:      fused.Methods,
		Reasoning:    fused.Reasoning,
	}

	if !result.Unclassified() {
		result.Subject, result.ResourceType = c.standardizer.DeriveFromLegacy(fused.Category, features.ContentType)
		if facet := fused.Facets[ensemble.FacetResourceType]; facet != "" {
			if normalized := c.standardizer.NormalizeResourceType(facet); normalized != "" {
				result.ResourceType = normalized
			}
		}
	}

	return result
}

// Categories lists the categories the rule engine can assign, in processing
// order.
func (c *Classifier) Categories() []string {
	return c.engine.Categories()
}

// TrainBayes fits the bayes model from labeled samples. A no-op when the
// bayes method is disabled.
func (c *Classifier) TrainBayes(samples []bayes.Sample) {
	if c.bayes == nil {
		return
	}
	c.bayes.Fit(samples)
}

// CacheStats reports cache hits and misses for the run summary.
func (c *Classifier) CacheStats() (hits, misses uint64) {
	return c.cache.Stats()
}
