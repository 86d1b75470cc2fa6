package ensemble

import (
	"context"
	"log/slog"

	"tidymark/internal/bookmark"
	"tidymark/internal/logging"
)

// Pipeline runs classification methods as an ordered sequence of optional
// stages. The order encodes method priority (cheap and trusted first); the
// fast path may skip the remaining stages once a sufficiently confident
// result arrives.
type Pipeline struct {
	stages            []Method
	weights           map[string]float64
	fastPath          bool
	fastPathThreshold float64
	logger            *slog.Logger
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Weights           map[string]float64
	FastPath          bool
	FastPathThreshold float64
	Logger            *slog.Logger
}

// NewPipeline builds a pipeline over the given stages. Nil stages are
// skipped so callers can pass optional methods unconditionally.
func NewPipeline(stages []Method, opts PipelineOptions) *Pipeline {
	compact := make([]Method, 0, len(stages))
	for _, stage := range stages {
		if stage != nil {
			compact = append(compact, stage)
		}
	}
	threshold := opts.FastPathThreshold
	if threshold <= 0 {
		threshold = 0.95
	}
	return &Pipeline{
		stages:            compact,
		weights:           opts.Weights,
		fastPath:          opts.FastPath,
		fastPathThreshold: threshold,
		logger:            logging.NewComponentLogger(opts.Logger, "ensemble"),
	}
}

// Run collects results from each stage in order. With the fast path enabled,
// a stage whose raw confidence reaches the fast-path threshold (and whose
// weight is positive) ends the run early; this changes latency, never the
// per-stage results already collected.
func (p *Pipeline) Run(ctx context.Context, features bookmark.Features) []MethodResult {
	results := make([]MethodResult, 0, len(p.stages))
	for _, stage := range p.stages {
		if ctx.Err() != nil {
			break
		}
		result, ok := stage.Classify(ctx, features)
		if !ok {
			continue
		}
		result.Method = stage.Name()
		results = append(results, result)

		if p.fastPath && result.Confidence >= p.fastPathThreshold && p.weightOf(stage.Name()) > 0 {
			p.logger.Debug("fast path hit, skipping remaining methods",
				logging.Args(
					logging.String(logging.FieldMethod, stage.Name()),
					logging.Float64("confidence", result.Confidence),
				)...)
			break
		}
	}
	return results
}

func (p *Pipeline) weightOf(method string) float64 {
	if w, ok := p.weights[method]; ok {
		return w
	}
	return DefaultWeight
}
