package ensemble

import (
	"context"
	"testing"

	"tidymark/internal/bookmark"
)

type stubMethod struct {
	name    string
	result  MethodResult
	abstain bool
	calls   int
}

func (m *stubMethod) Name() string { return m.name }

func (m *stubMethod) Classify(_ context.Context, _ bookmark.Features) (MethodResult, bool) {
	m.calls++
	if m.abstain {
		return MethodResult{}, false
	}
	return m.result, true
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	first := &stubMethod{name: MethodRules, result: MethodResult{Category: "A", Confidence: 0.5}}
	second := &stubMethod{name: MethodBayes, result: MethodResult{Category: "B", Confidence: 0.5}}

	pipeline := NewPipeline([]Method{first, second}, PipelineOptions{})
	results := pipeline.Run(context.Background(), bookmark.Features{})

	if len(results) != 2 {
		t.Fatalf("results: got %d, want 2", len(results))
	}
	if results[0].Method != MethodRules || results[1].Method != MethodBayes {
		t.Errorf("method tags: %q, %q", results[0].Method, results[1].Method)
	}
}

func TestPipelineSkipsAbstainingStages(t *testing.T) {
	abstainer := &stubMethod{name: MethodRules, abstain: true}
	voter := &stubMethod{name: MethodSemantic, result: MethodResult{Category: "A", Confidence: 0.4}}

	pipeline := NewPipeline([]Method{abstainer, voter}, PipelineOptions{})
	results := pipeline.Run(context.Background(), bookmark.Features{})

	if len(results) != 1 {
		t.Fatalf("results: got %d, want 1", len(results))
	}
	if results[0].Method != MethodSemantic {
		t.Errorf("method: got %q", results[0].Method)
	}
}

func TestPipelineFastPathSkipsRemaining(t *testing.T) {
	confident := &stubMethod{name: MethodRules, result: MethodResult{Category: "A", Confidence: 0.99}}
	skipped := &stubMethod{name: MethodLLM, result: MethodResult{Category: "B", Confidence: 0.9}}

	pipeline := NewPipeline([]Method{confident, skipped}, PipelineOptions{
		Weights:           map[string]float64{MethodRules: 0.35, MethodLLM: 0.5},
		FastPath:          true,
		FastPathThreshold: 0.95,
	})
	pipeline.Run(context.Background(), bookmark.Features{})

	if skipped.calls != 0 {
		t.Error("fast path should skip the remaining stage")
	}
}

func TestPipelineFastPathDisabledConsultsAll(t *testing.T) {
	confident := &stubMethod{name: MethodRules, result: MethodResult{Category: "A", Confidence: 0.99}}
	consulted := &stubMethod{name: MethodLLM, result: MethodResult{Category: "B", Confidence: 0.9}}

	pipeline := NewPipeline([]Method{confident, consulted}, PipelineOptions{
		Weights: map[string]float64{MethodRules: 0.35, MethodLLM: 0.5},
	})
	results := pipeline.Run(context.Background(), bookmark.Features{})

	if consulted.calls != 1 {
		t.Error("all stages should run with the fast path disabled")
	}
	if len(results) != 2 {
		t.Errorf("results: got %d, want 2", len(results))
	}
}

func TestPipelineIgnoresNilStages(t *testing.T) {
	voter := &stubMethod{name: MethodRules, result: MethodResult{Category: "A", Confidence: 0.4}}
	pipeline := NewPipeline([]Method{nil, voter, nil}, PipelineOptions{})
	results := pipeline.Run(context.Background(), bookmark.Features{})
	if len(results) != 1 {
		t.Errorf("results: got %d, want 1", len(results))
	}
}
