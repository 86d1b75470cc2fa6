package semantic

import (
	"context"
	"testing"

	"tidymark/internal/bookmark"
	"tidymark/internal/config"
)

func testRules() config.Rules {
	return config.Rules{
		ProcessingOrder: []string{"AI", "Cooking"},
		Categories: map[string]config.RuleGroup{
			"AI": {Rules: []config.RuleSpec{
				{Match: "title", Keywords: []string{"machine learning", "neural network", "deep learning", "model training"}, Weight: 10},
			}},
			"Cooking": {Rules: []config.RuleSpec{
				{Match: "title", Keywords: []string{"recipe", "baking", "kitchen", "sourdough bread"}, Weight: 10},
			}},
		},
	}
}

func TestClassifyPicksClosestProfile(t *testing.T) {
	scorer := NewScorer(testRules(), nil)

	features := bookmark.Extract("https://example.com/posts/1", "Training a neural network from scratch")
	result, ok := scorer.Classify(context.Background(), features)
	if !ok {
		t.Fatal("expected a vote")
	}
	if result.Category != "AI" {
		t.Errorf("category: got %q, want AI", result.Category)
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Errorf("confidence out of range: %g", result.Confidence)
	}
}

func TestClassifyAbstainsOnUnrelatedText(t *testing.T) {
	scorer := NewScorer(testRules(), nil)

	features := bookmark.Extract("https://example.com/", "Quarterly municipal budget hearing")
	if _, ok := scorer.Classify(context.Background(), features); ok {
		t.Fatal("unrelated text should abstain")
	}
}

func TestClassifyAbstainsWithoutProfiles(t *testing.T) {
	scorer := NewScorer(config.Rules{}, nil)
	features := bookmark.Extract("https://example.com/", "Anything")
	if _, ok := scorer.Classify(context.Background(), features); ok {
		t.Fatal("scorer without profiles must abstain")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	scorer := NewScorer(testRules(), nil)
	features := bookmark.Extract("https://example.com/", "Sourdough bread baking recipe")

	first, ok := scorer.Classify(context.Background(), features)
	if !ok {
		t.Fatal("expected a vote")
	}
	for i := 0; i < 20; i++ {
		again, ok := scorer.Classify(context.Background(), features)
		if !ok || again.Category != first.Category || again.Confidence != first.Confidence {
			t.Fatalf("classification not deterministic: %+v vs %+v", first, again)
		}
	}
}
