package rules

import (
	"reflect"
	"strings"
	"testing"

	"tidymark/internal/bookmark"
	"tidymark/internal/config"
)

func newTestEngine(t *testing.T, cfg config.Rules) *Engine {
	t.Helper()
	if cfg.MinScore == 0 {
		cfg.MinScore = 0.05
	}
	if len(cfg.ProcessingOrder) == 0 {
		for name := range cfg.Categories {
			cfg.ProcessingOrder = append(cfg.ProcessingOrder, name)
		}
	}
	engine, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestEvaluateDomainRule(t *testing.T) {
	// A single firing rule scores its full group weight, so confidence
	// normalizes to 1.0.
	engine := newTestEngine(t, config.Rules{
		ProcessingOrder: []string{"Tech/Code"},
		Categories: map[string]config.RuleGroup{
			"Tech/Code": {Rules: []config.RuleSpec{
				{Match: "domain", Keywords: []string{"github.com"}, Weight: 10},
			}},
		},
	})

	features := bookmark.Extract("https://github.com/golang/go", "The Go programming language")
	result, ok := engine.Evaluate(features)
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Category != "Tech/Code" {
		t.Errorf("category: got %q, want Tech/Code", result.Category)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence: got %g, want 1.0", result.Confidence)
	}
	if len(result.Reasoning) == 0 {
		t.Error("reasoning must describe the matched rule")
	}
}

func TestEvaluateExclusionZeroesRule(t *testing.T) {
	engine := newTestEngine(t, config.Rules{
		ProcessingOrder: []string{"Tech/Code"},
		Categories: map[string]config.RuleGroup{
			"Tech/Code": {Rules: []config.RuleSpec{
				{Match: "title", Keywords: []string{"github"}, Weight: 10, MustNotContain: []string{"gist"}},
			}},
		},
	})

	features := bookmark.Extract("https://github.com/someone", "My gist page on github")
	if _, ok := engine.Evaluate(features); ok {
		t.Fatal("excluded keyword present: rule must contribute zero and engine must abstain")
	}
}

func TestEvaluateExclusionVetoesAcrossFields(t *testing.T) {
	// The rule matches on domain, but the exclusion keyword appears only in
	// the title. The veto still applies.
	engine := newTestEngine(t, config.Rules{
		ProcessingOrder: []string{"Tech/Code"},
		Categories: map[string]config.RuleGroup{
			"Tech/Code": {Rules: []config.RuleSpec{
				{Match: "domain", Keywords: []string{"github.com"}, Weight: 10, MustNotContain: []string{"gist"}},
			}},
		},
	})

	features := bookmark.Extract("https://github.com/someone", "My gist page")
	if _, ok := engine.Evaluate(features); ok {
		t.Fatal("exclusion in title must zero a domain rule")
	}

	clean := bookmark.Extract("https://github.com/someone", "My project page")
	if _, ok := engine.Evaluate(clean); !ok {
		t.Fatal("rule should fire without the excluded keyword")
	}
}

func TestEvaluateWeightsSumPerCategory(t *testing.T) {
	engine := newTestEngine(t, config.Rules{
		ProcessingOrder: []string{"Tech"},
		Categories: map[string]config.RuleGroup{
			"Tech": {Rules: []config.RuleSpec{
				{Match: "domain", Keywords: []string{"github.com"}, Weight: 10},
				{Match: "title", Keywords: []string{"code"}, Weight: 5},
				{Match: "title", Keywords: []string{"never-matches"}, Weight: 85},
			}},
		},
	})

	features := bookmark.Extract("https://github.com/x/y", "Sample code")
	result, ok := engine.Evaluate(features)
	if !ok {
		t.Fatal("expected a result")
	}
	// 15 of a possible 100.
	if result.Confidence != 0.15 {
		t.Errorf("confidence: got %g, want 0.15", result.Confidence)
	}
}

func TestEvaluateTieBreakPrefersProcessingOrder(t *testing.T) {
	cfg := config.Rules{
		ProcessingOrder: []string{"Second", "First"},
		Categories: map[string]config.RuleGroup{
			"First": {Rules: []config.RuleSpec{
				{Match: "domain", Keywords: []string{"example.com"}, Weight: 10},
			}},
			"Second": {Rules: []config.RuleSpec{
				{Match: "domain", Keywords: []string{"example.com"}, Weight: 10},
			}},
		},
	}
	engine := newTestEngine(t, cfg)

	features := bookmark.Extract("https://example.com/page", "Page")
	result, ok := engine.Evaluate(features)
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Category != "Second" {
		t.Errorf("tie-break: got %q, want Second (earlier in processing order)", result.Category)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	engine := newTestEngine(t, config.Rules{
		ProcessingOrder: []string{"A", "B", "C"},
		Categories: map[string]config.RuleGroup{
			"A": {Rules: []config.RuleSpec{{Match: "url", Keywords: []string{"example"}, Weight: 3}}},
			"B": {Rules: []config.RuleSpec{{Match: "url", Keywords: []string{"example"}, Weight: 3}}},
			"C": {Rules: []config.RuleSpec{{Match: "url", Keywords: []string{"example"}, Weight: 3}}},
		},
	})

	features := bookmark.Extract("https://example.com/", "Example")
	first, ok := engine.Evaluate(features)
	if !ok {
		t.Fatal("expected a result")
	}
	for i := 0; i < 50; i++ {
		again, ok := engine.Evaluate(features)
		if !ok || !reflect.DeepEqual(first, again) {
			t.Fatalf("evaluation not deterministic on call %d: %+v vs %+v", i, first, again)
		}
	}
}

func TestEvaluateMatcherKinds(t *testing.T) {
	tests := []struct {
		name    string
		rule    config.RuleSpec
		url     string
		title   string
		matches bool
	}{
		{"url_starts_with hit", config.RuleSpec{Match: "url_starts_with", Keywords: []string{"https://docs."}, Weight: 5}, "https://docs.python.org/3/", "Python docs", true},
		{"url_starts_with miss", config.RuleSpec{Match: "url_starts_with", Keywords: []string{"https://docs."}, Weight: 5}, "https://python.org/docs/", "Python", false},
		{"url_ends_with hit", config.RuleSpec{Match: "url_ends_with", Keywords: []string{".pdf"}, Weight: 5}, "https://example.com/paper.pdf", "Paper", true},
		{"url_matches_regex hit", config.RuleSpec{Match: "url_matches_regex", Keywords: []string{`github\.com/[\w-]+/[\w-]+`}, Weight: 5}, "https://github.com/golang/go", "Go", true},
		{"url_matches_regex miss", config.RuleSpec{Match: "url_matches_regex", Keywords: []string{`github\.com/[\w-]+/[\w-]+`}, Weight: 5}, "https://github.com/", "GitHub", false},
		{"path hit", config.RuleSpec{Match: "path", Keywords: []string{"docs"}, Weight: 5}, "https://example.com/docs/intro", "Intro", true},
		{"match_all_keywords_in all present", config.RuleSpec{Match: "match_all_keywords_in", Keywords: []string{"docs", "api"}, Weight: 5}, "https://example.com/docs/api/v2", "API", true},
		{"match_all_keywords_in partial", config.RuleSpec{Match: "match_all_keywords_in", Keywords: []string{"docs", "api"}, Weight: 5}, "https://example.com/docs/guide", "Guide", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, config.Rules{
				ProcessingOrder: []string{"Cat"},
				Categories:      map[string]config.RuleGroup{"Cat": {Rules: []config.RuleSpec{tt.rule}}},
			})
			_, ok := engine.Evaluate(bookmark.Extract(tt.url, tt.title))
			if ok != tt.matches {
				t.Errorf("matched=%v, want %v", ok, tt.matches)
			}
		})
	}
}

func TestEvaluateSplitByPathSegment(t *testing.T) {
	engine := newTestEngine(t, config.Rules{
		ProcessingOrder: []string{"Tech/GitHub"},
		Categories: map[string]config.RuleGroup{
			"Tech/GitHub": {Rules: []config.RuleSpec{
				{Match: "domain", Keywords: []string{"github.com"}, Weight: 10, SplitByPathSegment: 1},
			}},
		},
	})

	features := bookmark.Extract("https://github.com/torvalds/linux", "Linux")
	result, ok := engine.Evaluate(features)
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Subcategory != "torvalds" {
		t.Errorf("subcategory: got %q, want torvalds", result.Subcategory)
	}
}

func TestEvaluateMinScoreAbstains(t *testing.T) {
	engine := newTestEngine(t, config.Rules{
		ProcessingOrder: []string{"Cat"},
		MinScore:        5,
		Categories: map[string]config.RuleGroup{
			"Cat": {Rules: []config.RuleSpec{
				{Match: "title", Keywords: []string{"go"}, Weight: 1},
			}},
		},
	})

	if _, ok := engine.Evaluate(bookmark.Extract("https://example.com", "go tips")); ok {
		t.Fatal("score 1 below min_score 5 must abstain")
	}
}

func TestNewEngineRejectsMalformedRules(t *testing.T) {
	_, err := NewEngine(config.Rules{
		ProcessingOrder: []string{"Cat"},
		Categories: map[string]config.RuleGroup{
			"Cat": {Rules: []config.RuleSpec{{Match: "bogus", Keywords: []string{"x"}, Weight: 1}}},
		},
	}, nil)
	if err == nil {
		t.Fatal("expected configuration error for unknown matcher")
	}
	if !strings.Contains(err.Error(), "Cat") {
		t.Errorf("error should identify the offending rule: %v", err)
	}

	_, err = NewEngine(config.Rules{
		ProcessingOrder: []string{"Cat"},
		Categories: map[string]config.RuleGroup{
			"Cat": {Rules: []config.RuleSpec{{Match: "domain", Keywords: []string{"x"}, Weight: -1}}},
		},
	}, nil)
	if err == nil {
		t.Fatal("expected configuration error for negative weight")
	}
}

func TestNewEngineSkipsEmptyKeywordRule(t *testing.T) {
	engine, err := NewEngine(config.Rules{
		ProcessingOrder: []string{"Cat"},
		MinScore:        0.05,
		Categories: map[string]config.RuleGroup{
			"Cat": {Rules: []config.RuleSpec{
				{Match: "domain", Keywords: nil, Weight: 5},
				{Match: "domain", Keywords: []string{"example.com"}, Weight: 5},
			}},
		},
	}, nil)
	if err != nil {
		t.Fatalf("empty keyword set must not be fatal: %v", err)
	}
	result, ok := engine.Evaluate(bookmark.Extract("https://example.com", "Example"))
	if !ok {
		t.Fatal("surviving rule should still fire")
	}
	// Only the usable rule counts toward the normalizing constant.
	if result.Confidence != 1.0 {
		t.Errorf("confidence: got %g, want 1.0", result.Confidence)
	}
}

func TestCategoriesInProcessingOrder(t *testing.T) {
	engine := newTestEngine(t, config.Rules{
		ProcessingOrder: []string{"B", "A"},
		Categories: map[string]config.RuleGroup{
			"A": {Rules: []config.RuleSpec{{Match: "domain", Keywords: []string{"a.com"}, Weight: 1}}},
			"B": {Rules: []config.RuleSpec{{Match: "domain", Keywords: []string{"b.com"}, Weight: 1}}},
		},
	})
	want := []string{"B", "A"}
	if got := engine.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("categories: got %v, want %v", got, want)
	}
}
