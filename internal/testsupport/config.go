// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"tidymark/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a hermetic config for tests: the store lives in a temp
// directory and the methods that need external data or network are off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "history.db")
	cfg.AI.UseBayes = false
	cfg.AI.UseLLM = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithThreshold overrides the confidence threshold.
func WithThreshold(threshold float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AI.ConfidenceThreshold = threshold
	}
}

// WithFastPath toggles the pipeline fast path.
func WithFastPath(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AI.FastPath = enabled
	}
}

// WithRuleGroup adds or replaces one category's rule group and appends the
// category to the processing order when absent.
func WithRuleGroup(category string, group config.RuleGroup) ConfigOption {
	return func(cfg *config.Config) {
		if cfg.Rules.Categories == nil {
			cfg.Rules.Categories = make(map[string]config.RuleGroup)
		}
		if _, exists := cfg.Rules.Categories[category]; !exists {
			cfg.Rules.ProcessingOrder = append(cfg.Rules.ProcessingOrder, category)
		}
		cfg.Rules.Categories[category] = group
	}
}
