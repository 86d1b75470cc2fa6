package config

import (
	"sort"
	"strings"
)

// normalize fills gaps and canonicalizes values after decoding. It never
// rejects input; structural checks belong to Validate.
func (c *Config) normalize() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	if c.AI.CacheSize <= 0 {
		c.AI.CacheSize = 10000
	}
	if c.AI.FastPathThreshold <= 0 {
		c.AI.FastPathThreshold = 0.95
	}
	if c.AI.BoostFactor <= 0 {
		c.AI.BoostFactor = 1.0
	}
	if c.AI.BoostTrigger <= 0 {
		c.AI.BoostTrigger = 0.7
	}
	if len(c.AI.MethodWeights) == 0 {
		c.AI.MethodWeights = Default().AI.MethodWeights
	}

	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 15
	}
	if c.LLM.RequestsPerMin <= 0 {
		c.LLM.RequestsPerMin = 30
	}

	if strings.TrimSpace(c.Store.Path) != "" {
		expanded, err := expandPath(c.Store.Path)
		if err != nil {
			return err
		}
		c.Store.Path = expanded
	}

	if c.Batch.Workers <= 0 {
		c.Batch.Workers = 4
	}

	if c.Rules.MinScore <= 0 {
		c.Rules.MinScore = 0.05
	}
	c.Rules.ProcessingOrder = normalizeOrder(c.Rules.ProcessingOrder, c.Rules.Categories)

	return nil
}

// normalizeOrder drops order entries without a rule group and appends any
// group missing from the order in lexicographic order, so iteration over
// groups is total and deterministic.
func normalizeOrder(order []string, groups map[string]RuleGroup) []string {
	seen := make(map[string]bool, len(order))
	result := make([]string, 0, len(groups))
	for _, name := range order {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if _, ok := groups[name]; !ok {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}

	rest := make([]string, 0, len(groups))
	for name := range groups {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(result, rest...)
}
