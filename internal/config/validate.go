package config

import (
	"errors"
	"fmt"
	"regexp"
)

var knownMatchers = map[string]bool{
	"domain":                true,
	"title":                 true,
	"url":                   true,
	"path":                  true,
	"url_starts_with":       true,
	"url_ends_with":         true,
	"url_matches_regex":     true,
	"match_all_keywords_in": true,
}

// Validate ensures the configuration is usable. Rule problems are reported
// with the offending group and rule index so config authors can find them.
func (c *Config) Validate() error {
	if err := c.validateAI(); err != nil {
		return err
	}
	if err := c.validateRules(); err != nil {
		return err
	}
	if err := c.validateTaxonomy(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAI() error {
	if c.AI.ConfidenceThreshold < 0 || c.AI.ConfidenceThreshold > 1 {
		return errors.New("ai.confidence_threshold must be between 0 and 1")
	}
	if c.AI.FastPathThreshold < 0 || c.AI.FastPathThreshold > 1 {
		return errors.New("ai.fast_path_threshold must be between 0 and 1")
	}
	for method, weight := range c.AI.MethodWeights {
		if weight < 0 {
			return fmt.Errorf("ai.method_weights[%s] must not be negative", method)
		}
	}
	return nil
}

func (c *Config) validateRules() error {
	for name, group := range c.Rules.Categories {
		if group.MinScore < 0 {
			return fmt.Errorf("rules.categories[%s].min_score must not be negative", name)
		}
		for i, rule := range group.Rules {
			if !knownMatchers[rule.Match] {
				return fmt.Errorf("rules.categories[%s] rule %d: unknown matcher %q", name, i, rule.Match)
			}
			if rule.Weight <= 0 {
				return fmt.Errorf("rules.categories[%s] rule %d: weight must be positive, got %g", name, i, rule.Weight)
			}
			if rule.SplitByPathSegment < 0 {
				return fmt.Errorf("rules.categories[%s] rule %d: split_by_path_segment must not be negative", name, i)
			}
			if rule.Match == "url_matches_regex" {
				for _, keyword := range rule.Keywords {
					if _, err := regexp.Compile(keyword); err != nil {
						return fmt.Errorf("rules.categories[%s] rule %d: invalid pattern %q: %w", name, i, keyword, err)
					}
				}
			}
		}
	}
	return nil
}

func (c *Config) validateTaxonomy() error {
	seen := make(map[string]string)
	for _, entry := range c.Taxonomy.Subjects {
		if entry.Preferred == "" {
			return errors.New("taxonomy.subjects entries require a preferred term")
		}
		if prev, ok := seen[entry.Preferred]; ok {
			return fmt.Errorf("taxonomy.subjects: duplicate preferred term %q (first seen as %q)", entry.Preferred, prev)
		}
		seen[entry.Preferred] = entry.Preferred
	}
	for _, entry := range c.Taxonomy.ResourceTypes {
		if entry.Preferred == "" {
			return errors.New("taxonomy.resource_types entries require a preferred term")
		}
	}
	return nil
}
