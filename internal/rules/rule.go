package rules

import (
	"fmt"
	"regexp"
	"strings"

	"tidymark/internal/bookmark"
	"tidymark/internal/config"
)

// MatcherKind is the closed set of rule matcher variants. Dispatch is an
// exhaustive switch, so adding a kind is a compile-time-checked change.
type MatcherKind int

const (
	MatchDomain MatcherKind = iota
	MatchTitle
	MatchURL
	MatchPath
	MatchURLStartsWith
	MatchURLEndsWith
	MatchURLRegex
	MatchAllKeywordsIn
)

func (k MatcherKind) String() string {
	switch k {
	case MatchDomain:
		return "domain"
	case MatchTitle:
		return "title"
	case MatchURL:
		return "url"
	case MatchPath:
		return "path"
	case MatchURLStartsWith:
		return "url_starts_with"
	case MatchURLEndsWith:
		return "url_ends_with"
	case MatchURLRegex:
		return "url_matches_regex"
	case MatchAllKeywordsIn:
		return "match_all_keywords_in"
	default:
		return fmt.Sprintf("matcher(%d)", int(k))
	}
}

func parseMatcherKind(s string) (MatcherKind, error) {
	switch s {
	case "domain":
		return MatchDomain, nil
	case "title":
		return MatchTitle, nil
	case "url":
		return MatchURL, nil
	case "path":
		return MatchPath, nil
	case "url_starts_with":
		return MatchURLStartsWith, nil
	case "url_ends_with":
		return MatchURLEndsWith, nil
	case "url_matches_regex":
		return MatchURLRegex, nil
	case "match_all_keywords_in":
		return MatchAllKeywordsIn, nil
	default:
		return 0, fmt.Errorf("unknown matcher %q", s)
	}
}

// rule is one compiled matcher. Keywords and exclusions are pre-lowercased;
// regex patterns are compiled once at engine construction.
type rule struct {
	id           string
	kind         MatcherKind
	keywords     []string
	patterns     []*regexp.Regexp
	exclusions   []string
	weight       float64
	splitSegment int
}

func compileRule(category string, index int, spec config.RuleSpec) (rule, error) {
	kind, err := parseMatcherKind(spec.Match)
	if err != nil {
		return rule{}, err
	}
	if spec.Weight <= 0 {
		return rule{}, fmt.Errorf("weight must be positive, got %g", spec.Weight)
	}

	r := rule{
		id:           fmt.Sprintf("%s#%d(%s)", category, index, kind),
		kind:         kind,
		weight:       spec.Weight,
		splitSegment: spec.SplitByPathSegment,
	}

	for _, keyword := range spec.Keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		if kind == MatchURLRegex {
			pattern, err := regexp.Compile("(?i)" + keyword)
			if err != nil {
				return rule{}, fmt.Errorf("invalid pattern %q: %w", keyword, err)
			}
			r.patterns = append(r.patterns, pattern)
		} else {
			r.keywords = append(r.keywords, strings.ToLower(keyword))
		}
	}
	for _, exclusion := range spec.MustNotContain {
		exclusion = strings.TrimSpace(exclusion)
		if exclusion != "" {
			r.exclusions = append(r.exclusions, strings.ToLower(exclusion))
		}
	}
	return r, nil
}

func (r rule) empty() bool {
	return len(r.keywords) == 0 && len(r.patterns) == 0
}

// target returns the lowercased string the rule matches against.
func (r rule) target(f bookmark.Features) string {
	switch r.kind {
	case MatchDomain:
		return f.Domain
	case MatchTitle:
		return strings.ToLower(f.Title)
	case MatchURL, MatchURLStartsWith, MatchURLEndsWith, MatchURLRegex:
		return strings.ToLower(f.URL)
	case MatchPath, MatchAllKeywordsIn:
		return f.Path()
	default:
		return ""
	}
}

// fires reports whether the rule's positive condition holds for the target.
// Exclusions are checked separately by the engine.
func (r rule) fires(target string, f bookmark.Features) bool {
	if target == "" {
		return false
	}
	switch r.kind {
	case MatchDomain, MatchTitle, MatchURL, MatchPath:
		for _, keyword := range r.keywords {
			if strings.Contains(target, keyword) {
				return true
			}
		}
	case MatchURLStartsWith:
		for _, keyword := range r.keywords {
			if strings.HasPrefix(target, keyword) {
				return true
			}
		}
	case MatchURLEndsWith:
		for _, keyword := range r.keywords {
			if strings.HasSuffix(target, keyword) {
				return true
			}
		}
	case MatchURLRegex:
		for _, pattern := range r.patterns {
			if pattern.MatchString(target) {
				return true
			}
		}
	case MatchAllKeywordsIn:
		// Every keyword must be present as an exact path segment.
		if len(r.keywords) == 0 {
			return false
		}
		segments := make(map[string]bool, len(f.PathSegments))
		for _, segment := range f.PathSegments {
			segments[strings.ToLower(segment)] = true
		}
		for _, keyword := range r.keywords {
			if !segments[keyword] {
				return false
			}
		}
		return true
	}
	return false
}

// excluded reports whether any must_not_contain keyword appears in the
// rule's target, the title, or the URL. A hit zeroes this rule's contribution
// regardless of a positive match: an exclusion anywhere in the bookmark's
// visible text vetoes the rule, not just in the matched field.
func (r rule) excluded(target string, f bookmark.Features) bool {
	if len(r.exclusions) == 0 {
		return false
	}
	haystacks := [3]string{target, strings.ToLower(f.Title), strings.ToLower(f.URL)}
	for _, exclusion := range r.exclusions {
		for _, haystack := range haystacks {
			if haystack != "" && strings.Contains(haystack, exclusion) {
				return true
			}
		}
	}
	return false
}
