package ensemble

import (
	"context"

	"tidymark/internal/bookmark"
)

// Method names double as weight-map keys and carry the priority order used
// for deterministic tie-breaking: earlier in this list wins ties.
const (
	MethodRules    = "rules"
	MethodBayes    = "bayes"
	MethodSemantic = "semantic"
	MethodProfile  = "profile"
	MethodLLM      = "llm"
)

// Unclassified is the sentinel category for results below the confidence
// threshold or with no votes at all.
const Unclassified = "Unclassified"

// FacetResourceType is the facet key carrying a resource-type hint.
const FacetResourceType = "resource_type"

var methodPriority = map[string]int{
	MethodRules:    0,
	MethodBayes:    1,
	MethodSemantic: 2,
	MethodProfile:  3,
	MethodLLM:      4,
}

// priorityOf returns the tie-break rank of a method; unknown methods sort
// after all known ones.
func priorityOf(method string) int {
	if p, ok := methodPriority[method]; ok {
		return p
	}
	return len(methodPriority)
}

// MethodResult is the single shape fusion depends on. Every classification
// method, built-in or external, produces zero or one of these per call.
type MethodResult struct {
	Category    string
	Confidence  float64
	Subcategory string
	Facets      map[string]string
	Reasoning   []string
	Method      string
}

// Method is an optional classification stage. Classify returns false to
// abstain; a method must abstain rather than fail when its backing dependency
// is unavailable.
type Method interface {
	Name() string
	Classify(ctx context.Context, features bookmark.Features) (MethodResult, bool)
}
