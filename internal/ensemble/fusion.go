package ensemble

import (
	"fmt"
	"sort"
)

// FuseOptions carries the calibration settings fusion applies.
type FuseOptions struct {
	// Weights maps method name to its vote weight. Methods absent from the
	// map vote with DefaultWeight.
	Weights map[string]float64
	// Threshold is the mandatory minimum fused confidence. Below it the
	// winner is downgraded to Unclassified.
	Threshold float64
	// BoostFactor multiplies confidences above BoostTrigger; the product is
	// always capped at 1.0. A factor of 1.0 disables the boost.
	BoostFactor  float64
	BoostTrigger float64
}

// DefaultWeight applies to methods without a configured weight, so an unknown
// method still votes but only faintly.
const DefaultWeight = 0.1

// Alternative is one non-winning category with its weighted confidence share.
type Alternative struct {
	Category   string
	Confidence float64
}

// Fused is the outcome of combining method votes. Category is Unclassified
// when every method abstained or the threshold downgrade fired.
type Fused struct {
	Category     string
	Confidence   float64
	Subcategory  string
	Facets       map[string]string
	Alternatives []Alternative
	Reasoning    []string
	Methods      []string
}

type categoryVote struct {
	category string
	score    float64
	priority int
}

// Fuse combines method results into one verdict. Each method's confidence is
// multiplied by its weight and accumulated per category; the totals are
// normalized by the summed weight of methods that actually voted, so
// abstaining methods do not dilute the result.
func Fuse(results []MethodResult, opts FuseOptions) Fused {
	if len(results) == 0 {
		return Fused{
			Category:  Unclassified,
			Reasoning: []string{"no classification method produced a result"},
		}
	}

	scores := make(map[string]*categoryVote)
	var totalWeight float64
	reasoning := make([]string, 0, len(results)*2)
	methods := make([]string, 0, len(results))

	for _, result := range results {
		weight := DefaultWeight
		if w, ok := opts.Weights[result.Method]; ok {
			weight = w
		}
		totalWeight += weight
		methods = append(methods, result.Method)
		reasoning = append(reasoning, result.Reasoning...)

		vote, ok := scores[result.Category]
		if !ok {
			vote = &categoryVote{category: result.Category, priority: priorityOf(result.Method)}
			scores[result.Category] = vote
		}
		vote.score += result.Confidence * weight
		if p := priorityOf(result.Method); p < vote.priority {
			vote.priority = p
		}
	}

	if totalWeight <= 0 {
		return Fused{
			Category:  Unclassified,
			Reasoning: append(reasoning, "all voting methods carry zero weight"),
			Methods:   methods,
		}
	}

	ranked := make([]categoryVote, 0, len(scores))
	for _, vote := range scores {
		ranked = append(ranked, *vote)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].priority != ranked[j].priority {
			return ranked[i].priority < ranked[j].priority
		}
		return ranked[i].category < ranked[j].category
	})

	winner := ranked[0]
	confidence := clamp01(winner.score / totalWeight)
	confidence = applyBoost(confidence, opts)

	alternatives := make([]Alternative, 0, len(ranked)-1)
	for _, vote := range ranked[1:] {
		alternatives = append(alternatives, Alternative{
			Category:   vote.category,
			Confidence: clamp01(vote.score / totalWeight),
		})
	}

	fused := Fused{
		Category:     winner.category,
		Confidence:   confidence,
		Subcategory:  pickSubcategory(results, winner.category),
		Facets:       mergeFacets(results, winner.category),
		Alternatives: alternatives,
		Reasoning:    reasoning,
		Methods:      methods,
	}

	if fused.Confidence < opts.Threshold {
		downgraded := Alternative{Category: fused.Category, Confidence: fused.Confidence}
		fused.Reasoning = append(fused.Reasoning, fmt.Sprintf(
			"confidence %.2f below threshold %.2f, downgraded %q to %s",
			fused.Confidence, opts.Threshold, fused.Category, Unclassified))
		fused.Alternatives = append([]Alternative{downgraded}, fused.Alternatives...)
		fused.Category = Unclassified
		fused.Subcategory = ""
		fused.Facets = nil
	}

	return fused
}

// applyBoost is the calibration step: confidences above the trigger get
// multiplied by the configured factor. Capping at 1.0 is the invariant; the
// factor itself is tunable.
func applyBoost(confidence float64, opts FuseOptions) float64 {
	if opts.BoostFactor > 1 && opts.BoostTrigger > 0 && confidence > opts.BoostTrigger {
		confidence *= opts.BoostFactor
	}
	return clamp01(confidence)
}

// pickSubcategory takes the subcategory proposed by the highest-priority
// method that voted for the winning category.
func pickSubcategory(results []MethodResult, category string) string {
	best := ""
	bestPriority := -1
	for _, result := range results {
		if result.Category != category || result.Subcategory == "" {
			continue
		}
		if p := priorityOf(result.Method); bestPriority < 0 || p < bestPriority {
			best = result.Subcategory
			bestPriority = p
		}
	}
	return best
}

// mergeFacets combines facets from the winner's voters; higher-priority
// methods win key conflicts.
func mergeFacets(results []MethodResult, category string) map[string]string {
	var merged map[string]string
	// Iterate lowest priority first so higher priority overwrites.
	ordered := make([]MethodResult, 0, len(results))
	for _, result := range results {
		if result.Category == category && len(result.Facets) > 0 {
			ordered = append(ordered, result)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return priorityOf(ordered[i].Method) > priorityOf(ordered[j].Method)
	})
	for _, result := range ordered {
		if merged == nil {
			merged = make(map[string]string, len(result.Facets))
		}
		for key, value := range result.Facets {
			merged[key] = value
		}
	}
	return merged
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
