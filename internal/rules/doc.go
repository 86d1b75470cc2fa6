// Package rules implements the weighted keyword rule engine. Rule groups are
// compiled once from configuration into a closed set of matcher variants and
// are immutable afterwards, so a single Engine is shared by all workers.
// Evaluation sums the weights of firing rules per category, picks the highest
// total with a deterministic tie-break, and abstains below the group's
// minimum score.
package rules
