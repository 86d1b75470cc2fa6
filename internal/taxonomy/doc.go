// Package taxonomy keeps category names canonical. A Standardizer is built
// once from the configured controlled vocabulary (preferred term plus accepted
// variants) and is read-only afterwards, so it can be shared across workers.
// Normalization is idempotent: feeding a canonical term back in returns it
// unchanged.
package taxonomy
