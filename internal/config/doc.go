// Package config defines the tidymark configuration schema and its TOML
// loading pipeline. Load resolves the file, decodes it over Default(), then
// runs normalize and Validate so every consumer sees a fully-populated,
// checked structure. Rule groups, taxonomy vocabularies, and ensemble settings
// all live here; the classification engine treats the result as read-only.
package config
