// Package logging wires log/slog with the handlers and attribute conventions
// used across tidymark. Components obtain a child logger via
// NewComponentLogger so every record carries a stable component field, and the
// typed attr helpers keep key names consistent between the console and JSON
// handlers.
package logging
