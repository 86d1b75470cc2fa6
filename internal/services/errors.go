// Package services holds cross-cutting service conventions: the sentinel
// error markers components tag failures with, and the Wrap helper that builds
// uniformly shaped error messages for the CLI boundary.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks malformed or rejected configuration, fatal at
	// construction time.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks inputs that fail structural checks.
	ErrValidation = errors.New("validation error")
	// ErrUnavailable marks an optional collaborator that could not be used;
	// callers treat it as an abstention, never as a hard failure.
	ErrUnavailable = errors.New("unavailable")
	// ErrStore marks persistence failures in the history database.
	ErrStore = errors.New("store error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for errors.Is classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether the error should abort the run rather than degrade
// to an abstaining method.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrStore)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
