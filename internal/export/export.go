// Package export renders classified bookmarks for downstream use, either as
// machine-readable JSON or as a Markdown document grouped by category.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"tidymark/internal/classify"
	"tidymark/internal/ensemble"
	"tidymark/internal/services"
)

// jsonResult is the wire shape for one exported bookmark.
type jsonResult struct {
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	Category     string   `json:"category"`
	Subject      string   `json:"subject,omitempty"`
	ResourceType string   `json:"resource_type,omitempty"`
	Subcategory  string   `json:"subcategory,omitempty"`
	Confidence   float64  `json:"confidence"`
	Methods      []string `json:"methods,omitempty"`
}

// WriteJSON renders results as a JSON array, preserving input order.
func WriteJSON(w io.Writer, results []classify.Result) error {
	out := make([]jsonResult, 0, len(results))
	for _, result := range results {
		out = append(out, jsonResult{
			URL:          result.URL,
			Title:        result.Title,
			Category:     result.Category,
			Subject:      result.Subject,
			ResourceType: result.ResourceType,
			Subcategory:  result.Subcategory,
			Confidence:   result.Confidence,
			Methods:      result.Methods,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(out); err != nil {
		return services.Wrap(services.ErrValidation, "export", "json", "encode results", err)
	}
	return nil
}

// WriteMarkdown renders results grouped by category, one section per
// category in alphabetical order with Unclassified always last.
func WriteMarkdown(w io.Writer, results []classify.Result) error {
	groups := make(map[string][]classify.Result)
	for _, result := range results {
		groups[result.Category] = append(groups[result.Category], result)
	}

	categories := make([]string, 0, len(groups))
	for category := range groups {
		if category != ensemble.Unclassified {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	if _, ok := groups[ensemble.Unclassified]; ok {
		categories = append(categories, ensemble.Unclassified)
	}

	var b strings.Builder
	b.WriteString("# Bookmarks\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "\n## %s\n\n", category)
		for _, result := range groups[category] {
			title := result.Title
			if title == "" {
				title = result.URL
			}
			fmt.Fprintf(&b, "- [%s](%s)", title, result.URL)
			var notes []string
			if result.Subcategory != "" {
				notes = append(notes, result.Subcategory)
			}
			if result.ResourceType != "" {
				notes = append(notes, result.ResourceType)
			}
			if !result.Unclassified() {
				notes = append(notes, fmt.Sprintf("%.0f%%", result.Confidence*100))
			}
			if len(notes) > 0 {
				fmt.Fprintf(&b, " _(%s)_", strings.Join(notes, ", "))
			}
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return services.Wrap(services.ErrValidation, "export", "markdown", "write document", err)
	}
	return nil
}
