package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"tidymark/internal/bookmark"
	"tidymark/internal/config"
)

// legacySeparator splits the backward-compatible "Category/Subcategory" form.
const legacySeparator = "/"

// contentTypeResourceMap infers a resource type when a legacy category string
// carries no facet of its own.
var contentTypeResourceMap = map[bookmark.ContentType]string{
	bookmark.ContentTypeCodeRepository: "code_repository",
	bookmark.ContentTypeDocumentation:  "documentation",
	bookmark.ContentTypeVideo:          "video",
	bookmark.ContentTypeAcademicPaper:  "paper",
	bookmark.ContentTypeNews:           "news",
	bookmark.ContentTypeOnlineTool:     "tool",
	bookmark.ContentTypeWebpage:        "webpage",
}

// Standardizer maps free-form subject and resource-type strings to their
// canonical forms.
type Standardizer struct {
	subjects      map[string]string
	resourceTypes map[string]string
	titleCaser    cases.Caser
}

// NewStandardizer builds the lookup tables from the configured vocabulary.
// Preferred terms map to themselves so canonical input passes through.
func NewStandardizer(vocab config.Taxonomy) *Standardizer {
	s := &Standardizer{
		subjects:      make(map[string]string),
		resourceTypes: make(map[string]string),
		titleCaser:    cases.Title(language.Und),
	}
	for _, entry := range vocab.Subjects {
		addEntry(s.subjects, entry)
	}
	for _, entry := range vocab.ResourceTypes {
		addEntry(s.resourceTypes, entry)
	}
	return s
}

func addEntry(table map[string]string, entry config.VocabEntry) {
	preferred := strings.TrimSpace(entry.Preferred)
	if preferred == "" {
		return
	}
	table[foldKey(preferred)] = preferred
	for _, variant := range entry.Variants {
		variant = strings.TrimSpace(variant)
		if variant != "" {
			table[foldKey(variant)] = preferred
		}
	}
}

// NormalizeSubject returns the canonical subject for text. Unknown input
// degrades to a cleaned, title-cased form of itself rather than failing.
func (s *Standardizer) NormalizeSubject(text string) string {
	stripped := StripDecorations(text)
	if stripped == "" {
		return ""
	}
	if canonical, ok := s.subjects[foldKey(stripped)]; ok {
		return canonical
	}
	return s.cleanFallback(stripped)
}

// NormalizeResourceType returns the canonical resource type for text, or the
// empty string when the vocabulary has no match.
func (s *Standardizer) NormalizeResourceType(text string) string {
	stripped := StripDecorations(text)
	if stripped == "" {
		return ""
	}
	if canonical, ok := s.resourceTypes[foldKey(stripped)]; ok {
		return canonical
	}
	return ""
}

// DeriveFromLegacy splits a legacy "Category/Subcategory" string and
// normalizes each half independently. Without a separator the resource type is
// inferred from the content-type hint instead.
func (s *Standardizer) DeriveFromLegacy(category string, contentType bookmark.ContentType) (subject, resourceType string) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", ""
	}

	main := category
	var facet string
	if idx := strings.Index(category, legacySeparator); idx >= 0 {
		main = strings.TrimSpace(category[:idx])
		facet = strings.TrimSpace(category[idx+len(legacySeparator):])
	}

	subject = s.NormalizeSubject(main)
	if facet != "" {
		resourceType = s.NormalizeResourceType(facet)
	}
	if resourceType == "" {
		resourceType = contentTypeResourceMap[contentType]
	}
	return subject, resourceType
}

// cleanFallback produces the degraded canonical form for vocabulary misses.
// Multi-word latin input is title-cased; anything containing CJK runes is kept
// as-is so Chinese categories are not mangled.
func (s *Standardizer) cleanFallback(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return text
		}
	}
	return s.titleCaser.String(strings.ToLower(text))
}

// StripDecorations removes leading decorative glyphs (emoji, bullets,
// brackets) up to the first letter, digit, or CJK rune, and trims whitespace.
func StripDecorations(text string) string {
	text = strings.TrimSpace(norm.NFKC.String(text))
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Han, r) {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}
	return strings.TrimSpace(text[start:])
}

func foldKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
