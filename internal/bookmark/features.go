package bookmark

import (
	"net/url"
	"strings"
)

// ContentType is a coarse hint about what a URL points at, derived from the
// URL shape alone.
type ContentType string

const (
	ContentTypeUnknown        ContentType = "unknown"
	ContentTypeWebpage        ContentType = "webpage"
	ContentTypeVideo          ContentType = "video"
	ContentTypeCodeRepository ContentType = "code_repository"
	ContentTypeDocumentation  ContentType = "documentation"
	ContentTypeAcademicPaper  ContentType = "academic_paper"
	ContentTypeNews           ContentType = "news"
	ContentTypeOnlineTool     ContentType = "online_tool"
	ContentTypeDocument       ContentType = "document"
	ContentTypeImage          ContentType = "image"
	ContentTypeForum          ContentType = "forum"
)

// Language is the detected title language.
type Language string

const (
	LanguageChinese Language = "zh"
	LanguageEnglish Language = "en"
	LanguageOther   Language = "other"
)

// Features is the normalized, immutable feature record for one bookmark.
type Features struct {
	URL          string
	Title        string
	Domain       string
	PathSegments []string
	QueryParams  map[string]string
	ContentType  ContentType
	Language     Language
}

// Key returns the cache key identifying this bookmark. Feature extraction is
// deterministic in (url, title), so the pair is sufficient.
func (f Features) Key() string {
	return f.URL + "\x00" + f.Title
}

// Path returns the slash-joined path segments, lowercased.
func (f Features) Path() string {
	return strings.ToLower(strings.Join(f.PathSegments, "/"))
}

// Extract derives Features from a raw (url, title) pair. It never fails: a
// URL that does not parse yields a degraded record with an empty domain so
// title-based rules still apply.
func Extract(rawURL, title string) Features {
	features := Features{
		URL:         rawURL,
		Title:       title,
		ContentType: ContentTypeUnknown,
		Language:    detectLanguage(title),
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return features
	}

	domain := strings.ToLower(parsed.Hostname())
	domain = strings.TrimPrefix(domain, "www.")
	features.Domain = domain

	segments := make([]string, 0, 4)
	for _, segment := range strings.Split(parsed.EscapedPath(), "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	features.PathSegments = segments

	if query := parsed.Query(); len(query) > 0 {
		params := make(map[string]string, len(query))
		for key, values := range query {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
		features.QueryParams = params
	}

	features.ContentType = detectContentType(rawURL, title, domain, segments)
	return features
}
