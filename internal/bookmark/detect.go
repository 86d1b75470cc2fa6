package bookmark

import (
	"strings"
	"unicode"
)

var videoDomains = []string{"youtube.com", "youtu.be", "bilibili.com", "vimeo.com"}

var codeDomains = []string{"github.com", "gitlab.com", "bitbucket.org", "gitee.com"}

var paperDomains = []string{"arxiv.org", "ieee.org", "acm.org", "springer.com", "nature.com"}

var extensionTypes = map[string]ContentType{
	"pdf":  ContentTypeDocument,
	"doc":  ContentTypeDocument,
	"docx": ContentTypeDocument,
	"ppt":  ContentTypeDocument,
	"pptx": ContentTypeDocument,
	"jpg":  ContentTypeImage,
	"jpeg": ContentTypeImage,
	"png":  ContentTypeImage,
	"gif":  ContentTypeImage,
	"mp4":  ContentTypeVideo,
	"avi":  ContentTypeVideo,
}

// titleIndicators is checked in order; the first hit wins so the more
// specific kinds come first.
var titleIndicators = []struct {
	kind     ContentType
	keywords []string
}{
	{ContentTypeDocumentation, []string{"docs", "documentation", "reference", "manual", "文档"}},
	{ContentTypeNews, []string{"news", "新闻", "文章", "blog"}},
	{ContentTypeOnlineTool, []string{"tool", "generator", "converter", "工具", "在线"}},
	{ContentTypeForum, []string{"forum", "community", "论坛", "社区", "discussion"}},
}

func detectContentType(rawURL, title, domain string, segments []string) ContentType {
	urlLower := strings.ToLower(rawURL)

	for _, d := range videoDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return ContentTypeVideo
		}
	}
	for _, d := range codeDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return ContentTypeCodeRepository
		}
	}
	for _, d := range paperDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return ContentTypeAcademicPaper
		}
	}

	if len(segments) > 0 {
		last := segments[len(segments)-1]
		if dot := strings.LastIndexByte(last, '.'); dot > 0 && dot < len(last)-1 {
			if kind, ok := extensionTypes[strings.ToLower(last[dot+1:])]; ok {
				return kind
			}
		}
	}

	if strings.Contains(urlLower, "/docs/") || strings.Contains(urlLower, "/documentation/") {
		return ContentTypeDocumentation
	}

	titleLower := strings.ToLower(title)
	for _, indicator := range titleIndicators {
		for _, keyword := range indicator.keywords {
			if strings.Contains(titleLower, keyword) || strings.Contains(urlLower, keyword) {
				return indicator.kind
			}
		}
	}

	return ContentTypeWebpage
}

var commonEnglishWords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "a": true, "an": true, "how": true,
}

func detectLanguage(title string) Language {
	if title == "" {
		return LanguageOther
	}
	for _, r := range title {
		if unicode.Is(unicode.Han, r) {
			return LanguageChinese
		}
	}
	for _, word := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if commonEnglishWords[word] {
			return LanguageEnglish
		}
	}
	// A title of purely ASCII words with no stop words is still more likely
	// English than anything else.
	ascii := true
	for _, r := range title {
		if r > unicode.MaxASCII {
			ascii = false
			break
		}
	}
	if ascii && strings.TrimSpace(title) != "" {
		return LanguageEnglish
	}
	return LanguageOther
}
