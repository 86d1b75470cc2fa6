package bookmark

import (
	"reflect"
	"testing"
)

func TestExtractBasicFields(t *testing.T) {
	f := Extract("https://www.github.com/torvalds/linux?tab=readme", "Linux kernel source")

	if f.Domain != "github.com" {
		t.Errorf("domain: got %q, want github.com", f.Domain)
	}
	want := []string{"torvalds", "linux"}
	if !reflect.DeepEqual(f.PathSegments, want) {
		t.Errorf("path segments: got %v, want %v", f.PathSegments, want)
	}
	if f.QueryParams["tab"] != "readme" {
		t.Errorf("query params: got %v", f.QueryParams)
	}
	if f.ContentType != ContentTypeCodeRepository {
		t.Errorf("content type: got %q, want code_repository", f.ContentType)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	a := Extract("https://example.com/a/b?x=1", "Example")
	b := Extract("https://example.com/a/b?x=1", "Example")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated extraction differs: %+v vs %+v", a, b)
	}
}

func TestExtractUnparsableURLDegrades(t *testing.T) {
	f := Extract("://not a url", "Still has a title")
	if f.Domain != "" {
		t.Errorf("degraded record should have empty domain, got %q", f.Domain)
	}
	if f.ContentType != ContentTypeUnknown {
		t.Errorf("degraded content type: got %q", f.ContentType)
	}
	if f.Title != "Still has a title" {
		t.Errorf("title must survive: %q", f.Title)
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		url   string
		title string
		want  ContentType
	}{
		{"https://youtube.com/watch?v=abc", "Some talk", ContentTypeVideo},
		{"https://arxiv.org/abs/2301.00001", "A paper", ContentTypeAcademicPaper},
		{"https://example.com/files/report.pdf", "Report", ContentTypeDocument},
		{"https://go.dev/docs/effective_go", "Effective Go", ContentTypeDocumentation},
		{"https://example.com/", "JSON formatter online tool", ContentTypeOnlineTool},
		{"https://example.com/", "Just a page", ContentTypeWebpage},
	}
	for _, tt := range tests {
		f := Extract(tt.url, tt.title)
		if f.ContentType != tt.want {
			t.Errorf("Extract(%q, %q).ContentType = %q, want %q", tt.url, tt.title, f.ContentType, tt.want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		title string
		want  Language
	}{
		{"深度学习入门", LanguageChinese},
		{"Mixed 学习 title", LanguageChinese},
		{"How to write Go for fun", LanguageEnglish},
		{"golang-weekly-issue-512", LanguageEnglish},
		{"", LanguageOther},
		{"Привет мир", LanguageOther},
	}
	for _, tt := range tests {
		if got := detectLanguage(tt.title); got != tt.want {
			t.Errorf("detectLanguage(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestKeyDistinguishesTitle(t *testing.T) {
	a := Extract("https://example.com", "one")
	b := Extract("https://example.com", "two")
	if a.Key() == b.Key() {
		t.Error("keys must differ when titles differ")
	}
}
