package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://news.ycombinator.com/" ADD_DATE="1700000000">Hacker News</A>
    <DT><H3 ADD_DATE="1690000000">开发</H3>
    <DL><p>
        <DT><A HREF="https://github.com/torvalds/linux" ADD_DATE="1700000100">Linux kernel</A>
        <DT><H3>Docs</H3>
        <DL><p>
            <DT><A HREF="https://go.dev/doc/">Go documentation</A>
        </DL><p>
    </DL><p>
    <DT><A HREF="javascript:void(0)">Broken bookmarklet</A>
    <DT><A HREF="place:sort=8">Firefox smart folder</A>
</DL>`

func TestParseSampleExport(t *testing.T) {
	bookmarks, err := Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(bookmarks) != 3 {
		t.Fatalf("bookmarks = %d, want 3: %+v", len(bookmarks), bookmarks)
	}

	first := bookmarks[0]
	if first.URL != "https://news.ycombinator.com/" || first.Title != "Hacker News" {
		t.Fatalf("first = %+v", first)
	}
	if first.Folder != "" {
		t.Fatalf("first folder = %q, want top level", first.Folder)
	}
	if want := time.Unix(1700000000, 0).UTC(); !first.AddedAt.Equal(want) {
		t.Fatalf("first added at = %v, want %v", first.AddedAt, want)
	}

	second := bookmarks[1]
	if second.Folder != "开发" {
		t.Fatalf("second folder = %q, want 开发", second.Folder)
	}

	third := bookmarks[2]
	if third.Folder != "开发/Docs" {
		t.Fatalf("third folder = %q, want nested path", third.Folder)
	}
	if !third.AddedAt.IsZero() {
		t.Fatalf("third added at = %v, want zero without ADD_DATE", third.AddedAt)
	}
}

func TestParseSkipsPseudoURLs(t *testing.T) {
	bookmarks, err := Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, bookmark := range bookmarks {
		if strings.HasPrefix(bookmark.URL, "javascript:") || strings.HasPrefix(bookmark.URL, "place:") {
			t.Fatalf("pseudo URL survived: %q", bookmark.URL)
		}
	}
}

func TestParseEmptyDocument(t *testing.T) {
	bookmarks, err := Parse(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(bookmarks) != 0 {
		t.Fatalf("bookmarks = %d, want 0", len(bookmarks))
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.html")
	if err := os.WriteFile(path, []byte(sampleExport), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	bookmarks, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(bookmarks) != 3 {
		t.Fatalf("bookmarks = %d, want 3", len(bookmarks))
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "absent.html")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
