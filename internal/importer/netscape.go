// Package importer reads bookmark collections from the Netscape bookmark
// file format, the HTML export every major browser produces.
package importer

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"tidymark/internal/services"
)

// Bookmark is one imported entry. Folder is the slash-joined folder path the
// browser stored it under, empty at the top level.
type Bookmark struct {
	URL     string
	Title   string
	Folder  string
	AddedAt time.Time
}

// ParseFile reads a Netscape bookmark export from disk.
func ParseFile(path string) ([]Bookmark, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "importer", "open", "open bookmark file", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads a Netscape bookmark export. The format is loosely structured
// HTML, so parsing tolerates the unclosed DT and P tags browsers emit.
func Parse(r io.Reader) ([]Bookmark, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "importer", "parse", "parse bookmark html", err)
	}

	var bookmarks []Bookmark
	var walk func(node *html.Node, folders []string)
	walk = func(node *html.Node, folders []string) {
		// An H3 names the folder for the DL list that follows it as a
		// sibling inside the same DT.
		currentFolders := folders
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			switch {
			case child.Type == html.ElementNode && child.DataAtom == atom.H3:
				if name := strings.TrimSpace(text(child)); name != "" {
					currentFolders = append(append([]string(nil), folders...), name)
				}
			case child.Type == html.ElementNode && child.DataAtom == atom.A:
				if bookmark, ok := anchorBookmark(child, currentFolders); ok {
					bookmarks = append(bookmarks, bookmark)
				}
			default:
				walk(child, currentFolders)
			}
		}
	}
	walk(root, nil)
	return bookmarks, nil
}

func anchorBookmark(node *html.Node, folders []string) (Bookmark, bool) {
	bookmark := Bookmark{
		Title:  strings.TrimSpace(text(node)),
		Folder: strings.Join(folders, "/"),
	}
	for _, attr := range node.Attr {
		switch strings.ToLower(attr.Key) {
		case "href":
			bookmark.URL = strings.TrimSpace(attr.Val)
		case "add_date":
			if seconds, err := strconv.ParseInt(strings.TrimSpace(attr.Val), 10, 64); err == nil && seconds > 0 {
				bookmark.AddedAt = time.Unix(seconds, 0).UTC()
			}
		}
	}
	if bookmark.URL == "" || !isClassifiable(bookmark.URL) {
		return Bookmark{}, false
	}
	return bookmark, true
}

// isClassifiable filters out the pseudo-URLs browsers store as bookmarks.
func isClassifiable(url string) bool {
	lowered := strings.ToLower(url)
	for _, prefix := range []string{"javascript:", "place:", "data:", "about:", "chrome:", "edge:"} {
		if strings.HasPrefix(lowered, prefix) {
			return false
		}
	}
	return true
}

func text(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return b.String()
}
