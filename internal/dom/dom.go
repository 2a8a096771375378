// Package dom parses Tally XML responses into a traversable tree and
// provides tag-based lookup helpers over it.
//
// Responses from the Tally reporting interface are frequently not
// well-formed XML: encodings are declared loosely, byte sequences can be
// invalid, and some exports carry unbalanced markup. The tree is
// therefore built with the lenient HTML parser from golang.org/x/net,
// traversed through github.com/PuerkitoBio/goquery. Tag names are
// matched by node name rather than CSS selector, because Tally list tags
// contain dots ("NAME.LIST") that a selector would read as a class.
package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parse builds a tolerant DOM from raw response bytes. Invalid UTF-8
// sequences are dropped, not fatal.
func Parse(raw []byte) (*goquery.Document, error) {
	clean := strings.ToValidUTF8(string(raw), "")
	return goquery.NewDocumentFromReader(strings.NewReader(clean))
}

// tagMatcher implements goquery.Matcher by comparing element names.
// The HTML parser lowercases names, so matching is case-insensitive by
// construction.
type tagMatcher string

func (m tagMatcher) Match(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == string(m)
}

func (m tagMatcher) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if m.Match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func (m tagMatcher) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Tag returns a matcher for the given tag name, any case.
func Tag(name string) goquery.Matcher {
	return tagMatcher(strings.ToLower(name))
}

// ChildrenNamed returns the direct children of s with the given tag.
func ChildrenNamed(s *goquery.Selection, tag string) *goquery.Selection {
	return s.ChildrenMatcher(Tag(tag))
}

// DescendantsNamed returns all descendants of s with the given tag, in
// document order.
func DescendantsNamed(s *goquery.Selection, tag string) *goquery.Selection {
	return s.FindMatcher(Tag(tag))
}

// First returns the first descendant of s with the given tag.
func First(s *goquery.Selection, tag string) *goquery.Selection {
	return DescendantsNamed(s, tag).First()
}

// Text returns the trimmed text content of s, including nested text.
func Text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// MultilineText joins every non-blank text node under s with newlines,
// each fragment trimmed. The same input always yields the same output,
// and no fragment is dropped.
func MultilineText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, "\n")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
