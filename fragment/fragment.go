// Package fragment parses per-chapter markup fragments and derives their
// semantic outline.
package fragment

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// RootKind classifies the recognized root element of a fragment.
type RootKind int

const (
	KindUnknown RootKind = iota
	KindChapter
	KindAuthorityTable
	KindDefinitionList
)

func (k RootKind) String() string {
	switch k {
	case KindChapter:
		return "chapter"
	case KindAuthorityTable:
		return "authority_table"
	case KindDefinitionList:
		return "definition_list"
	default:
		return "unknown"
	}
}

// rootTags maps recognized root element names, in match priority order.
var rootTags = []struct {
	tag  string
	kind RootKind
}{
	{"chapter", KindChapter},
	{"authority_table", KindAuthorityTable},
	{"definition_list", KindDefinitionList},
}

// Document is the in-memory fragment currently spliced into the page.
// It is rebuilt from scratch on every content load and discarded when the
// next document loads.
type Document struct {
	Kind    RootKind
	Root    *html.Node // recognized root element, or body fallback
	Outline []*OutlineNode
}

// Parse reads a fragment and builds its outline.
func Parse(r io.Reader) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root, kind := selectRoot(doc)

	d := &Document{Kind: kind, Root: root}
	d.Outline = buildOutline(d)
	return d, nil
}

// ParseString parses a fragment from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// selectRoot picks the first recognized root element, falling back to the
// whole body when none matches.
func selectRoot(doc *html.Node) (*html.Node, RootKind) {
	for _, rt := range rootTags {
		if n := findElement(doc, rt.tag); n != nil {
			return n, rt.kind
		}
	}
	if body := findElement(doc, "body"); body != nil {
		return body, KindUnknown
	}
	return doc, KindUnknown
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// FindByID locates the element with the given id attribute under root.
func FindByID(root *html.Node, id string) *html.Node {
	if root == nil || id == "" {
		return nil
	}
	if root.Type == html.ElementNode && Attr(root, "id") == id {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := FindByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Text returns the trimmed text content of a node and its children.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
