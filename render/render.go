// Package render lays the fragment out as wrapped text lines, giving anchors
// and links concrete viewport coordinates.
package render

import (
	"strings"

	"golang.org/x/net/html"

	"compendium/fragment"
)

// Link is a clickable link in the laid-out page.
type Link struct {
	Href   string
	X, Y   int // position in the laid-out page
	Length int
}

// Page is the laid-out form of the current fragment.
type Page struct {
	Lines   []string
	Links   []Link
	anchors map[string]int // element id -> first line it occupies
	marks   []int          // lines containing search markers, in order
}

// layout state while walking the fragment.
type layout struct {
	page  *Page
	width int
}

// Layout flattens the fragment into wrapped lines, recording the line each
// identified element starts on.
func Layout(doc *fragment.Document, width int) *Page {
	if width < 20 {
		width = 20
	}
	p := &Page{anchors: make(map[string]int)}
	if doc == nil || doc.Root == nil {
		return p
	}
	l := &layout{page: p, width: width}
	l.walk(doc.Root)
	// Trim the trailing blank line left by the last block.
	for len(p.Lines) > 0 && p.Lines[len(p.Lines)-1] == "" {
		p.Lines = p.Lines[:len(p.Lines)-1]
	}
	return p
}

// AnchorLine returns the line an identified element starts on.
func (p *Page) AnchorLine(id string) (int, bool) {
	line, ok := p.anchors[id]
	return line, ok
}

// FirstMarkLine returns the line of the first search marker, -1 when none.
func (p *Page) FirstMarkLine() int {
	if len(p.marks) == 0 {
		return -1
	}
	return p.marks[0]
}

// Height returns the total number of laid-out lines.
func (p *Page) Height() int {
	return len(p.Lines)
}

func (l *layout) walk(n *html.Node) {
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return
	}
	if id := fragment.Attr(n, "id"); id != "" {
		if _, seen := l.page.anchors[id]; !seen {
			l.page.anchors[id] = len(l.page.Lines)
		}
	}

	switch n.Data {
	case "script", "style", "toc", "tocitem", "page", "head":
		return
	case "section_title", "subsection_title", "provision_title", "group_title", "term",
		"h1", "h2", "h3", "h4":
		l.emitHeading(n)
		return
	case "paragraph", "item", "note", "cite", "p", "li":
		l.emitBlock(n)
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Bare text directly under a container still renders: the body
		// fallback treats the whole response as content.
		if c.Type == html.TextNode {
			if text := strings.Join(strings.Fields(c.Data), " "); text != "" {
				l.emit(text)
				l.emit("")
			}
			continue
		}
		l.walk(c)
	}
}

func (l *layout) emitHeading(n *html.Node) {
	text := l.collectText(n, len(l.page.Lines))
	if text == "" {
		return
	}
	l.emit(text)
	rule := len([]rune(text))
	if rule > l.width {
		rule = l.width
	}
	l.emit(strings.Repeat("─", rule))
	l.emit("")
}

func (l *layout) emitBlock(n *html.Node) {
	text := l.collectText(n, len(l.page.Lines))
	if text == "" {
		return
	}
	l.emit(text)
	l.emit("")
}

// collectText flattens inline content, recording links and search markers
// against the line the block starts on.
func (l *layout) collectText(n *html.Node, startLine int) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "a":
				if href := fragment.Attr(n, "href"); href != "" {
					text := fragment.Text(n)
					l.page.Links = append(l.page.Links, Link{
						Href:   href,
						X:      len([]rune(strings.Join(strings.Fields(sb.String()), " "))),
						Y:      startLine,
						Length: len([]rune(text)),
					})
				}
			case "mark":
				l.page.marks = append(l.page.marks, startLine)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func (l *layout) emit(text string) {
	if text == "" {
		l.page.Lines = append(l.page.Lines, "")
		return
	}
	l.page.Lines = append(l.page.Lines, WrapText(text, l.width)...)
}
