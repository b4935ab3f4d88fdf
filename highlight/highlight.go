// Package highlight marks search-term matches in the rendered fragment.
package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// markAttr tags the wrapper elements this overlay inserts, so clearing only
// touches its own markers.
const markAttr = "data-search-hit"

// DefaultExclusions lists the regions search never marks: navigation chrome,
// script and style subtrees, and anything flagged as decorative.
const DefaultExclusions = "nav, toc, tocitem, page, script, style, [aria-hidden=true], .decorative"

// Overlay performs term search and visual marking over the currently
// rendered fragment. It is torn down and rebuilt on every content swap.
type Overlay struct {
	root        *html.Node
	exclusions  string
	term        string
	count       int
	firstAnchor string
}

// New creates a highlight overlay with the default exclusion zones.
func New() *Overlay {
	return &Overlay{exclusions: DefaultExclusions}
}

// SetExclusions overrides the excluded regions selector.
func (o *Overlay) SetExclusions(selector string) {
	o.exclusions = selector
}

// Attach points the overlay at a freshly rendered fragment. Any markers in
// the previous fragment are gone with that tree; state starts clean.
func (o *Overlay) Attach(root *html.Node) {
	o.root = root
	o.term = ""
	o.count = 0
	o.firstAnchor = ""
}

// Term returns the currently highlighted term, "" when none.
func (o *Overlay) Term() string { return o.term }

// Count returns the number of matches marked by the last Search.
func (o *Overlay) Count() int { return o.count }

// FirstAnchor returns the identifier of the nearest enclosing element of the
// first match, so the caller can scroll it into view. Empty when there is no
// match or no enclosing identifier.
func (o *Overlay) FirstAnchor() string { return o.firstAnchor }

// Search clears any prior highlight, then wraps every partial
// case-insensitive match of term in a marker element. An empty term just
// clears. Returns the number of matches marked.
func (o *Overlay) Search(term string) int {
	o.Clear()
	if o.root == nil || term == "" {
		return 0
	}
	o.term = term

	excluded := o.excludedSet()
	lowered := strings.ToLower(term)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && excluded[n] {
			return
		}
		// Collect children first: marking replaces text nodes in place.
		var kids []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, c)
		}
		for _, c := range kids {
			if c.Type == html.TextNode {
				o.markTextNode(c, lowered)
			} else {
				walk(c)
			}
		}
	}
	walk(o.root)
	return o.count
}

// Clear unwraps all markers, restoring the original text nodes exactly.
// Clearing twice is a no-op.
func (o *Overlay) Clear() {
	o.term = ""
	o.count = 0
	o.firstAnchor = ""
	if o.root == nil {
		return
	}

	doc := goquery.NewDocumentFromNode(o.root)
	parents := make(map[*html.Node]bool)
	doc.Find("mark[" + markAttr + "]").Each(func(_ int, sel *goquery.Selection) {
		mark := sel.Nodes[0]
		parent := mark.Parent
		if parent == nil {
			return
		}
		text := &html.Node{Type: html.TextNode, Data: nodeText(mark)}
		parent.InsertBefore(text, mark)
		parent.RemoveChild(mark)
		parents[parent] = true
	})

	// Merge the split text nodes back together so the tree matches its
	// pre-mark shape.
	for parent := range parents {
		mergeTextNodes(parent)
	}
}

func (o *Overlay) excludedSet() map[*html.Node]bool {
	set := make(map[*html.Node]bool)
	if o.exclusions == "" {
		return set
	}
	doc := goquery.NewDocumentFromNode(o.root)
	doc.Find(o.exclusions).Each(func(_ int, sel *goquery.Selection) {
		for _, n := range sel.Nodes {
			set[n] = true
		}
	})
	return set
}

// markTextNode splits one text node around its matches, wrapping each match
// in a marker element. Matching runs over a per-rune case fold with a byte
// offset map back to the original text, so folds that change byte length
// (İ, the Kelvin sign) still mark correctly.
func (o *Overlay) markTextNode(textNode *html.Node, lowered string) {
	text := textNode.Data
	haystack, offsets := foldWithOffsets(text)
	if !strings.Contains(haystack, lowered) {
		return
	}

	parent := textNode.Parent
	if parent == nil {
		return
	}

	pos := 0  // byte position in haystack
	tail := 0 // byte position in text
	for {
		i := strings.Index(haystack[pos:], lowered)
		if i < 0 {
			break
		}
		start := offsets[pos+i]
		end := offsets[pos+i+len(lowered)]
		if start > tail {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[tail:start]}, textNode)
		}
		mark := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Mark,
			Data:     "mark",
			Attr:     []html.Attribute{{Key: markAttr, Val: "true"}},
		}
		mark.AppendChild(&html.Node{Type: html.TextNode, Data: text[start:end]})
		parent.InsertBefore(mark, textNode)

		if o.count == 0 {
			o.firstAnchor = enclosingID(parent)
		}
		o.count++
		tail = end
		pos = pos + i + len(lowered)
	}
	if tail < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[tail:]}, textNode)
	}
	parent.RemoveChild(textNode)
}

// foldWithOffsets lowercases s rune by rune and maps every byte index of the
// folded string back to the byte index in s that produced it. The entry at
// len(folded) maps to len(s), so match ends resolve too.
func foldWithOffsets(s string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		lr := unicode.ToLower(r)
		for j := 0; j < utf8.RuneLen(lr); j++ {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(s))
	return b.String(), offsets
}

func enclosingID(n *html.Node) string {
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val != "" {
				return a.Val
			}
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
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
	return sb.String()
}

func mergeTextNodes(parent *html.Node) {
	c := parent.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			parent.RemoveChild(next)
			continue // c may merge with the following node too
		}
		c = next
	}
}
