package fragment

import (
	"strings"

	"golang.org/x/net/html"
)

// Definition is one glossary entry: a term and its definition markup.
type Definition struct {
	ID     string
	Term   string
	Markup string // inner markup of the definition body, term element excluded
}

// Definitions extracts glossary entries from a definition_list document, in
// document order. Entries without an identifier are skipped; they cannot be
// linked to or looked up.
func (d *Document) Definitions() []Definition {
	if d.Kind != KindDefinitionList {
		return nil
	}

	var defs []Definition
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "definition" {
			id := Attr(n, "id")
			if id == "" {
				return
			}
			def := Definition{ID: id}
			termEl := directChild(n, "term")
			if termEl != nil {
				def.Term = Text(termEl)
			}
			def.Markup = renderBody(n, termEl)
			defs = append(defs, def)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.Root)
	return defs
}

// renderBody serializes the children of n, skipping the term element.
func renderBody(n, skip *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c == skip {
			continue
		}
		// Render failures on an in-memory tree do not happen in practice;
		// a partial body is still usable as tooltip content.
		_ = html.Render(&sb, c)
	}
	return strings.TrimSpace(sb.String())
}
