package fragment

import (
	"fmt"

	"golang.org/x/net/html"
)

// NodeKind identifies the structural unit an outline node represents.
type NodeKind int

const (
	Section NodeKind = iota
	Subsection
	Provision
	AuthorityGroup
)

func (k NodeKind) String() string {
	switch k {
	case Section:
		return "Section"
	case Subsection:
		return "Subsection"
	case Provision:
		return "Provision"
	case AuthorityGroup:
		return "Authority Group"
	default:
		return "Node"
	}
}

// OutlineNode is one navigable structural unit derived from a fragment.
// Nodes without an identifier are not navigable and never appear here.
type OutlineNode struct {
	ID       string
	Kind     NodeKind
	Title    string
	Children []*OutlineNode
}

// kindForTag maps structural element names to node kinds.
func kindForTag(tag string) (NodeKind, bool) {
	switch tag {
	case "section":
		return Section, true
	case "subsection":
		return Subsection, true
	case "provision":
		return Provision, true
	case "authority_group":
		return AuthorityGroup, true
	default:
		return 0, false
	}
}

// titleTag returns the structurally-designated title element for a kind.
func titleTag(kind NodeKind) string {
	switch kind {
	case Section:
		return "section_title"
	case Subsection:
		return "subsection_title"
	case Provision:
		return "provision_title"
	case AuthorityGroup:
		return "group_title"
	default:
		return ""
	}
}

// childTags returns which structural children a kind descends into.
// Authority groups are flat, and provisions terminate the recursion.
func childTags(kind NodeKind) []string {
	switch kind {
	case Section, Subsection:
		return []string{"subsection", "provision"}
	default:
		return nil
	}
}

const excerptLimit = 60

// buildOutline extracts the outline tree for a document.
func buildOutline(d *Document) []*OutlineNode {
	switch d.Kind {
	case KindChapter:
		return collectChildren(d.Root, []string{"section"})
	case KindAuthorityTable:
		return collectChildren(d.Root, []string{"authority_group"})
	default:
		// Definition lists get an A-Z index instead of an outline, and
		// unrecognized content has no navigable structure.
		return nil
	}
}

// collectChildren scans direct structural children of n that carry an
// identifier. Children without one are skipped entirely: they cannot be
// linked to.
func collectChildren(n *html.Node, tags []string) []*OutlineNode {
	var nodes []*OutlineNode
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || !contains(tags, c.Data) {
			continue
		}
		kind, ok := kindForTag(c.Data)
		if !ok {
			continue
		}
		id := Attr(c, "id")
		if id == "" {
			continue
		}
		node := &OutlineNode{
			ID:    id,
			Kind:  kind,
			Title: nodeTitle(c, kind, id),
		}
		if tags := childTags(kind); tags != nil {
			node.Children = collectChildren(c, tags)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// nodeTitle extracts the display title for a structural element. The title
// element's leading <num> child is split from the remaining text; when no
// title element exists the node's own text is excerpted instead.
func nodeTitle(n *html.Node, kind NodeKind, id string) string {
	title := directChild(n, titleTag(kind))
	if title == nil {
		return fmt.Sprintf("%s %s: %s", kind, id, excerpt(Text(n)))
	}

	var num, rest string
	if numEl := directChild(title, "num"); numEl != nil {
		num = Text(numEl)
		rest = textExcluding(title, numEl)
	} else {
		rest = Text(title)
	}

	switch {
	case num != "" && rest != "":
		return num + " " + rest
	case num != "":
		return num
	default:
		return rest
	}
}

func directChild(n *html.Node, tag string) *html.Node {
	if tag == "" {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// textExcluding collects the text of n without the contribution of skip.
func textExcluding(n, skip *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c == skip {
			continue
		}
		if t := Text(c); t != "" {
			parts = append(parts, t)
		}
	}
	return joinFields(parts)
}

func joinFields(parts []string) string {
	s := ""
	for _, p := range parts {
		if s == "" {
			s = p
		} else {
			s += " " + p
		}
	}
	return s
}

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptLimit {
		return s
	}
	return string(runes[:excerptLimit]) + "..."
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
