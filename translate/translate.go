// Package translate swaps the visible text of the rendered fragment for a
// translation, with an explicit restore-to-original path.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/text/language"
)

// Facility is the platform translation collaborator: a capability query and
// a factory for stateful translator handles. It is provided by the hosting
// environment, not by this codebase.
type Facility interface {
	// CanTranslate reports whether a source to target language pair is
	// servable.
	CanTranslate(ctx context.Context, source, target string) (bool, error)
	// NewTranslator opens a translator handle for one language pair.
	NewTranslator(ctx context.Context, source, target string) (Translator, error)
}

// Translator translates one string at a time.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
	Close() error
}

// Support is the overlay's capability state.
type Support int

const (
	Unchecked Support = iota
	Unsupported
	Supported
)

// ErrUnsupported is returned when translation is not available for the
// requested language pair.
var ErrUnsupported = errors.New("translation unavailable")

// Session is one active translation: at most one target language at a time.
// Switching or clearing the language invalidates the handle.
type Session struct {
	ID         string // for log correlation
	Target     string
	translator Translator
}

// Overlay gates against the translation facility and walks visible text,
// replacing it in place.
type Overlay struct {
	facility Facility
	source   string
	support  Support
	session  *Session
}

// New creates the overlay. A nil facility settles straight into Unsupported,
// which hides translation controls and surfaces the static fallback notice.
func New(facility Facility, sourceLanguage string) *Overlay {
	o := &Overlay{facility: facility, source: sourceLanguage}
	if facility == nil {
		o.support = Unsupported
	}
	return o
}

// Support returns the current capability state.
func (o *Overlay) Support() Support { return o.support }

// Active returns the target language of the running session, "" when the
// original text is showing.
func (o *Overlay) Active() string {
	if o.session == nil {
		return ""
	}
	return o.session.Target
}

// Check asks the facility whether the source to target pair is servable.
// Absence of the facility, or an unavailable response, settles into
// Unsupported.
func (o *Overlay) Check(ctx context.Context, target string) Support {
	if o.facility == nil {
		o.support = Unsupported
		return o.support
	}
	ok, err := o.facility.CanTranslate(ctx, o.source, target)
	if err != nil {
		log.Printf("translate: capability check failed: %v", err)
		o.support = Unsupported
		return o.support
	}
	if !ok {
		o.support = Unsupported
		return o.support
	}
	o.support = Supported
	return o.support
}

// Apply translates the fragment under root into the target language,
// replacing each text node in place. Nodes are translated independently and
// sequentially, preserving node order and keeping the facility to one call
// at a time. A per-node failure leaves that node's original text; the rest
// of the page still translates. Returns the number of nodes translated and
// the number that failed.
func (o *Overlay) Apply(ctx context.Context, root *html.Node, target string) (translated, failed int, err error) {
	if target == "" {
		return 0, 0, errors.New("empty target language")
	}
	if _, err := language.Parse(target); err != nil {
		return 0, 0, fmt.Errorf("invalid language tag %q: %w", target, err)
	}
	if o.Check(ctx, target) != Supported {
		return 0, 0, ErrUnsupported
	}

	// Only one language may be active: switching tears down the prior
	// translator handle.
	o.Reset()

	tr, err := o.facility.NewTranslator(ctx, o.source, target)
	if err != nil {
		return 0, 0, fmt.Errorf("opening translator: %w", err)
	}
	o.session = &Session{ID: uuid.New().String(), Target: target, translator: tr}

	for _, node := range textNodes(root) {
		if err := ctx.Err(); err != nil {
			return translated, failed, err
		}
		out, err := tr.Translate(ctx, node.Data)
		if err != nil {
			// Partial translation is an accepted, visible outcome.
			log.Printf("translate[%s]: node failed, keeping original: %v", o.session.ID, err)
			failed++
			continue
		}
		node.Data = out
		translated++
	}
	return translated, failed, nil
}

// Reset discards the session and invalidates the translator handle. The
// caller restores the original text by reloading the untranslated document
// rather than undoing in place.
func (o *Overlay) Reset() {
	if o.session == nil {
		return
	}
	if err := o.session.translator.Close(); err != nil {
		log.Printf("translate[%s]: closing translator: %v", o.session.ID, err)
	}
	o.session = nil
}

// textNodes collects the text-bearing nodes of the fragment depth-first,
// skipping script and style subtrees and whitespace-only text.
func textNodes(root *html.Node) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if strings.TrimSpace(n.Data) != "" {
				nodes = append(nodes, n)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return nodes
}
