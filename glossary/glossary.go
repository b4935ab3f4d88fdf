// Package glossary provides term tooltips over glossary links in the
// rendered fragment.
package glossary

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"compendium/fragment"
	"compendium/manifest"
)

// Fetcher retrieves the backing markup for a chapter filename.
type Fetcher interface {
	Fetch(ctx context.Context, filename string) (string, error)
}

// Overlay fetches and caches the glossary document once, builds a term to
// definition lookup, and serves hover tooltips for glossary links in
// whatever fragment is currently rendered.
type Overlay struct {
	fetcher Fetcher

	mu       sync.Mutex
	fetched  bool
	inflight chan struct{}
	lastErr  error
	index    map[string]string // term id -> definition markup

	links   map[string]bool // term ids linked from the current fragment
	tooltip Tooltip
}

// New creates the overlay. The glossary document itself is not fetched until
// the first Refresh.
func New(fetcher Fetcher) *Overlay {
	return &Overlay{
		fetcher: fetcher,
		links:   make(map[string]bool),
	}
}

// Refresh re-scans the current fragment for glossary links and makes their
// definitions available for hover. Called by the router after every
// successful load. When the glossary document cannot be fetched this is a
// safe no-op; the fetch is retried on the next refresh.
func (o *Overlay) Refresh(ctx context.Context, root *html.Node) {
	if err := o.ensureIndex(ctx); err != nil {
		log.Printf("glossary: index unavailable: %v", err)
		o.mu.Lock()
		o.links = make(map[string]bool)
		o.tooltip = Tooltip{}
		o.mu.Unlock()
		return
	}

	links := scanLinks(root)

	o.mu.Lock()
	o.links = links
	o.tooltip = Tooltip{}
	o.mu.Unlock()
}

// Ready reports whether the glossary index has been fetched and parsed.
func (o *Overlay) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fetched
}

// Definition returns the cached definition markup for a term id.
func (o *Overlay) Definition(termID string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	markup, ok := o.index[termID]
	return markup, ok
}

// ensureIndex fetches and parses the glossary document exactly once.
// Concurrent callers collapse into the single in-flight fetch. On failure
// nothing is cached, so a later call retries.
func (o *Overlay) ensureIndex(ctx context.Context) error {
	o.mu.Lock()
	if o.fetched {
		o.mu.Unlock()
		return nil
	}
	if o.inflight != nil {
		ch := o.inflight
		o.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.fetched {
			return nil
		}
		return o.lastErr
	}
	ch := make(chan struct{})
	o.inflight = ch
	o.mu.Unlock()

	index, err := o.fetchIndex(ctx)

	o.mu.Lock()
	o.inflight = nil
	close(ch)
	if err != nil {
		o.lastErr = err
		o.mu.Unlock()
		return err
	}
	// Either the whole document parsed or nothing is kept: the index is
	// never partially populated.
	o.index = index
	o.fetched = true
	o.lastErr = nil
	o.mu.Unlock()
	return nil
}

func (o *Overlay) fetchIndex(ctx context.Context) (map[string]string, error) {
	body, err := o.fetcher.Fetch(ctx, manifest.GlossaryFilename)
	if err != nil {
		return nil, fmt.Errorf("fetching glossary: %w", err)
	}
	doc, err := fragment.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parsing glossary: %w", err)
	}
	if doc.Kind != fragment.KindDefinitionList {
		return nil, fmt.Errorf("glossary document has root kind %v", doc.Kind)
	}

	index := make(map[string]string)
	for _, def := range doc.Definitions() {
		index[def.ID] = def.Markup
	}
	return index, nil
}

// scanLinks finds glossary-style links in the fragment: anchors whose target
// points into the glossary document.
func scanLinks(root *html.Node) map[string]bool {
	links := make(map[string]bool)
	if root == nil {
		return links
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if id, ok := termFromHref(href); ok {
			links[id] = true
		}
	})
	return links
}

// termFromHref extracts the term id from a glossary link target such as
// "glossary.html#dfn-author" or "/glossary.html#dfn-author".
func termFromHref(href string) (string, bool) {
	i := strings.IndexByte(href, '#')
	if i < 0 {
		return "", false
	}
	page := strings.TrimPrefix(href[:i], "/")
	if page != "" && page != manifest.GlossaryFilename {
		return "", false
	}
	id := href[i+1:]
	if page == "" && !strings.HasPrefix(id, "dfn-") {
		// Same-page anchors are ordinary outline links unless they use the
		// definition id convention.
		return "", false
	}
	if id == "" {
		return "", false
	}
	return id, true
}

// Linked reports whether the current fragment links to the given term.
func (o *Overlay) Linked(termID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.links[termID]
}
