// Package viewer drives content loading, navigation and history for the
// Compendium terminal viewer. A Session owns the active document, the side
// navigation, the overlays and the history stack; all navigation funnels
// through Load.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"compendium/fragment"
	"compendium/glossary"
	"compendium/highlight"
	"compendium/manifest"
	"compendium/nav"
	"compendium/render"
	"compendium/translate"
)

// ErrUnknownChapter is returned when a requested filename is not in the
// chapter manifest.
var ErrUnknownChapter = errors.New("unknown chapter")

// ErrNoDocument is returned by operations that need a loaded document.
var ErrNoDocument = errors.New("no document loaded")

const errorTitle = "Compendium: Error"

// Fetcher retrieves the backing markup for a chapter filename.
type Fetcher interface {
	Fetch(ctx context.Context, filename string) (string, error)
}

// Status describes the load state of the content region.
type Status int

const (
	StatusBlank   Status = iota // nothing loaded yet
	StatusLoading               // fetch in flight
	StatusReady                 // document displayed
	StatusError                 // last load failed
)

// LoadOptions mirrors the load contract: history behavior, initial-load
// handling, an explicit scroll target, and forced refetch of the active
// document.
type LoadOptions struct {
	UpdateHistory bool
	IsInitialLoad bool
	TargetHash    string
	ForceReload   bool
}

// Options configures a Session.
type Options struct {
	Fetcher        Fetcher
	Prefs          nav.Store           // nil keeps expand/collapse in memory only
	Translation    translate.Facility  // nil disables translation
	SourceLanguage string
	Width, Height  int
}

// Session is the viewer's single routing authority. It is safe for
// concurrent use; loads are serialized by a generation counter so that a
// superseded fetch never commits over a later one.
type Session struct {
	fetcher   Fetcher
	history   *History
	navState  *nav.State
	glossary  *glossary.Overlay
	highlight *highlight.Overlay
	translate *translate.Overlay

	mu         sync.Mutex
	gen        uint64
	active     manifest.Chapter
	requested  string // filename of the last full load attempt
	doc        *fragment.Document
	page       *render.Page
	viewport   render.Viewport
	navEntries []*nav.Entry
	navAnchor  string
	title      string
	status     Status
	lastErr    error
}

// New creates a session. No document is loaded until Start or Load.
func New(opts Options) *Session {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	return &Session{
		fetcher:   opts.Fetcher,
		history:   NewHistory(),
		navState:  nav.NewState(opts.Prefs),
		glossary:  glossary.New(opts.Fetcher),
		highlight: highlight.New(),
		translate: translate.New(opts.Translation, opts.SourceLanguage),
		viewport:  render.Viewport{Width: opts.Width, Height: opts.Height},
	}
}

// Start performs the initial load of the default landing chapter.
func (s *Session) Start(ctx context.Context) error {
	return s.Load(ctx, manifest.Default().Filename, LoadOptions{
		UpdateHistory: true,
		IsInitialLoad: true,
	})
}

// Load is the single entry point for navigation. Same-document requests
// become in-page scrolls; everything else fetches, parses and commits a new
// document, then resolves the scroll anchor and updates history per the
// push/replace policy.
func (s *Session) Load(ctx context.Context, filename string, opts LoadOptions) error {
	s.mu.Lock()

	ch, ok := manifest.ByFilename(filename)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownChapter, filename)
	}

	if s.doc != nil && s.active.Filename == filename && !opts.ForceReload && !opts.IsInitialLoad {
		defer s.mu.Unlock()
		s.navigateInPage(opts)
		return nil
	}

	s.gen++
	gen := s.gen
	s.requested = filename
	s.status = StatusLoading
	s.title = "Loading..."
	s.highlight.Clear()
	s.navEntries = nil
	s.navAnchor = ""
	s.mu.Unlock()

	body, fetchErr := s.fetcher.Fetch(ctx, filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		// A later load started while this fetch was in flight. The later
		// call owns the session state now; drop this response.
		log.Printf("viewer: load of %s superseded, discarding response", filename)
		return nil
	}

	if fetchErr != nil {
		s.failLoad(fmt.Errorf("fetching %s: %w", filename, fetchErr))
		return s.lastErr
	}
	doc, err := fragment.ParseString(body)
	if err != nil {
		s.failLoad(fmt.Errorf("parsing %s: %w", filename, err))
		return s.lastErr
	}

	s.active = ch
	s.doc = doc
	s.translate.Reset()
	s.highlight.Attach(doc.Root)
	s.page = render.Layout(doc, s.viewport.Width)
	s.title = ch.PageTitle()
	s.status = StatusReady
	s.lastErr = nil
	s.navEntries, _ = nav.Build(s.navState, doc, filename)

	s.glossary.Refresh(ctx, doc.Root)

	// Explicit target hash wins; on the initial load fall back to the hash
	// already present in the address path.
	hash := opts.TargetHash
	if hash == "" && opts.IsInitialLoad {
		if _, h, ok := manifest.ParsePath(s.history.Path()); ok {
			hash = h
		}
	}
	hash = s.settleAnchor(hash)

	if opts.UpdateHistory {
		path := manifest.PagePath(filename, hash)
		if opts.IsInitialLoad {
			s.history.Replace(path)
		} else {
			s.history.Push(path)
		}
	}
	return nil
}

// navigateInPage handles a load request for the already-active document.
// Callers hold s.mu.
func (s *Session) navigateInPage(opts LoadOptions) {
	if opts.TargetHash != "" {
		line, ok := s.page.AnchorLine(opts.TargetHash)
		if !ok {
			log.Printf("viewer: anchor %q not found in %s", opts.TargetHash, s.active.Filename)
			s.navAnchor = ""
			return
		}
		s.viewport.ScrollTo(line, s.page.Height())
		s.navAnchor = opts.TargetHash
		if opts.UpdateHistory {
			s.history.Push(manifest.PagePath(s.active.Filename, opts.TargetHash))
		}
		return
	}

	// No hash: back to the top, and strip any hash from the current entry
	// without growing the stack.
	s.viewport.ScrollTop()
	s.navAnchor = ""
	s.history.Replace(manifest.PagePath(s.active.Filename, ""))
}

// settleAnchor scrolls to the resolved hash once the new layout is in
// place. A missing anchor clears the navigation highlight and drops the
// hash rather than failing the load. Returns the hash that actually took
// effect. Callers hold s.mu.
func (s *Session) settleAnchor(hash string) string {
	if hash == "" {
		s.viewport.ScrollTop()
		s.navAnchor = ""
		return ""
	}
	line, ok := s.page.AnchorLine(hash)
	if !ok {
		log.Printf("viewer: anchor %q not found in %s", hash, s.active.Filename)
		s.viewport.ScrollTop()
		s.navAnchor = ""
		return ""
	}
	s.viewport.ScrollTo(line, s.page.Height())
	s.navAnchor = hash
	return hash
}

// failLoad commits the error state for a load cycle. The session stays
// usable for the next navigation; history is left untouched. Callers hold
// s.mu.
func (s *Session) failLoad(err error) {
	log.Printf("viewer: %v", err)
	s.lastErr = err
	s.status = StatusError
	s.doc = nil
	s.page = nil
	s.navEntries = nil
	s.navAnchor = ""
	s.title = errorTitle
}

// Reload refetches the last-requested chapter, so retrying after a failed
// navigation targets the chapter whose error is showing, not the one
// displayed before it. The address stays as it is.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	filename := s.requested
	s.mu.Unlock()
	if filename == "" {
		if f, _, ok := manifest.ParsePath(s.history.Path()); ok {
			filename = f
		} else {
			filename = manifest.Default().Filename
		}
	}
	return s.Load(ctx, filename, LoadOptions{ForceReload: true})
}

// Back traverses one history entry back and reloads it.
func (s *Session) Back(ctx context.Context) bool {
	s.mu.Lock()
	entry, ok := s.history.Back()
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.popstate(ctx, entry)
	return true
}

// Forward traverses one history entry forward and reloads it.
func (s *Session) Forward(ctx context.Context) bool {
	s.mu.Lock()
	entry, ok := s.history.Forward()
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.popstate(ctx, entry)
	return true
}

// popstate re-derives the target from the history entry's path, falling
// back to the manifest default, and reloads without touching history: the
// stack has already moved.
func (s *Session) popstate(ctx context.Context, entry HistoryEntry) {
	filename, hash, ok := manifest.ParsePath(entry.Path)
	if !ok {
		filename = manifest.Default().Filename
		hash = ""
	}
	if err := s.Load(ctx, filename, LoadOptions{
		ForceReload: true,
		TargetHash:  hash,
	}); err != nil {
		log.Printf("viewer: history traversal to %s: %v", entry.Path, err)
	}
}

// OpenOutline handles a click on an outline entry in the side navigation:
// scroll to the node, move the navigation highlight, and rewrite the
// address hash in place.
func (s *Session) OpenOutline(anchor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return
	}
	line, ok := s.page.AnchorLine(anchor)
	if !ok {
		log.Printf("viewer: outline anchor %q not found", anchor)
		s.navAnchor = ""
		return
	}
	s.viewport.ScrollTo(line, s.page.Height())
	s.navAnchor = anchor
	s.history.Replace(manifest.PagePath(s.active.Filename, anchor))
}

// OpenLetter handles a click on a glossary index letter. The content
// scrolls to the letter's first term but the navigation highlight stays
// where it was, unlike outline clicks.
func (s *Session) OpenLetter(anchor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil || anchor == "" {
		return
	}
	line, ok := s.page.AnchorLine(anchor)
	if !ok {
		log.Printf("viewer: letter anchor %q not found", anchor)
		return
	}
	s.viewport.ScrollTo(line, s.page.Height())
	s.history.Replace(manifest.PagePath(s.active.Filename, anchor))
}

// ToggleChapter flips a chapter's disclosure control and rebuilds the
// navigation list.
func (s *Session) ToggleChapter(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navState.Toggle(filename)
	if s.doc != nil {
		s.navEntries, _ = nav.Build(s.navState, s.doc, s.active.Filename)
	}
}

// Search highlights term in the active document and scrolls to the first
// hit. Returns the match count.
func (s *Session) Search(term string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return 0
	}
	n := s.highlight.Search(term)
	s.page = render.Layout(s.doc, s.viewport.Width)
	if n > 0 {
		if line := s.page.FirstMarkLine(); line >= 0 {
			s.viewport.ScrollTo(line, s.page.Height())
		}
	}
	return n
}

// ClearSearch removes the active highlight.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight.Clear()
	if s.doc != nil {
		s.page = render.Layout(s.doc, s.viewport.Width)
	}
}

// Translate renders the active document in the target language in place.
func (s *Session) Translate(ctx context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNoDocument
	}
	translated, failed, err := s.translate.Apply(ctx, s.doc.Root, target)
	if err != nil {
		return err
	}
	if failed > 0 {
		log.Printf("viewer: translated %d nodes, %d kept original text", translated, failed)
	}
	s.page = render.Layout(s.doc, s.viewport.Width)
	return nil
}

// Original restores the untranslated document by reloading it from source.
func (s *Session) Original(ctx context.Context) error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return nil
	}
	filename := s.active.Filename
	s.translate.Reset()
	s.mu.Unlock()
	return s.Load(ctx, filename, LoadOptions{ForceReload: true})
}

// HoverTerm shows the glossary tooltip for a linked term at a content
// position.
func (s *Session) HoverTerm(termID string, x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.glossary.Hover(termID, x, y, s.viewport.Width, s.viewport.Height)
}

// LeaveTerm hides the glossary tooltip.
func (s *Session) LeaveTerm() {
	s.glossary.Leave()
}

// ClickTerm closes an open tooltip and rewrites the address hash to the
// term id without growing the history stack.
func (s *Session) ClickTerm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	termID, closed := s.glossary.Click()
	if !closed || s.doc == nil {
		return
	}
	s.history.Replace(manifest.PagePath(s.active.Filename, termID))
}

// Open resolves free-form input: an address path or bare manifest filename
// navigates, anything else becomes a search in the active document.
func (s *Session) Open(ctx context.Context, ref string) error {
	if filename, hash, ok := manifest.ParsePath(ref); ok {
		return s.Load(ctx, filename, LoadOptions{UpdateHistory: true, TargetHash: hash})
	}
	if _, ok := manifest.ByFilename(ref); ok {
		return s.Load(ctx, ref, LoadOptions{UpdateHistory: true})
	}
	s.Search(ref)
	return nil
}

// Resize updates the viewport and re-lays-out the active document.
func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.viewport.Width = width
	}
	if height > 0 {
		s.viewport.Height = height
	}
	if s.doc != nil {
		s.page = render.Layout(s.doc, s.viewport.Width)
	}
}

// Title returns the current page title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Status returns the load state of the content region.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error from the last failed load, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Active returns the manifest entry for the displayed chapter.
func (s *Session) Active() (manifest.Chapter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.doc != nil
}

// Path returns the current address path.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Path()
}

// History exposes the session history stack.
func (s *Session) History() *History {
	return s.history
}

// Nav returns the current navigation entries and the highlighted anchor.
func (s *Session) Nav() ([]*nav.Entry, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navEntries, s.navAnchor
}

// Document returns the active parsed document.
func (s *Session) Document() *fragment.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Visible returns the viewport's slice of the laid-out page.
func (s *Session) Visible() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return nil
	}
	return s.viewport.Visible(s.page)
}

// ScrollLine reports the top line of the viewport.
func (s *Session) ScrollLine() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport.Scroll
}

// SetScroll moves the viewport to the given top line, clamped to the page.
func (s *Session) SetScroll(line int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return
	}
	s.viewport.ScrollTo(line, s.page.Height())
}

// Glossary exposes the glossary overlay for tooltip rendering.
func (s *Session) Glossary() *glossary.Overlay {
	return s.glossary
}

// Translation exposes the translation overlay for capability display.
func (s *Session) Translation() *translate.Overlay {
	return s.translate
}

// SearchCount reports the active highlight's match count.
func (s *Session) SearchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight.Count()
}
