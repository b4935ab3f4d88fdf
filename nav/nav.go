// Package nav builds the collapsible side-navigation list for the viewer.
package nav

import (
	"log"
	"sync"

	"compendium/fragment"
	"compendium/manifest"
)

// EntryKind identifies what a navigation entry links to.
type EntryKind int

const (
	EntryChapter EntryKind = iota // a document in the manifest
	EntryOutline                  // an outline node within the active document
	EntryLetter                   // an A-Z index letter for the glossary
)

// Entry is one row of the side-navigation list.
type Entry struct {
	Kind     EntryKind
	Filename string // chapter filename (EntryChapter)
	Anchor   string // target id within the active document
	Title    string
	Active   bool // the currently displayed chapter
	Inert    bool // letter with no terms: rendered de-emphasized, not a link
	Toggle   bool // has a disclosure control
	Expanded bool
	Children []*Entry
}

// Store persists the expand/collapse preference per chapter. Implementations
// may be backed by disk; a nil Store keeps preferences in memory only.
type Store interface {
	Expanded(filename string) (expanded, known bool)
	SetExpanded(filename string, expanded bool)
}

// State carries the navigation state that survives across content loads.
// The expand/collapse map is a user preference, not derived data: entries are
// created lazily the first time a chapter with children is shown and default
// to expanded only for the active chapter.
type State struct {
	mu       sync.Mutex
	expanded map[string]bool
	store    Store
}

// NewState creates navigation state, seeding the expand/collapse map from
// the optional preference store.
func NewState(store Store) *State {
	return &State{
		expanded: make(map[string]bool),
		store:    store,
	}
}

// ensure creates the expand/collapse entry for filename if it is not known
// yet, defaulting to expanded only when the chapter is active. Returns the
// current value.
func (s *State) ensure(filename string, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.expanded[filename]; ok {
		return v
	}
	if s.store != nil {
		if v, known := s.store.Expanded(filename); known {
			s.expanded[filename] = v
			return v
		}
	}
	s.expanded[filename] = active
	if s.store != nil {
		s.store.SetExpanded(filename, active)
	}
	return active
}

// Toggle flips the disclosure state for a chapter and returns the new value.
func (s *State) Toggle(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := !s.expanded[filename]
	s.expanded[filename] = v
	if s.store != nil {
		s.store.SetExpanded(filename, v)
	}
	return v
}

// Expanded reports the disclosure state for a chapter.
func (s *State) Expanded(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[filename]
}

// Build produces the navigation list for the given active chapter. Every
// chapter renders as a single link; only the active one is expanded into its
// outline, or into an A-Z index for the glossary. Returns false when the
// prerequisites for building navigation are missing, in which case the panel
// should be hidden rather than shown empty.
func Build(state *State, doc *fragment.Document, active string) ([]*Entry, bool) {
	if state == nil || doc == nil {
		log.Printf("nav: missing prerequisites, no navigation produced")
		return nil, false
	}

	var entries []*Entry
	for _, ch := range manifest.Chapters() {
		e := &Entry{
			Kind:     EntryChapter,
			Filename: ch.Filename,
			Title:    ch.PageTitle(),
			Active:   ch.Filename == active,
		}
		if e.Active {
			if manifest.IsGlossary(ch.Filename) {
				e.Children = letterIndex(doc)
			} else {
				e.Children = outlineEntries(doc.Outline)
			}
			if len(e.Children) > 0 {
				e.Toggle = true
				e.Expanded = state.ensure(ch.Filename, true)
			}
		}
		entries = append(entries, e)
	}
	return entries, true
}

func outlineEntries(nodes []*fragment.OutlineNode) []*Entry {
	var entries []*Entry
	for _, n := range nodes {
		e := &Entry{
			Kind:   EntryOutline,
			Anchor: n.ID,
			Title:  n.Title,
		}
		e.Children = outlineEntries(n.Children)
		entries = append(entries, e)
	}
	return entries
}

// letterIndex builds the glossary A-Z index: the first definition term per
// starting letter is the link target, and letters with no terms are inert.
func letterIndex(doc *fragment.Document) []*Entry {
	first := make(map[byte]string)
	for _, def := range doc.Definitions() {
		if def.Term == "" {
			continue
		}
		letter := upperInitial(def.Term)
		if letter == 0 {
			continue
		}
		if _, ok := first[letter]; !ok {
			first[letter] = def.ID
		}
	}

	entries := make([]*Entry, 0, 26)
	for letter := byte('A'); letter <= 'Z'; letter++ {
		e := &Entry{
			Kind:  EntryLetter,
			Title: string(letter),
		}
		if id, ok := first[letter]; ok {
			e.Anchor = id
		} else {
			e.Inert = true
		}
		entries = append(entries, e)
	}
	return entries
}

func upperInitial(term string) byte {
	c := term[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return 0
	}
	return c
}
