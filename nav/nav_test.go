package nav

import (
	"testing"

	"compendium/fragment"
	"compendium/manifest"
)

func mustParse(t *testing.T, markup string) *fragment.Document {
	t.Helper()
	doc, err := fragment.ParseString(markup)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

const ch200 = `<chapter>
	<section id="sec-201"><section_title><num>201</num> What This Chapter Covers</section_title></section>
	<section id="sec-202"><section_title><num>202</num> The Registration Process</section_title></section>
</chapter>`

func TestBuildActiveChapter(t *testing.T) {
	state := NewState(nil)
	doc := mustParse(t, ch200)

	entries, ok := Build(state, doc, "ch200-registration-process.html")
	if !ok {
		t.Fatal("Build failed")
	}
	if len(entries) != len(manifest.Chapters()) {
		t.Fatalf("expected %d entries, got %d", len(manifest.Chapters()), len(entries))
	}

	var active *Entry
	for _, e := range entries {
		if e.Active {
			if active != nil {
				t.Fatal("more than one active entry")
			}
			active = e
		} else if len(e.Children) != 0 {
			t.Errorf("inactive chapter %s has children", e.Filename)
		}
	}
	if active == nil {
		t.Fatal("no active entry")
	}
	if active.Filename != "ch200-registration-process.html" {
		t.Errorf("active = %q", active.Filename)
	}
	if active.Title != "200: Overview of the Registration Process" {
		t.Errorf("active title = %q", active.Title)
	}
	if len(active.Children) != 2 {
		t.Fatalf("expected 2 outline children, got %d", len(active.Children))
	}
	if !active.Toggle {
		t.Error("active chapter with children should have a disclosure control")
	}
	if !active.Expanded {
		t.Error("active chapter should default to expanded")
	}
}

func TestDefaultCollapsedForInactive(t *testing.T) {
	state := NewState(nil)
	// First seen while not active: defaults to collapsed.
	if state.ensure("ch700-literary-works.html", false) {
		t.Error("inactive chapter should default to collapsed")
	}
	// The preference survives later builds where it is active.
	if state.ensure("ch700-literary-works.html", true) {
		t.Error("existing preference should not be overwritten")
	}
}

func TestToggleRoundTrip(t *testing.T) {
	state := NewState(nil)
	doc := mustParse(t, ch200)
	if _, ok := Build(state, doc, "ch200-registration-process.html"); !ok {
		t.Fatal("Build failed")
	}

	before := state.Expanded("ch200-registration-process.html")
	state.Toggle("ch200-registration-process.html")
	state.Toggle("ch200-registration-process.html")
	if got := state.Expanded("ch200-registration-process.html"); got != before {
		t.Errorf("two toggles changed state: before=%v after=%v", before, got)
	}
}

type memStore struct {
	m map[string]bool
}

func (s *memStore) Expanded(filename string) (bool, bool) {
	v, ok := s.m[filename]
	return v, ok
}

func (s *memStore) SetExpanded(filename string, v bool) {
	s.m[filename] = v
}

func TestStorePreferenceReapplied(t *testing.T) {
	store := &memStore{m: map[string]bool{"ch200-registration-process.html": false}}
	state := NewState(store)
	doc := mustParse(t, ch200)

	entries, ok := Build(state, doc, "ch200-registration-process.html")
	if !ok {
		t.Fatal("Build failed")
	}
	for _, e := range entries {
		if e.Active && e.Expanded {
			t.Error("persisted collapsed preference should win over the active default")
		}
	}

	state.Toggle("ch200-registration-process.html")
	if !store.m["ch200-registration-process.html"] {
		t.Error("toggle should write back to the store")
	}
}

func TestGlossaryLetterIndex(t *testing.T) {
	state := NewState(nil)
	doc := mustParse(t, `<definition_list>
		<definition id="dfn-author"><term>Author</term></definition>
		<definition id="dfn-anonymous"><term>Anonymous Work</term></definition>
		<definition id="dfn-best-edition"><term>Best Edition</term></definition>
		<definition id="dfn-work"><term>Work Made for Hire</term></definition>
	</definition_list>`)

	entries, ok := Build(state, doc, manifest.GlossaryFilename)
	if !ok {
		t.Fatal("Build failed")
	}

	var letters []*Entry
	for _, e := range entries {
		if e.Active {
			letters = e.Children
		}
	}
	if len(letters) != 26 {
		t.Fatalf("expected 26 letter entries, got %d", len(letters))
	}

	// First term per letter, in document order.
	if letters[0].Title != "A" || letters[0].Anchor != "dfn-author" {
		t.Errorf("A entry = %q -> %q", letters[0].Title, letters[0].Anchor)
	}
	if letters[1].Anchor != "dfn-best-edition" {
		t.Errorf("B entry -> %q", letters[1].Anchor)
	}
	if letters[22].Anchor != "dfn-work" {
		t.Errorf("W entry -> %q", letters[22].Anchor)
	}

	// Letters with no terms are inert markers, not links.
	if !letters[2].Inert || letters[2].Anchor != "" {
		t.Errorf("C entry should be inert, got %+v", letters[2])
	}
	active, inert := 0, 0
	for _, l := range letters {
		if l.Inert {
			inert++
		} else {
			active++
		}
	}
	if active != 3 || inert != 23 {
		t.Errorf("expected 3 active / 23 inert letters, got %d / %d", active, inert)
	}
}

func TestBuildMissingDocument(t *testing.T) {
	entries, ok := Build(NewState(nil), nil, "ch200-registration-process.html")
	if ok || entries != nil {
		t.Error("expected no navigation without a document")
	}
}
