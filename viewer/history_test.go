package viewer

import "testing"

func TestHistoryPushDropsForwardEntries(t *testing.T) {
	h := NewHistory()
	h.Push("/a.html")
	h.Push("/b.html")
	h.Push("/c.html")

	if _, ok := h.Back(); !ok {
		t.Fatal("Back failed")
	}
	if _, ok := h.Back(); !ok {
		t.Fatal("Back failed")
	}
	h.Push("/d.html")

	if h.Len() != 2 {
		t.Errorf("len = %d, want 2", h.Len())
	}
	if h.Path() != "/d.html" {
		t.Errorf("path = %q", h.Path())
	}
	if _, ok := h.Forward(); ok {
		t.Error("forward entries should have been dropped")
	}
}

func TestHistoryReplaceKeepsPosition(t *testing.T) {
	h := NewHistory()
	h.Push("/a.html")
	h.Push("/b.html")
	h.Replace("/b.html#sec-1")

	if h.Len() != 2 {
		t.Errorf("len = %d, want 2", h.Len())
	}
	if h.Path() != "/b.html#sec-1" {
		t.Errorf("path = %q", h.Path())
	}
	e, ok := h.Back()
	if !ok || e.Path != "/a.html" {
		t.Errorf("back = %v %v", e.Path, ok)
	}
}

func TestHistoryReplaceOnEmpty(t *testing.T) {
	h := NewHistory()
	if h.Path() != "" {
		t.Errorf("empty path = %q", h.Path())
	}
	h.Replace("/a.html")
	if h.Len() != 1 || h.Path() != "/a.html" {
		t.Errorf("len=%d path=%q", h.Len(), h.Path())
	}
	if e, _ := h.Current(); e.ID == "" {
		t.Error("entries should carry an id")
	}
}
