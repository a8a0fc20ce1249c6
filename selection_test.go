package newsflow

import "testing"

func TestSelectionToggle(t *testing.T) {
	s := NewSelectionSet()

	s.Toggle("a")
	if !s.Contains("a") {
		t.Error("toggle did not select")
	}
	s.Toggle("a")
	if s.Contains("a") {
		t.Error("second toggle did not deselect")
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
}

func TestSelectionSelectAllAndNone(t *testing.T) {
	articles := testArticles(3)
	s := NewSelectionSet()

	s.SelectAll(articles)
	if s.Len() != 3 {
		t.Errorf("len = %d, want 3", s.Len())
	}
	for _, a := range articles {
		if !s.Contains(a.Link) {
			t.Errorf("article %s not selected", a.Link)
		}
	}

	s.SelectNone()
	if s.Len() != 0 {
		t.Errorf("len = %d after SelectNone, want 0", s.Len())
	}
}

func TestSelectionRetainDropsStaleLinks(t *testing.T) {
	articles := testArticles(2)
	s := NewSelectionSet()
	s.SelectAll(articles)
	s.Toggle("http://example.com/gone")

	s.Retain(articles)

	if s.Contains("http://example.com/gone") {
		t.Error("stale link survived Retain")
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}
