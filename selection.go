package newsflow

// SelectionSet tracks which fetched articles are selected for downstream
// processing, keyed by article link. It is always a subset of the current
// article list; Retain re-establishes that whenever articles are replaced.
type SelectionSet map[string]struct{}

// NewSelectionSet returns an empty selection.
func NewSelectionSet() SelectionSet {
	return make(SelectionSet)
}

// Contains reports whether the article link is selected.
func (s SelectionSet) Contains(link string) bool {
	_, ok := s[link]
	return ok
}

// Len returns the number of selected articles.
func (s SelectionSet) Len() int {
	return len(s)
}

// Toggle flips the selection state of one article link.
func (s SelectionSet) Toggle(link string) {
	if _, ok := s[link]; ok {
		delete(s, link)
	} else {
		s[link] = struct{}{}
	}
}

// SelectAll selects every given article.
func (s SelectionSet) SelectAll(articles []Article) {
	for _, a := range articles {
		s[a.Link] = struct{}{}
	}
}

// SelectNone clears the selection.
func (s SelectionSet) SelectNone() {
	for link := range s {
		delete(s, link)
	}
}

// Retain drops selections that no longer match a fetched article.
func (s SelectionSet) Retain(articles []Article) {
	current := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		current[a.Link] = struct{}{}
	}
	for link := range s {
		if _, ok := current[link]; !ok {
			delete(s, link)
		}
	}
}
