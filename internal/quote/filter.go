package quote

import (
	"iter"
	"strings"
)

// Filters keeps the search text typed for each category.
type Filters struct {
	text map[int64]string
}

// Set stores the raw filter text of a category.
func (f *Filters) Set(categoryID int64, text string) {
	if f.text == nil {
		f.text = make(map[int64]string)
	}
	f.text[categoryID] = text
}

// Text returns the raw filter text of a category.
func (f *Filters) Text(categoryID int64) string {
	return f.text[categoryID]
}

// Reset clears every filter.
func (f *Filters) Reset() {
	f.text = nil
}

// Match yields the items whose name contains the category's filter text,
// ignoring case. An empty filter yields nothing so the catalog stays hidden
// until the user searches.
func (f *Filters) Match(categoryID int64, items []CatalogItem) iter.Seq[CatalogItem] {
	needle := strings.ToLower(f.text[categoryID])
	return func(yield func(CatalogItem) bool) {
		if needle == "" {
			return
		}
		for _, item := range items {
			if !strings.Contains(strings.ToLower(item.Name), needle) {
				continue
			}
			if !yield(item) {
				return
			}
		}
	}
}
