package quote

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotSelected is returned when a quantity is set on an item that is not selected.
	ErrNotSelected = errors.New("item is not selected")
	// ErrInvalidQuantity is returned for quantities that are not positive integers.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// SelectedItem is a catalog item chosen for the quote.
type SelectedItem struct {
	ItemID   int64
	UnitCost decimal.Decimal
	Quantity int
}

// LineTotal is the unit cost multiplied by the quantity.
func (s SelectedItem) LineTotal() decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// Selection maps a category id to its selected items in selection order.
// The zero value is ready to use.
type Selection struct {
	byCategory map[int64][]SelectedItem
}

// Toggle removes the item when it is selected and appends it with quantity 1
// otherwise. A removed item keeps no quantity, so re-adding starts at 1.
func (s *Selection) Toggle(categoryID, itemID int64, unitCost decimal.Decimal) {
	if s.byCategory == nil {
		s.byCategory = make(map[int64][]SelectedItem)
	}

	items := s.byCategory[categoryID]
	if i := indexOf(items, itemID); i >= 0 {
		items = slices.Delete(slices.Clone(items), i, i+1)
		if len(items) == 0 {
			delete(s.byCategory, categoryID)
			return
		}
		s.byCategory[categoryID] = items
		return
	}

	s.byCategory[categoryID] = append(slices.Clone(items), SelectedItem{
		ItemID:   itemID,
		UnitCost: unitCost,
		Quantity: 1,
	})
}

// SetQuantity replaces the quantity of a selected item. Nothing changes when
// the item is not selected or the quantity is below 1.
func (s *Selection) SetQuantity(categoryID, itemID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	items := s.byCategory[categoryID]
	i := indexOf(items, itemID)
	if i < 0 {
		return ErrNotSelected
	}

	items = slices.Clone(items)
	items[i].Quantity = quantity
	s.byCategory[categoryID] = items
	return nil
}

// IsSelected reports whether the item is selected in the category.
func (s *Selection) IsSelected(categoryID, itemID int64) bool {
	return indexOf(s.byCategory[categoryID], itemID) >= 0
}

// Get returns the selected entry for an item.
func (s *Selection) Get(categoryID, itemID int64) (SelectedItem, bool) {
	items := s.byCategory[categoryID]
	if i := indexOf(items, itemID); i >= 0 {
		return items[i], true
	}
	return SelectedItem{}, false
}

// Items returns a copy of the selected items of a category.
func (s *Selection) Items(categoryID int64) []SelectedItem {
	return slices.Clone(s.byCategory[categoryID])
}

// CategoryIDs returns the ids of categories with at least one selected item, ascending.
func (s *Selection) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(s.byCategory))
	for id := range s.byCategory {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len is the number of selected items across all categories.
func (s *Selection) Len() int {
	n := 0
	for _, items := range s.byCategory {
		n += len(items)
	}
	return n
}

// Clone returns an independent copy.
func (s *Selection) Clone() Selection {
	out := Selection{byCategory: make(map[int64][]SelectedItem, len(s.byCategory))}
	for id, items := range s.byCategory {
		out.byCategory[id] = slices.Clone(items)
	}
	return out
}

// Reset drops every selected item.
func (s *Selection) Reset() {
	s.byCategory = nil
}

// ParseQuantity validates quantity text as typed by a user.
func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

func indexOf(items []SelectedItem, itemID int64) int {
	return slices.IndexFunc(items, func(it SelectedItem) bool { return it.ItemID == itemID })
}
