package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/quote"
)

// Totals contains the derived cost figures of a quote.
type Totals struct {
	// PerCategory has one entry per listed category, zero when nothing is selected in it.
	PerCategory map[int64]decimal.Decimal
	// Unlisted sums selected items whose category is no longer in the category list.
	Unlisted       decimal.Decimal
	AdditionalCost decimal.Decimal
	Grand          decimal.Decimal
}

// Subtotal returns the subtotal of a category, zero for unknown ids.
func (t Totals) Subtotal(categoryID int64) decimal.Decimal {
	if v, ok := t.PerCategory[categoryID]; ok {
		return v
	}
	return decimal.Zero
}

// CategorySum is the sum of all per-category subtotals.
func (t Totals) CategorySum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t.PerCategory {
		sum = sum.Add(v)
	}
	return sum
}

// IsZero reports whether the grand total is zero.
func (t Totals) IsZero() bool {
	return t.Grand.IsZero()
}

// Clone returns a copy that does not share the subtotal map.
func (t Totals) Clone() Totals {
	out := t
	out.PerCategory = make(map[int64]decimal.Decimal, len(t.PerCategory))
	for id, v := range t.PerCategory {
		out.PerCategory[id] = v
	}
	return out
}

// Calculate recomputes all totals from the category list, the selection and
// the raw additional cost. Subtotals are keyed by category id.
func Calculate(categories []quote.Category, sel *quote.Selection, additionalCost string) Totals {
	totals := Totals{
		PerCategory:    make(map[int64]decimal.Decimal, len(categories)),
		Unlisted:       decimal.Zero,
		AdditionalCost: ParseAmount(additionalCost),
	}
	for _, cat := range categories {
		totals.PerCategory[cat.ID] = decimal.Zero
	}

	for _, categoryID := range sel.CategoryIDs() {
		subtotal := decimal.Zero
		for _, item := range sel.Items(categoryID) {
			subtotal = subtotal.Add(item.LineTotal())
		}

		if _, listed := totals.PerCategory[categoryID]; listed {
			totals.PerCategory[categoryID] = subtotal
		} else {
			totals.Unlisted = totals.Unlisted.Add(subtotal)
		}
	}

	totals.Grand = totals.CategorySum().Add(totals.Unlisted).Add(totals.AdditionalCost)
	return totals
}

const (
	maxAmountLen      = 32
	maxAmountExponent = 18
)

// ParseAmount parses a user-entered amount. Empty, malformed or out of range
// input is zero. Exponents beyond ±18 are out of range, as is text longer
// than 32 characters.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxAmountLen {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	if exp := v.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Zero
	}
	return v
}
