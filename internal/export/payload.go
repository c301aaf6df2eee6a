package export

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/quote"
)

// CategoryCost is one "<category>_cost" field of a saved quote.
type CategoryCost struct {
	Field  string
	Amount decimal.Decimal
}

// Payload is the flat record handed to the backend when a quote is saved.
type Payload struct {
	ProjectID      quote.ProjectID
	CustomerName   string
	CategoryCosts  []CategoryCost
	AdditionalCost decimal.Decimal
	TotalCost      decimal.Decimal
}

// Fixed payload fields a category cost field must not overwrite.
const (
	fieldAdditionalCost = "additional_cost"
	fieldTotalCost      = "total_cost"
)

// BuildPayload produces the persistence record. Each listed category's cost
// is the sum of its selected line totals. Category names are lower cased into
// "<name>_cost" fields; names that collide are summed.
func BuildPayload(projectID quote.ProjectID, customer quote.Customer, categories []quote.Category, sel *quote.Selection, additionalCost, grandTotal decimal.Decimal) Payload {
	p := Payload{
		ProjectID:      projectID,
		CustomerName:   customer.Name,
		AdditionalCost: additionalCost,
		TotalCost:      grandTotal,
	}

	index := make(map[string]int, len(categories))
	for _, cat := range categories {
		amount := decimal.Zero
		for _, item := range sel.Items(cat.ID) {
			amount = amount.Add(item.LineTotal())
		}

		field := CostField(cat.Name)
		if i, ok := index[field]; ok {
			p.CategoryCosts[i].Amount = p.CategoryCosts[i].Amount.Add(amount)
			continue
		}
		index[field] = len(p.CategoryCosts)
		p.CategoryCosts = append(p.CategoryCosts, CategoryCost{Field: field, Amount: amount})
	}
	return p
}

// CostField is the payload field name of a category. Names that would land on
// a fixed field are prefixed with "category_".
func CostField(categoryName string) string {
	field := strings.ToLower(strings.TrimSpace(categoryName)) + "_cost"
	if field == fieldAdditionalCost || field == fieldTotalCost {
		return "category_" + field
	}
	return field
}

// Amount returns the value of a "<category>_cost" field.
func (p Payload) Amount(field string) (decimal.Decimal, bool) {
	for _, c := range p.CategoryCosts {
		if c.Field == field {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}

// MarshalJSON flattens the category costs next to the fixed fields. Amounts
// are written as exact JSON numbers.
func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.CategoryCosts)+4)
	for _, c := range p.CategoryCosts {
		out[c.Field] = json.Number(c.Amount.String())
	}
	out["project_id"] = string(p.ProjectID)
	out["customer_name"] = p.CustomerName
	out[fieldAdditionalCost] = json.Number(p.AdditionalCost.String())
	out[fieldTotalCost] = json.Number(p.TotalCost.String())
	return json.Marshal(out)
}
