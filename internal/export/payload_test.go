package export

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/quote"
)

func TestBuildPayload_FlatFields(t *testing.T) {
	totals := testTotals(t)
	p := BuildPayload("101", quote.Customer{Name: "Asha Rao"}, testCategories, testSelection(t), totals.AdditionalCost, totals.Grand)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"project_id": "101",
		"customer_name": "Asha Rao",
		"drip_cost": 0,
		"plumbing_cost": 50,
		"labour_cost": 150.5,
		"additional_cost": 5,
		"total_cost": 205.5
	}`, string(raw))
}

func TestBuildPayload_CollidingNamesAreSummed(t *testing.T) {
	categories := []quote.Category{{ID: 1, Name: "Drip"}, {ID: 2, Name: " drip "}}
	var sel quote.Selection
	sel.Toggle(1, 1, decimal.NewFromInt(4))
	sel.Toggle(2, 1, decimal.NewFromInt(6))
	totals := pricing.Calculate(categories, &sel, "")

	p := BuildPayload("1", quote.Customer{}, categories, &sel, totals.AdditionalCost, totals.Grand)

	require.Len(t, p.CategoryCosts, 1)
	amount, ok := p.Amount("drip_cost")
	require.True(t, ok)
	assert.True(t, amount.Equal(decimal.NewFromInt(10)))
}

func TestBuildPayload_CostsFollowSelection(t *testing.T) {
	categories := []quote.Category{{ID: 1, Name: "Drip"}, {ID: 2, Name: "Plumbing"}}
	var sel quote.Selection
	sel.Toggle(2, 5, decimal.RequireFromString("12.25"))
	require.NoError(t, sel.SetQuantity(2, 5, 4))

	p := BuildPayload("1", quote.Customer{}, categories, &sel, decimal.Zero, decimal.NewFromInt(49))

	plumbing, ok := p.Amount("plumbing_cost")
	require.True(t, ok)
	assert.Equal(t, "49", plumbing.String())
	drip, ok := p.Amount("drip_cost")
	require.True(t, ok)
	assert.True(t, drip.IsZero())
}

func TestBuildPayload_CategoryCannotOverwriteFixedFields(t *testing.T) {
	categories := []quote.Category{{ID: 1, Name: "Total"}, {ID: 2, Name: "Additional"}}
	var sel quote.Selection
	sel.Toggle(1, 1, decimal.NewFromInt(7))
	sel.Toggle(2, 1, decimal.NewFromInt(3))
	totals := pricing.Calculate(categories, &sel, "1")

	p := BuildPayload("1", quote.Customer{}, categories, &sel, totals.AdditionalCost, totals.Grand)
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"project_id": "1",
		"customer_name": "",
		"category_total_cost": 7,
		"category_additional_cost": 3,
		"additional_cost": 1,
		"total_cost": 11
	}`, string(raw))
}

func TestCostField(t *testing.T) {
	assert.Equal(t, "automation_cost", CostField("Automation"))
	assert.Equal(t, "labour_cost", CostField(" LABOUR "))
	assert.Equal(t, "category_total_cost", CostField("Total"))
	assert.Equal(t, "category_additional_cost", CostField(" ADDITIONAL "))
}
