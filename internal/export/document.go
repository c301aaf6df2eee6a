package export

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/quote"
)

// Branding is the fixed content printed on every quote.
type Branding struct {
	Company     string
	Address     []string
	Website     string
	WebsiteURL  string
	BankDetails []string
	Notes       []string
}

// DefaultBranding is the letterhead used when none is configured.
var DefaultBranding = Branding{
	Company: "Ukshati Technologies",
	Address: []string{
		"Pvt. Ltd.",
		"2nd floor, Pramod Automobiles bldg.",
		"Karangalpady",
		"Mangalore - 575003",
		"Karnataka",
		"Phone: + 91 8861567365",
	},
	Website:    "www.ukshati.com",
	WebsiteURL: "http://www.ukshati.com",
	BankDetails: []string{
		"Bank Details:-",
		"ICICI Bank",
		"Name:- Ukshati Technologies Private Limited",
		"Account Number - XXXXXXXXXXXXXXX",
		"IFSC Code - XXXXXXXX",
	},
	Notes: []string{
		"Two-year warranty included.",
		"SIM card not included in the package.",
		"Payment terms: 70% advance, 30% after installation.",
		"Extra work charged separately.",
		"Wi-Fi extender extra if signal weak.",
		"Quote validity: 6 months from date of issue.",
	},
}

// Row is one line of the cost breakdown table.
type Row struct {
	Category string
	Cost     decimal.Decimal
}

// Document describes a printable quote independently of any layout.
type Document struct {
	Branding       Branding
	QuoteID        string
	Customer       quote.Customer
	Rows           []Row
	AdditionalCost decimal.Decimal
	Total          decimal.Decimal
}

// BuildDocument assembles a quote document with the default branding.
func BuildDocument(quoteID string, customer quote.Customer, categories []quote.Category, totals pricing.Totals, additionalCost decimal.Decimal) Document {
	return DefaultBranding.BuildDocument(quoteID, customer, categories, totals, additionalCost)
}

// BuildDocument assembles a quote document. One row is emitted per category,
// in category order, including categories with nothing selected.
func (b Branding) BuildDocument(quoteID string, customer quote.Customer, categories []quote.Category, totals pricing.Totals, additionalCost decimal.Decimal) Document {
	rows := make([]Row, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, Row{Category: cat.Name, Cost: totals.Subtotal(cat.ID)})
	}

	b.Address = slices.Clone(b.Address)
	b.BankDetails = slices.Clone(b.BankDetails)
	b.Notes = slices.Clone(b.Notes)

	return Document{
		Branding:       b,
		QuoteID:        quoteID,
		Customer:       customer,
		Rows:           rows,
		AdditionalCost: additionalCost,
		Total:          totals.Grand,
	}
}
