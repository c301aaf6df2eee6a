package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/quote"
)

// flexID decodes identifiers sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type projectDTO struct {
	PID flexID `json:"pid"`
}

type customerDTO struct {
	CustomerName string `json:"customer_name"`
	Address      string `json:"address"`
}

func (c customerDTO) toCustomer() quote.Customer {
	return quote.Customer{Name: c.CustomerName, Address: c.Address}
}

type categoryDTO struct {
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type itemDTO struct {
	ItemID   int64           `json:"item_id"`
	ItemName string          `json:"item_name"`
	PricePU  decimal.Decimal `json:"price_pu"`
}

type nextQuoteIDDTO struct {
	NextQuoteID flexID `json:"nextQuoteId"`
}
