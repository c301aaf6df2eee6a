package session

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	keyProjects   = "projects"
	keyCustomer   = "customer"
	keyCategories = "categories"
)

func itemsKey(categoryID int64) string {
	return "items:" + strconv.FormatInt(categoryID, 10)
}

// LoadError describes a backend load that failed and can be retried.
type LoadError struct {
	Op         string `json:"op"`
	CategoryID int64  `json:"category_id,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message"`
}

// CustomerView is the customer as shown to the user.
type CustomerView struct {
	Name    string `json:"customer_name"`
	Address string `json:"address"`
}

// ItemView is a catalog item matching the category filter.
type ItemView struct {
	ID        int64           `json:"item_id"`
	Name      string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"price_pu"`
	Selected  bool            `json:"selected"`
	Quantity  int             `json:"quantity,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CategoryView is one category with its filtered items and subtotal.
type CategoryView struct {
	ID            int64           `json:"category_id"`
	Name          string          `json:"category_name"`
	Filter        string          `json:"filter"`
	ItemsLoaded   bool            `json:"items_loaded"`
	SelectedCount int             `json:"selected_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Items         []ItemView      `json:"items"`
}

// View is the state rendered by the quote UI.
type View struct {
	SessionID      string          `json:"session_id"`
	Projects       []string        `json:"projects"`
	ProjectID      string          `json:"project_id"`
	Customer       *CustomerView   `json:"customer"`
	Categories     []CategoryView  `json:"categories"`
	AdditionalCost string          `json:"additional_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	CanExport      bool            `json:"can_export"`
	LoadErrors     []LoadError     `json:"load_errors"`
}

// View renders the current state.
func (s *Session) View() View {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID:      s.ID,
		Projects:       make([]string, 0, len(s.projects)),
		ProjectID:      string(s.projectID),
		Categories:     make([]CategoryView, 0),
		AdditionalCost: s.additionalCost,
		TotalCost:      s.totals.Grand,
		CanExport:      s.projectID != "" && !s.totals.IsZero(),
		LoadErrors:     make([]LoadError, 0, len(s.loadErrors)),
	}
	for _, p := range s.projects {
		v.Projects = append(v.Projects, string(p))
	}
	if s.customer != nil {
		v.Customer = &CustomerView{Name: s.customer.Name, Address: s.customer.Address}
	}

	for _, cat := range s.catalog.Categories() {
		cv := CategoryView{
			ID:            cat.ID,
			Name:          cat.Name,
			Filter:        s.filters.Text(cat.ID),
			ItemsLoaded:   s.catalog.Loaded(cat.ID),
			SelectedCount: len(s.selection.Items(cat.ID)),
			Subtotal:      s.totals.Subtotal(cat.ID),
			Items:         make([]ItemView, 0),
		}
		for item := range s.filters.Match(cat.ID, s.catalog.Items(cat.ID)) {
			iv := ItemView{ID: item.ID, Name: item.Name, UnitPrice: item.UnitPrice, LineTotal: decimal.Zero}
			if sel, ok := s.selection.Get(cat.ID, item.ID); ok {
				iv.Selected = true
				iv.Quantity = sel.Quantity
				iv.LineTotal = sel.LineTotal()
			}
			cv.Items = append(cv.Items, iv)
		}
		v.Categories = append(v.Categories, cv)
	}

	for _, le := range s.loadErrors {
		v.LoadErrors = append(v.LoadErrors, le)
	}
	slices.SortFunc(v.LoadErrors, func(a, b LoadError) int { return cmp.Compare(a.Op, b.Op) })

	return v
}
