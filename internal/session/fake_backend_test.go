package session

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/backend"
	"github.com/Simplici0/quotedesk/internal/quote"
)

type fakeBackend struct {
	mu         sync.Mutex
	projects   []quote.ProjectID
	customers  map[quote.ProjectID]quote.Customer
	categories []quote.Category
	items      map[int64][]quote.CatalogItem
	fail       map[string]error
	gates      map[quote.ProjectID]chan struct{}
	entered    map[quote.ProjectID]chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		projects: []quote.ProjectID{"101", "102"},
		customers: map[quote.ProjectID]quote.Customer{
			"101": {Name: "Asha Rao", Address: "Mangalore"},
			"102": {Name: "Vikram Shetty", Address: "Udupi"},
		},
		categories: []quote.Category{
			{ID: 1, Name: "Drip"},
			{ID: 2, Name: "Plumbing"},
		},
		items: map[int64][]quote.CatalogItem{
			1: {
				{ID: 10, Name: "Drip Irrigation Valve", UnitPrice: decimal.NewFromInt(40)},
				{ID: 11, Name: "Drip Line 16mm", UnitPrice: decimal.NewFromInt(3)},
			},
			2: {
				{ID: 20, Name: "Elbow A", UnitPrice: decimal.NewFromInt(10)},
				{ID: 21, Name: "Tee B", UnitPrice: decimal.NewFromInt(20)},
			},
		},
		fail:    make(map[string]error),
		gates:   make(map[quote.ProjectID]chan struct{}),
		entered: make(map[quote.ProjectID]chan struct{}),
	}
}

func (f *fakeBackend) setFail(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, key)
		return
	}
	f.fail[key] = err
}

func (f *fakeBackend) failure(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[key]
}

// block makes GetCustomer for projectID wait until the returned release is called.
func (f *fakeBackend) block(projectID quote.ProjectID) (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	in := make(chan struct{})
	f.gates[projectID] = gate
	f.entered[projectID] = in
	return in, func() { close(gate) }
}

func (f *fakeBackend) ListProjects(context.Context) ([]quote.ProjectID, error) {
	if err := f.failure(keyProjects); err != nil {
		return nil, err
	}
	return append([]quote.ProjectID(nil), f.projects...), nil
}

func (f *fakeBackend) GetCustomer(_ context.Context, projectID quote.ProjectID) (quote.Customer, error) {
	f.mu.Lock()
	gate, in := f.gates[projectID], f.entered[projectID]
	f.mu.Unlock()
	if gate != nil {
		close(in)
		<-gate
	}

	if err := f.failure(keyCustomer); err != nil {
		return quote.Customer{}, err
	}
	c, ok := f.customers[projectID]
	if !ok {
		return quote.Customer{}, &backend.Error{Op: "get customer", Kind: backend.KindStatus, Status: 404, Err: errors.New("not found")}
	}
	return c, nil
}

func (f *fakeBackend) ListCategories(context.Context) ([]quote.Category, error) {
	if err := f.failure(keyCategories); err != nil {
		return nil, err
	}
	return append([]quote.Category(nil), f.categories...), nil
}

func (f *fakeBackend) ListItems(_ context.Context, categoryID int64) ([]quote.CatalogItem, error) {
	if err := f.failure(itemsKey(categoryID)); err != nil {
		return nil, err
	}
	return append([]quote.CatalogItem(nil), f.items[categoryID]...), nil
}
