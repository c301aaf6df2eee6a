package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/quotedesk/internal/backend"
	"github.com/Simplici0/quotedesk/internal/export"
	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/quote"
)

// itemFetchLimit bounds concurrent item list requests per project load.
const itemFetchLimit = 8

var (
	// ErrUnknownProject is returned when selecting a project that is not listed.
	ErrUnknownProject = errors.New("unknown project")
	// ErrUnknownItem is returned when toggling an item missing from the catalog.
	ErrUnknownItem = errors.New("unknown catalog item")
)

// Backend is the part of the quote backend a session reads from.
type Backend interface {
	ListProjects(ctx context.Context) ([]quote.ProjectID, error)
	GetCustomer(ctx context.Context, projectID quote.ProjectID) (quote.Customer, error)
	ListCategories(ctx context.Context) ([]quote.Category, error)
	ListItems(ctx context.Context, categoryID int64) ([]quote.CatalogItem, error)
}

// Session is the quote being built by one user. Every mutation recomputes the
// totals before the lock is released, so readers never see stale totals.
type Session struct {
	ID string

	backend  Backend
	lastUsed atomic.Int64

	mu             sync.Mutex
	generation     uint64
	projects       []quote.ProjectID
	projectsLoaded bool
	projectID      quote.ProjectID
	customer       *quote.Customer
	catalog        *quote.Catalog
	categoriesSet  bool
	selection      quote.Selection
	filters        quote.Filters
	additionalCost string
	totals         pricing.Totals
	loadErrors     map[string]LoadError
}

// New creates an empty session.
func New(id string, b Backend) *Session {
	s := &Session{
		ID:         id,
		backend:    b,
		catalog:    quote.NewCatalog(),
		loadErrors: make(map[string]LoadError),
	}
	s.recompute()
	s.touch()
	return s
}

// LoadProjects fetches the project list.
func (s *Session) LoadProjects(ctx context.Context) error {
	s.touch()

	projects, err := s.backend.ListProjects(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.recordError(keyProjects, 0, err)
		return err
	}
	s.projects = projects
	s.projectsLoaded = true
	delete(s.loadErrors, keyProjects)
	return nil
}

// SelectProject switches the session to another project. Customer, catalog,
// selection, filters and additional cost are reset, then the new project's
// data is loaded. Responses for a superseded selection are discarded.
func (s *Session) SelectProject(ctx context.Context, projectID quote.ProjectID) error {
	s.touch()

	s.mu.Lock()
	if projectID == s.projectID {
		s.mu.Unlock()
		return nil
	}
	if projectID != "" && s.projectsLoaded && !slices.Contains(s.projects, projectID) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownProject, projectID)
	}

	s.generation++
	gen := s.generation
	s.projectID = projectID
	s.customer = nil
	s.catalog.Reset()
	s.categoriesSet = false
	s.selection.Reset()
	s.filters.Reset()
	s.additionalCost = ""
	for key := range s.loadErrors {
		if key != keyProjects {
			delete(s.loadErrors, key)
		}
	}
	s.recompute()
	s.mu.Unlock()

	if projectID == "" {
		return nil
	}
	return s.load(ctx, gen, projectID, true, true, nil)
}

// Reload retries every load that failed or never completed for the current project.
func (s *Session) Reload(ctx context.Context) error {
	s.touch()

	s.mu.Lock()
	gen := s.generation
	projectID := s.projectID
	wantProjects := !s.projectsLoaded
	wantCustomer := projectID != "" && s.customer == nil
	wantCategories := projectID != "" && !s.categoriesSet
	var missing []quote.Category
	for _, cat := range s.catalog.Categories() {
		if !s.catalog.Loaded(cat.ID) {
			missing = append(missing, cat)
		}
	}
	s.mu.Unlock()

	var errs []error
	if wantProjects {
		errs = append(errs, s.LoadProjects(ctx))
	}
	if projectID != "" {
		errs = append(errs, s.load(ctx, gen, projectID, wantCustomer, wantCategories, missing))
	}
	return errors.Join(errs...)
}

// load fetches customer and categories as requested, then the items of the
// fetched categories, or of missing when categories are not refetched.
func (s *Session) load(ctx context.Context, gen uint64, projectID quote.ProjectID, wantCustomer, wantCategories bool, missing []quote.Category) error {
	var (
		customer      quote.Customer
		categories    []quote.Category
		customerErr   error
		categoriesErr error
		g             errgroup.Group
	)
	if wantCustomer {
		g.Go(func() error {
			customer, customerErr = s.backend.GetCustomer(ctx, projectID)
			return nil
		})
	}
	if wantCategories {
		g.Go(func() error {
			categories, categoriesErr = s.backend.ListCategories(ctx)
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		log.Debug().Str("session", s.ID).Str("project_id", string(projectID)).Msg("discarding superseded project load")
		return nil
	}
	if wantCustomer {
		if customerErr != nil {
			s.recordError(keyCustomer, 0, customerErr)
		} else {
			s.customer = &customer
			delete(s.loadErrors, keyCustomer)
		}
	}
	if wantCategories {
		if categoriesErr != nil {
			s.recordError(keyCategories, 0, categoriesErr)
		} else {
			s.catalog.SetCategories(categories)
			s.categoriesSet = true
			delete(s.loadErrors, keyCategories)
			missing = categories
		}
		s.recompute()
	}
	s.mu.Unlock()

	return errors.Join(customerErr, categoriesErr, s.loadItems(ctx, gen, missing))
}

func (s *Session) loadItems(ctx context.Context, gen uint64, categories []quote.Category) error {
	var g errgroup.Group
	g.SetLimit(itemFetchLimit)

	for _, cat := range categories {
		g.Go(func() error {
			items, err := s.backend.ListItems(ctx, cat.ID)

			s.mu.Lock()
			defer s.mu.Unlock()
			if gen != s.generation {
				return nil
			}
			if err != nil {
				s.recordError(itemsKey(cat.ID), cat.ID, err)
				return err
			}
			s.catalog.SetItems(cat.ID, items)
			delete(s.loadErrors, itemsKey(cat.ID))
			return nil
		})
	}
	return g.Wait()
}

// Toggle selects or deselects a catalog item at its catalog price.
func (s *Session) Toggle(categoryID, itemID int64) error {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.catalog.Item(categoryID, itemID)
	if !ok {
		return fmt.Errorf("%w: category %d item %d", ErrUnknownItem, categoryID, itemID)
	}
	s.selection.Toggle(categoryID, item.ID, item.UnitPrice)
	s.recompute()
	return nil
}

// SetQuantity validates raw quantity text and applies it to a selected item.
func (s *Session) SetQuantity(categoryID, itemID int64, raw string) error {
	s.touch()

	quantity, err := quote.ParseQuantity(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.selection.SetQuantity(categoryID, itemID, quantity); err != nil {
		return err
	}
	s.recompute()
	return nil
}

// SetAdditionalCost stores the additional cost as typed.
func (s *Session) SetAdditionalCost(raw string) {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.additionalCost = raw
	s.recompute()
}

// SetFilter stores the search text of a category.
func (s *Session) SetFilter(categoryID int64, text string) {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Set(categoryID, text)
}

// Totals returns a copy of the current totals.
func (s *Session) Totals() pricing.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals.Clone()
}

// Snapshot copies everything an export needs in one critical section.
func (s *Session) Snapshot() export.Snapshot {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := export.Snapshot{
		ProjectID:      s.projectID,
		Categories:     s.catalog.Categories(),
		Selection:      s.selection.Clone(),
		AdditionalCost: s.additionalCost,
		Totals:         s.totals.Clone(),
	}
	if s.customer != nil {
		snap.Customer = *s.customer
	}
	return snap
}

// LastUsed is when the session was last accessed.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch() {
	s.lastUsed.Store(time.Now().UnixNano())
}

// recompute must be called with s.mu held.
func (s *Session) recompute() {
	s.totals = pricing.Calculate(s.catalog.Categories(), &s.selection, s.additionalCost)
}

// recordError must be called with s.mu held.
func (s *Session) recordError(key string, categoryID int64, err error) {
	s.loadErrors[key] = LoadError{
		Op:         key,
		CategoryID: categoryID,
		Kind:       string(backend.KindOf(err)),
		Message:    err.Error(),
	}
	log.Warn().Err(err).Str("session", s.ID).Str("op", key).Str("project_id", string(s.projectID)).Msg("backend load failed")
}
