package quote

import (
	"github.com/shopspring/decimal"
)

// ProjectID identifies a project. The backend treats it as opaque.
type ProjectID string

// Customer is the customer attached to a project.
type Customer struct {
	Name    string
	Address string
}

// Category groups catalog items and is the unit of subtotal bucketing.
type Category struct {
	ID   int64
	Name string
}

// CatalogItem is a purchasable item of a single category.
type CatalogItem struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
}

// Catalog holds the categories of the current project and the items fetched
// for each of them. Item lists arrive independently and may be missing.
type Catalog struct {
	categories []Category
	items      map[int64][]CatalogItem
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[int64][]CatalogItem)}
}

// SetCategories replaces the category list and drops any cached items.
func (c *Catalog) SetCategories(categories []Category) {
	c.categories = append([]Category(nil), categories...)
	c.items = make(map[int64][]CatalogItem, len(categories))
}

// Categories returns a copy of the category list in backend order.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// Category looks up a category by id.
func (c *Catalog) Category(id int64) (Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// SetItems stores the item list of one category.
func (c *Catalog) SetItems(categoryID int64, items []CatalogItem) {
	c.items[categoryID] = append([]CatalogItem(nil), items...)
}

// Items returns the cached items of a category, nil when not loaded.
func (c *Catalog) Items(categoryID int64) []CatalogItem {
	return c.items[categoryID]
}

// Loaded reports whether the items of a category have been fetched.
func (c *Catalog) Loaded(categoryID int64) bool {
	_, ok := c.items[categoryID]
	return ok
}

// Item finds a single item within a category.
func (c *Catalog) Item(categoryID, itemID int64) (CatalogItem, bool) {
	for _, item := range c.items[categoryID] {
		if item.ID == itemID {
			return item, true
		}
	}
	return CatalogItem{}, false
}

// Reset empties the catalog.
func (c *Catalog) Reset() {
	c.categories = nil
	c.items = make(map[int64][]CatalogItem)
}
