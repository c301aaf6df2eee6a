package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_SetCategoriesDropsItems(t *testing.T) {
	c := NewCatalog()
	c.SetCategories([]Category{{ID: 1, Name: "Drip"}, {ID: 2, Name: "Plumbing"}})
	c.SetItems(1, testItems())
	require.True(t, c.Loaded(1))
	assert.False(t, c.Loaded(2))

	item, ok := c.Item(1, 3)
	require.True(t, ok)
	assert.Equal(t, "Solenoid valve", item.Name)

	c.SetCategories([]Category{{ID: 5, Name: "Labour"}})
	assert.False(t, c.Loaded(1))
	_, ok = c.Category(1)
	assert.False(t, ok)
	cat, ok := c.Category(5)
	require.True(t, ok)
	assert.Equal(t, "Labour", cat.Name)
}

func TestCatalog_CategoriesReturnsCopy(t *testing.T) {
	c := NewCatalog()
	c.SetCategories([]Category{{ID: 1, Name: "Drip"}})

	got := c.Categories()
	got[0].Name = "changed"
	assert.Equal(t, "Drip", c.Categories()[0].Name)
}
