package restaurant

import (
	"testing"

	"comanda/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_AddItem(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem(models.MenuItem{Name: "Hamburguesa", Price: 15000, Category: "Comidas Rápidas"}))

	err := c.AddItem(models.MenuItem{Name: "Hamburguesa", Price: 1})
	assert.ErrorIs(t, err, ErrDuplicateName)

	assert.ErrorIs(t, c.AddItem(models.MenuItem{Name: "Agua", Price: -1}), ErrRange)
	assert.ErrorIs(t, c.AddItem(models.MenuItem{Price: 100}), ErrRange)

	require.NoError(t, c.AddItem(models.MenuItem{Name: "Agua", Price: 0}))
	agua, err := c.Get("Agua")
	require.NoError(t, err)
	assert.Equal(t, models.Unassigned, agua.Category)
}

func TestCatalog_UpdateItemRekeys(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem(models.MenuItem{Name: "Carne Asada", Price: 20000}))
	require.NoError(t, c.AddItem(models.MenuItem{Name: "Hamburguesa", Price: 15000}))
	require.NoError(t, c.AddItem(models.MenuItem{Name: "Limonadas", Price: 7000}))

	require.NoError(t, c.UpdateItem("Hamburguesa", models.MenuItem{Name: "Hamburguesa Doble", Price: 22000}))

	_, err := c.Get("Hamburguesa")
	assert.ErrorIs(t, err, ErrNotFound)

	item, err := c.Get("Hamburguesa Doble")
	require.NoError(t, err)
	assert.Equal(t, int64(22000), item.Price)

	names := []string{}
	for _, i := range c.ListAll() {
		names = append(names, i.Name)
	}
	assert.Equal(t, []string{"Carne Asada", "Hamburguesa Doble", "Limonadas"}, names)

	assert.ErrorIs(t, c.UpdateItem("Pizza", models.MenuItem{Name: "Pizza"}), ErrNotFound)
	assert.ErrorIs(t, c.UpdateItem("Limonadas", models.MenuItem{Name: "Carne Asada"}), ErrDuplicateName)

	// keeping the same name is not a collision
	require.NoError(t, c.UpdateItem("Limonadas", models.MenuItem{Name: "Limonadas", Price: 8000, Description: "de coco"}))
}

func TestCatalog_RemoveItem(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem(models.MenuItem{Name: "Limonadas", Price: 7000}))
	require.NoError(t, c.RemoveItem("Limonadas"))
	assert.Empty(t, c.ListAll())
	assert.ErrorIs(t, c.RemoveItem("Limonadas"), ErrNotFound)
}

func TestCategoryRegistry_Rename(t *testing.T) {
	state := NewState()
	require.NoError(t, state.Categories.Add("Bebidas"))
	require.NoError(t, state.Categories.Add("Carnes Especiales"))
	require.NoError(t, state.Catalog.AddItem(models.MenuItem{Name: "Limonadas", Price: 7000, Category: "Bebidas"}))
	require.NoError(t, state.Catalog.AddItem(models.MenuItem{Name: "Jugo", Price: 6000, Category: "Bebidas"}))
	require.NoError(t, state.Catalog.AddItem(models.MenuItem{Name: "Carne Asada", Price: 20000, Category: "Carnes Especiales"}))

	engine := NewEngine(DefaultPolicy(), fixedClock())
	order, err := engine.CreateOrder(state, NewOrder{
		Channel: models.ChannelTakeout,
		Items:   []LineItemRequest{{ProductName: "Limonadas", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, state.Categories.Rename(state.Catalog, "Bebidas", "Bebidas2"))

	for _, name := range []string{"Limonadas", "Jugo"} {
		item, err := state.Catalog.Get(name)
		require.NoError(t, err)
		assert.Equal(t, "Bebidas2", item.Category)
	}
	carne, _ := state.Catalog.Get("Carne Asada")
	assert.Equal(t, "Carnes Especiales", carne.Category)

	assert.False(t, state.Categories.Has("Bebidas"))
	assert.True(t, state.Categories.Has("Bebidas2"))
	assert.Equal(t, "Limonadas", order.LineItems[0].ProductName)
	assert.True(t, order.LineItems[0].UnitPrice.Equal(decimal.NewFromInt(7000)))

	assert.ErrorIs(t, state.Categories.Rename(state.Catalog, "Bebidas", "Otra"), ErrNotFound)
	assert.ErrorIs(t, state.Categories.Rename(state.Catalog, "Bebidas2", "Carnes Especiales"), ErrDuplicateName)
	assert.ErrorIs(t, state.Categories.Rename(state.Catalog, "Bebidas2", models.Unassigned), ErrDuplicateName)
}

func TestCategoryRegistry_Remove(t *testing.T) {
	state := NewState()
	require.NoError(t, state.Categories.Add("Bebidas"))
	require.NoError(t, state.Catalog.AddItem(models.MenuItem{Name: "Limonadas", Price: 7000, Category: "Bebidas"}))

	require.NoError(t, state.Categories.Remove(state.Catalog, "Bebidas"))

	item, err := state.Catalog.Get("Limonadas")
	require.NoError(t, err)
	assert.Equal(t, models.Unassigned, item.Category)
	assert.Empty(t, state.Categories.List())

	assert.ErrorIs(t, state.Categories.Remove(state.Catalog, "Bebidas"), ErrNotFound)
	assert.ErrorIs(t, state.Categories.Remove(state.Catalog, models.Unassigned), ErrNotFound)
	assert.ErrorIs(t, state.Categories.Add(models.Unassigned), ErrDuplicateName)
}

func TestLedger_RestoreKeepsCounterMonotonic(t *testing.T) {
	orders := []models.Order{
		{ID: 1, State: models.OrderStatePaid},
		{ID: 4, State: models.OrderStateRegistered},
	}

	l := RestoreLedger(orders, 0)
	assert.Equal(t, int64(5), l.NextID())

	l = RestoreLedger(orders, 12)
	assert.Equal(t, int64(12), l.NextID())

	next := &models.Order{}
	l.Append(next)
	assert.Equal(t, int64(12), next.ID)
	assert.Equal(t, int64(13), l.NextID())

	got, err := l.Get(4)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateRegistered, got.State)

	_, err = l.Get(2)
	assert.ErrorIs(t, err, ErrNotFound)
}
