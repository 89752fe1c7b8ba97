package restaurant

import (
	"testing"
	"time"

	"comanda/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	now := time.Date(2024, time.March, 9, 12, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newTestState(t *testing.T) *State {
	t.Helper()
	state := NewState()
	require.NoError(t, state.Categories.Add("Comidas Rápidas"))
	require.NoError(t, state.Categories.Add("Bebidas"))
	require.NoError(t, state.Catalog.AddItem(models.MenuItem{Name: "Burger", Price: 15000, Category: "Comidas Rápidas"}))
	require.NoError(t, state.Catalog.AddItem(models.MenuItem{Name: "Limonadas", Price: 7000, Category: "Bebidas"}))
	return state
}

func dineIn(table int, items ...LineItemRequest) NewOrder {
	return NewOrder{Channel: models.ChannelDineIn, Table: &table, Items: items}
}

func burgers(n int) LineItemRequest {
	return LineItemRequest{ProductName: "Burger", Quantity: n}
}

func assertTotalsConsistent(t *testing.T, order *models.Order) {
	t.Helper()
	sum := decimal.Zero
	for _, item := range order.LineItems {
		sum = sum.Add(item.LineSubtotal)
	}
	assert.True(t, order.Subtotal.Equal(sum), "subtotal %s != sum of lines %s", order.Subtotal, sum)
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.Tip)), "total %s != %s + %s", order.Total, order.Subtotal, order.Tip)
}

func TestDineInOrder_TipAndAdvanceToPaid(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())

	order, err := engine.CreateOrder(state, dineIn(3, burgers(2)))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStateRegistered, order.State)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(30000)))
	assert.True(t, order.Tip.IsZero())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(30000)))

	require.NoError(t, engine.ApplyTip(order, Tip{Percentage: true}))
	assert.True(t, order.Tip.Equal(decimal.NewFromInt(3000)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(33000)))

	for i := 0; i < 3; i++ {
		require.NoError(t, engine.Advance(order))
	}
	assert.Equal(t, models.OrderStatePaid, order.State)
	assert.NotNil(t, order.PaidAt)
}

func TestTableFreedOncePaid(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())

	first, err := engine.CreateOrder(state, dineIn(3, burgers(1)))
	require.NoError(t, err)

	_, err = engine.CreateOrder(state, dineIn(3, burgers(1)))
	assert.ErrorIs(t, err, ErrTableOccupied)
	assert.Equal(t, 1, state.Ledger.Len())

	for i := 0; i < 3; i++ {
		require.NoError(t, engine.Advance(first))
	}

	third, err := engine.CreateOrder(state, dineIn(3, burgers(1)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), third.ID)
}

func TestRemoveOnDeliveredOrderFails(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())

	order, err := engine.CreateOrder(state, dineIn(5, burgers(2)))
	require.NoError(t, err)
	require.NoError(t, engine.Advance(order))
	require.NoError(t, engine.Advance(order))
	require.Equal(t, models.OrderStateDelivered, order.State)

	err = engine.RemoveLineItemQuantity(order, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 2, order.LineItems[0].Quantity)
}

func TestOccupancyAcrossHeldStates(t *testing.T) {
	for _, steps := range []int{0, 1, 2} {
		state := newTestState(t)
		engine := NewEngine(DefaultPolicy(), fixedClock())

		held, err := engine.CreateOrder(state, dineIn(7, burgers(1)))
		require.NoError(t, err)
		for i := 0; i < steps; i++ {
			require.NoError(t, engine.Advance(held))
		}

		_, err = engine.CreateOrder(state, dineIn(7, burgers(1)))
		assert.ErrorIs(t, err, ErrTableOccupied, "occupant in state %s", held.State)

		_, err = engine.CreateOrder(state, dineIn(8, burgers(1)))
		assert.NoError(t, err, "other tables stay free")
	}
}

func TestOccupancyIgnoresOtherChannels(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())

	table := 4
	takeout, err := engine.CreateOrder(state, NewOrder{Channel: models.ChannelTakeout, Table: &table, Items: []LineItemRequest{burgers(1)}})
	require.NoError(t, err)
	assert.Nil(t, takeout.Table)

	_, err = engine.CreateOrder(state, dineIn(4, burgers(1)))
	assert.NoError(t, err)
}

func TestCreateOrderValidation(t *testing.T) {
	testCases := []struct {
		name string
		req  NewOrder
		err  error
	}{
		{"no items", NewOrder{Channel: models.ChannelDelivery}, ErrEmptyOrder},
		{"missing table", NewOrder{Channel: models.ChannelDineIn, Items: []LineItemRequest{burgers(1)}}, ErrRange},
		{"table zero", dineIn(0, burgers(1)), ErrRange},
		{"table 21", dineIn(21, burgers(1)), ErrRange},
		{"unknown product", dineIn(2, LineItemRequest{ProductName: "Pizza", Quantity: 1}), ErrNotFound},
		{"zero quantity", dineIn(2, burgers(0)), ErrRange},
		{"unknown channel", NewOrder{Channel: "drone", Items: []LineItemRequest{burgers(1)}}, ErrRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := newTestState(t)
			engine := NewEngine(DefaultPolicy(), fixedClock())

			order, err := engine.CreateOrder(state, tc.req)
			assert.ErrorIs(t, err, tc.err)
			assert.Nil(t, order)
			assert.Equal(t, 0, state.Ledger.Len())
			assert.Equal(t, int64(1), state.Ledger.NextID())
		})
	}
}

func TestAdvanceReachesPaidAfterThreeSteps(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())
	order, err := engine.CreateOrder(state, NewOrder{Channel: models.ChannelDelivery, Items: []LineItemRequest{burgers(1)}})
	require.NoError(t, err)

	expected := []models.OrderState{
		models.OrderStateInPreparation,
		models.OrderStateDelivered,
		models.OrderStatePaid,
	}
	for _, want := range expected {
		require.NoError(t, engine.Advance(order))
		assert.Equal(t, want, order.State)
	}

	err = engine.Advance(order)
	assert.ErrorIs(t, err, ErrTerminalState)
	assert.Equal(t, models.OrderStatePaid, order.State)
}

func TestAddLineItemSnapshotsPrice(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())
	order, err := engine.CreateOrder(state, dineIn(1, burgers(1)))
	require.NoError(t, err)

	require.NoError(t, engine.AddLineItem(state, order, LineItemRequest{ProductName: "Limonadas", Quantity: 2, Note: "sin azúcar"}))
	require.NoError(t, state.Catalog.UpdateItem("Limonadas", models.MenuItem{Name: "Limonadas", Price: 9000, Category: "Bebidas"}))

	require.Len(t, order.LineItems, 2)
	assert.Equal(t, "sin azúcar", order.LineItems[1].Note)
	assert.True(t, order.LineItems[1].LineSubtotal.Equal(decimal.NewFromInt(14000)))
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(29000)))
	assertTotalsConsistent(t, order)
}

func TestAddLineItemRules(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())
	order, err := engine.CreateOrder(state, dineIn(1, burgers(1)))
	require.NoError(t, err)

	assert.ErrorIs(t, engine.AddLineItem(state, order, LineItemRequest{ProductName: "Pizza", Quantity: 1}), ErrNotFound)
	assert.ErrorIs(t, engine.AddLineItem(state, order, LineItemRequest{ProductName: "Burger", Quantity: -1}), ErrRange)

	// allowed past Registered
	require.NoError(t, engine.Advance(order))
	require.NoError(t, engine.Advance(order))
	require.NoError(t, engine.AddLineItem(state, order, burgers(1)))

	require.NoError(t, engine.Advance(order))
	assert.ErrorIs(t, engine.AddLineItem(state, order, burgers(1)), ErrInvalidState)
	assert.Len(t, order.LineItems, 2)
}

func TestRemoveLineItemQuantity(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())
	order, err := engine.CreateOrder(state, dineIn(2,
		burgers(3),
		LineItemRequest{ProductName: "Limonadas", Quantity: 2},
	))
	require.NoError(t, err)

	require.NoError(t, engine.RemoveLineItemQuantity(order, 0, 1))
	assert.Equal(t, 2, order.LineItems[0].Quantity)
	assertTotalsConsistent(t, order)

	assert.ErrorIs(t, engine.RemoveLineItemQuantity(order, 0, 3), ErrRange)
	assert.ErrorIs(t, engine.RemoveLineItemQuantity(order, 0, 0), ErrRange)
	assert.ErrorIs(t, engine.RemoveLineItemQuantity(order, 2, 1), ErrRange)
	assert.ErrorIs(t, engine.RemoveLineItemQuantity(order, -1, 1), ErrRange)

	// removing the full quantity drops the line and shifts the rest
	require.NoError(t, engine.RemoveLineItemQuantity(order, 0, 2))
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, "Limonadas", order.LineItems[0].ProductName)
	assertTotalsConsistent(t, order)

	require.NoError(t, engine.RemoveLineItemQuantity(order, 0, 2))
	assert.Empty(t, order.LineItems)
	assert.True(t, order.Subtotal.IsZero())
	assertTotalsConsistent(t, order)
}

func TestApplyTip(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())
	order, err := engine.CreateOrder(state, dineIn(2, LineItemRequest{ProductName: "Limonadas", Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, engine.ApplyTip(order, Tip{Amount: decimal.RequireFromString("1234.567")}))
	assert.Equal(t, "1234.57", order.Tip.String())
	assertTotalsConsistent(t, order)

	assert.ErrorIs(t, engine.ApplyTip(order, Tip{Amount: decimal.NewFromInt(-1)}), ErrRange)
	assert.Equal(t, "1234.57", order.Tip.String())

	// editable through Delivered
	require.NoError(t, engine.Advance(order))
	require.NoError(t, engine.Advance(order))
	require.NoError(t, engine.ApplyTip(order, Tip{Percentage: true}))
	assert.True(t, order.Tip.Equal(decimal.NewFromInt(700)))

	require.NoError(t, engine.Advance(order))
	assert.ErrorIs(t, engine.ApplyTip(order, Tip{Amount: decimal.NewFromInt(5)}), ErrInvalidState)
	assert.True(t, order.Tip.Equal(decimal.NewFromInt(700)))
}

func TestTotalsStayConsistentAcrossEdits(t *testing.T) {
	state := newTestState(t)
	engine := NewEngine(DefaultPolicy(), fixedClock())
	order, err := engine.CreateOrder(state, dineIn(9, burgers(1)))
	require.NoError(t, err)

	ops := []func() error{
		func() error { return engine.AddLineItem(state, order, LineItemRequest{ProductName: "Limonadas", Quantity: 3}) },
		func() error { return engine.ApplyTip(order, Tip{Percentage: true}) },
		func() error { return engine.RemoveLineItemQuantity(order, 1, 2) },
		func() error { return engine.AddLineItem(state, order, burgers(4)) },
		func() error { return engine.ApplyTip(order, Tip{Amount: decimal.RequireFromString("999.999")}) },
		func() error { return engine.RemoveLineItemQuantity(order, 0, 1) },
		func() error { return engine.RemoveLineItemQuantity(order, 5, 1) },
	}
	for _, op := range ops {
		_ = op()
		assertTotalsConsistent(t, order)
	}
}

func TestPolicyTipRate(t *testing.T) {
	state := newTestState(t)
	policy := DefaultPolicy()
	policy.TipRate = decimal.RequireFromString("0.15")
	engine := NewEngine(policy, fixedClock())

	order, err := engine.CreateOrder(state, dineIn(1, burgers(1)))
	require.NoError(t, err)
	require.NoError(t, engine.ApplyTip(order, Tip{Percentage: true}))
	assert.True(t, order.Tip.Equal(decimal.NewFromInt(2250)))
}

func TestPolicyTablesNeverExceedDiningRoom(t *testing.T) {
	state := newTestState(t)

	engine := NewEngine(Policy{MaxTable: 35, TipRate: decimal.Zero}, fixedClock())
	assert.Equal(t, MaxTables, engine.Policy().MaxTable)
	_, err := engine.CreateOrder(state, dineIn(21, burgers(1)))
	assert.ErrorIs(t, err, ErrRange)

	small := NewEngine(Policy{MaxTable: 8}, fixedClock())
	_, err = small.CreateOrder(state, dineIn(9, burgers(1)))
	assert.ErrorIs(t, err, ErrRange)
	_, err = small.CreateOrder(state, dineIn(8, burgers(1)))
	assert.NoError(t, err)
}
