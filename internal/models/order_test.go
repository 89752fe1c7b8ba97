package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderState_Next(t *testing.T) {
	testCases := []struct {
		from OrderState
		to   OrderState
		ok   bool
	}{
		{OrderStateRegistered, OrderStateInPreparation, true},
		{OrderStateInPreparation, OrderStateDelivered, true},
		{OrderStateDelivered, OrderStatePaid, true},
		{OrderStatePaid, OrderStatePaid, false},
		{OrderState("cancelled"), OrderState("cancelled"), false},
	}

	for _, tc := range testCases {
		next, ok := tc.from.Next()
		assert.Equal(t, tc.ok, ok, "from %s", tc.from)
		assert.Equal(t, tc.to, next, "from %s", tc.from)
	}
}

func TestOrderState_Held(t *testing.T) {
	assert.True(t, OrderStateRegistered.Held())
	assert.True(t, OrderStateInPreparation.Held())
	assert.True(t, OrderStateDelivered.Held())
	assert.False(t, OrderStatePaid.Held())
}

func TestOrder_Recalculate(t *testing.T) {
	order := Order{
		LineItems: []LineItem{
			NewLineItem("Hamburguesa", 2, "", decimal.NewFromInt(15000)),
			NewLineItem("Limonadas", 3, "sin hielo", decimal.NewFromInt(7000)),
		},
		Tip: decimal.RequireFromString("1234.5"),
	}

	order.Recalculate()

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(51000)), "subtotal %s", order.Subtotal)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("52234.5")), "total %s", order.Total)
}

func TestOrder_CloneDoesNotAlias(t *testing.T) {
	table := 4
	order := Order{
		Channel:   ChannelDineIn,
		Table:     &table,
		LineItems: []LineItem{NewLineItem("Limonadas", 1, "", decimal.NewFromInt(7000))},
	}

	clone := order.Clone()
	*clone.Table = 9
	clone.LineItems[0].SetQuantity(5)

	assert.Equal(t, 4, *order.Table)
	assert.Equal(t, 1, order.LineItems[0].Quantity)
}
