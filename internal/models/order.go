package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel describes how an order was placed
type Channel string

const (
	ChannelDineIn   Channel = "dine_in"
	ChannelTakeout  Channel = "takeout"
	ChannelDelivery Channel = "delivery"
)

// Valid reports whether c is one of the known channels
func (c Channel) Valid() bool {
	switch c {
	case ChannelDineIn, ChannelTakeout, ChannelDelivery:
		return true
	}
	return false
}

// OrderState represents the possible states of an order
type OrderState string

const (
	OrderStateRegistered    OrderState = "registered"
	OrderStateInPreparation OrderState = "in_preparation"
	OrderStateDelivered     OrderState = "delivered"
	OrderStatePaid          OrderState = "paid"
)

// orderLifecycle is the only path an order may take.
var orderLifecycle = []OrderState{
	OrderStateRegistered,
	OrderStateInPreparation,
	OrderStateDelivered,
	OrderStatePaid,
}

// OrderStates returns the lifecycle states in order.
func OrderStates() []OrderState {
	states := make([]OrderState, len(orderLifecycle))
	copy(states, orderLifecycle)
	return states
}

// Next returns the state that follows s. The second value is false when s is
// terminal or unknown.
func (s OrderState) Next() (OrderState, bool) {
	for i, state := range orderLifecycle {
		if state == s && i < len(orderLifecycle)-1 {
			return orderLifecycle[i+1], true
		}
	}
	return s, false
}

// Valid reports whether s is a lifecycle state
func (s OrderState) Valid() bool {
	for _, state := range orderLifecycle {
		if state == s {
			return true
		}
	}
	return false
}

// Held reports whether an order in state s still occupies its table.
func (s OrderState) Held() bool {
	return s == OrderStateRegistered || s == OrderStateInPreparation || s == OrderStateDelivered
}

// Terminal reports whether no transition leaves s
func (s OrderState) Terminal() bool {
	return s == OrderStatePaid
}

// LineItem is one product line of an order. UnitPrice is captured when the
// line is added and never follows later catalog edits.
type LineItem struct {
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	Note         string          `json:"note,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// NewLineItem builds a line item and computes its subtotal
func NewLineItem(productName string, quantity int, note string, unitPrice decimal.Decimal) LineItem {
	item := LineItem{
		ProductName: productName,
		Note:        note,
		UnitPrice:   unitPrice,
	}
	item.SetQuantity(quantity)
	return item
}

// SetQuantity updates the quantity and the line subtotal together
func (li *LineItem) SetQuantity(quantity int) {
	li.Quantity = quantity
	li.LineSubtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Order represents a customer order
type Order struct {
	ID        int64           `json:"id"`
	Channel   Channel         `json:"channel"`
	Table     *int            `json:"table,omitempty"`
	LineItems []LineItem      `json:"line_items"`
	State     OrderState      `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tip       decimal.Decimal `json:"tip"`
	Total     decimal.Decimal `json:"total"`
}

// Recalculate derives Subtotal and Total from the line items and tip.
// Every mutation of LineItems or Tip must be followed by a call.
func (o *Order) Recalculate() {
	subtotal := decimal.Zero
	for _, item := range o.LineItems {
		subtotal = subtotal.Add(item.LineSubtotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.Tip)
}

// OccupiesTable reports whether the order holds the given table
func (o *Order) OccupiesTable(table int) bool {
	return o.Channel == ChannelDineIn && o.Table != nil && *o.Table == table && o.State.Held()
}

// Clone returns a deep copy so callers cannot alias ledger state.
func (o *Order) Clone() Order {
	c := *o
	if o.Table != nil {
		table := *o.Table
		c.Table = &table
	}
	if o.PaidAt != nil {
		paidAt := *o.PaidAt
		c.PaidAt = &paidAt
	}
	c.LineItems = make([]LineItem, len(o.LineItems))
	copy(c.LineItems, o.LineItems)
	return c
}
