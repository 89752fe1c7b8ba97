package restaurant

import (
	"fmt"

	"comanda/internal/models"
)

// Ledger is the authoritative collection of orders. Orders are only ever
// appended; ids come from a counter that never goes backwards.
type Ledger struct {
	orders []*models.Order
	byID   map[int64]*models.Order
	nextID int64
}

// NewLedger creates an empty ledger whose first id is 1
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[int64]*models.Order), nextID: 1}
}

// RestoreLedger rebuilds a ledger from stored orders. The counter resumes at
// nextID or just past the highest stored id, whichever is larger.
func RestoreLedger(orders []models.Order, nextID int64) *Ledger {
	l := NewLedger()
	for i := range orders {
		order := orders[i].Clone()
		l.orders = append(l.orders, &order)
		l.byID[order.ID] = &order
		if order.ID >= l.nextID {
			l.nextID = order.ID + 1
		}
	}
	if nextID > l.nextID {
		l.nextID = nextID
	}
	return l
}

// NextID returns the id the next appended order will receive
func (l *Ledger) NextID() int64 {
	return l.nextID
}

// Append assigns the next id to order and stores it.
func (l *Ledger) Append(order *models.Order) {
	order.ID = l.nextID
	l.nextID++
	l.orders = append(l.orders, order)
	l.byID[order.ID] = order
}

// Get returns the stored order. The pointer is live ledger state.
func (l *Ledger) Get(id int64) (*models.Order, error) {
	order, exists := l.byID[id]
	if !exists {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return order, nil
}

// Len returns the number of orders
func (l *Ledger) Len() int {
	return len(l.orders)
}

// Occupant returns the held dine-in order sitting at table, if any.
func (l *Ledger) Occupant(table int) (*models.Order, bool) {
	for _, order := range l.orders {
		if order.OccupiesTable(table) {
			return order, true
		}
	}
	return nil, false
}

// Snapshot returns copies of all orders in creation order
func (l *Ledger) Snapshot() []models.Order {
	orders := make([]models.Order, 0, len(l.orders))
	for _, order := range l.orders {
		orders = append(orders, order.Clone())
	}
	return orders
}

// Filter returns copies of the orders accepted by keep, in creation order.
func (l *Ledger) Filter(keep func(*models.Order) bool) []models.Order {
	orders := []models.Order{}
	for _, order := range l.orders {
		if keep(order) {
			orders = append(orders, order.Clone())
		}
	}
	return orders
}

// InStates returns copies of the orders whose state is one of states
func (l *Ledger) InStates(states ...models.OrderState) []models.Order {
	return l.Filter(func(o *models.Order) bool {
		for _, s := range states {
			if o.State == s {
				return true
			}
		}
		return false
	})
}
