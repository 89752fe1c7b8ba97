package restaurant

import (
	"fmt"
	"time"

	"comanda/internal/models"

	"github.com/shopspring/decimal"
)

// State is the restaurant aggregate every engine operation works on.
type State struct {
	Catalog    *Catalog
	Categories *CategoryRegistry
	Ledger     *Ledger
}

// NewState creates an empty aggregate
func NewState() *State {
	return &State{
		Catalog:    NewCatalog(),
		Categories: NewCategoryRegistry(),
		Ledger:     NewLedger(),
	}
}

// Policy holds the tunable rules of the lifecycle engine
type Policy struct {
	MaxTable int
	TipRate  decimal.Decimal
}

// MaxTables is the number of tables in the dining room. A policy may use
// fewer, never more.
const MaxTables = 20

// DefaultPolicy returns tables 1..20 and a 10% suggested tip
func DefaultPolicy() Policy {
	return Policy{
		MaxTable: MaxTables,
		TipRate:  decimal.New(10, -2),
	}
}

// LineItemRequest names a catalog product to put on an order
type LineItemRequest struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Note        string `json:"note"`
}

// NewOrder is a staff submission for a new order
type NewOrder struct {
	Channel models.Channel    `json:"channel"`
	Table   *int              `json:"table"`
	Items   []LineItemRequest `json:"items"`
}

// Tip is either a fixed amount or, when Percentage is set, the policy rate
// applied to the subtotal.
type Tip struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage bool            `json:"percentage"`
}

// Engine applies lifecycle operations to a State. It never locks; callers
// serialize access.
type Engine struct {
	policy Policy
	clock  func() time.Time
}

// NewEngine creates an engine. A nil clock uses time.Now.
func NewEngine(policy Policy, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if policy.MaxTable <= 0 || policy.MaxTable > MaxTables {
		policy.MaxTable = MaxTables
	}
	return &Engine{policy: policy, clock: clock}
}

// Policy returns the engine's rules
func (e *Engine) Policy() Policy {
	return e.policy
}

// CreateOrder validates a submission, prices it from the catalog and appends
// the resulting order to the ledger. Nothing is appended on failure.
func (e *Engine) CreateOrder(state *State, req NewOrder) (*models.Order, error) {
	if !req.Channel.Valid() {
		return nil, fmt.Errorf("channel %q: %w", req.Channel, ErrRange)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var table *int
	if req.Channel == models.ChannelDineIn {
		if req.Table == nil {
			return nil, fmt.Errorf("dine-in order requires a table: %w", ErrRange)
		}
		t := *req.Table
		if t < 1 || t > e.policy.MaxTable {
			return nil, fmt.Errorf("table %d not in 1..%d: %w", t, e.policy.MaxTable, ErrRange)
		}
		if occupant, held := state.Ledger.Occupant(t); held {
			return nil, fmt.Errorf("table %d held by order %d: %w", t, occupant.ID, ErrTableOccupied)
		}
		table = &t
	}

	items := make([]models.LineItem, 0, len(req.Items))
	for _, r := range req.Items {
		item, err := priceLineItem(state.Catalog, r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	now := e.clock()
	order := &models.Order{
		Channel:   req.Channel,
		Table:     table,
		LineItems: items,
		State:     models.OrderStateRegistered,
		CreatedAt: now,
		UpdatedAt: now,
		Tip:       decimal.Zero,
	}
	order.Recalculate()
	state.Ledger.Append(order)
	return order, nil
}

// Advance moves the order one step along its lifecycle
func (e *Engine) Advance(order *models.Order) error {
	next, ok := order.State.Next()
	if !ok {
		return fmt.Errorf("order %d is %s: %w", order.ID, order.State, ErrTerminalState)
	}
	now := e.clock()
	order.State = next
	order.UpdatedAt = now
	if next == models.OrderStatePaid {
		order.PaidAt = &now
	}
	return nil
}

// AddLineItem appends a product at its current catalog price.
func (e *Engine) AddLineItem(state *State, order *models.Order, req LineItemRequest) error {
	if order.State.Terminal() {
		return fmt.Errorf("order %d is %s: %w", order.ID, order.State, ErrInvalidState)
	}
	item, err := priceLineItem(state.Catalog, req)
	if err != nil {
		return err
	}
	order.LineItems = append(order.LineItems, item)
	order.Recalculate()
	order.UpdatedAt = e.clock()
	return nil
}

// RemoveLineItemQuantity takes quantity units off the line at index. A line
// that reaches zero is dropped and later lines shift down by one.
func (e *Engine) RemoveLineItemQuantity(order *models.Order, index, quantity int) error {
	if order.State != models.OrderStateRegistered {
		return fmt.Errorf("order %d is %s: %w", order.ID, order.State, ErrInvalidState)
	}
	if index < 0 || index >= len(order.LineItems) {
		return fmt.Errorf("line %d of %d: %w", index, len(order.LineItems), ErrRange)
	}
	current := order.LineItems[index].Quantity
	if quantity <= 0 || quantity > current {
		return fmt.Errorf("remove %d of %d: %w", quantity, current, ErrRange)
	}

	if quantity == current {
		order.LineItems = append(order.LineItems[:index], order.LineItems[index+1:]...)
	} else {
		order.LineItems[index].SetQuantity(current - quantity)
	}
	order.Recalculate()
	order.UpdatedAt = e.clock()
	return nil
}

// ApplyTip replaces the tip, rounded to two places. Tips stay editable until
// the order is paid.
func (e *Engine) ApplyTip(order *models.Order, tip Tip) error {
	if order.State.Terminal() {
		return fmt.Errorf("order %d is %s: %w", order.ID, order.State, ErrInvalidState)
	}
	amount := tip.Amount
	if tip.Percentage {
		amount = order.Subtotal.Mul(e.policy.TipRate)
	}
	if amount.IsNegative() {
		return fmt.Errorf("tip %s: %w", amount, ErrRange)
	}
	order.Tip = amount.Round(2)
	order.Recalculate()
	order.UpdatedAt = e.clock()
	return nil
}

func priceLineItem(catalog *Catalog, req LineItemRequest) (models.LineItem, error) {
	if req.Quantity <= 0 {
		return models.LineItem{}, fmt.Errorf("quantity %d of %q: %w", req.Quantity, req.ProductName, ErrRange)
	}
	product, err := catalog.Get(req.ProductName)
	if err != nil {
		return models.LineItem{}, err
	}
	return models.NewLineItem(product.Name, req.Quantity, req.Note, product.UnitPrice()), nil
}
