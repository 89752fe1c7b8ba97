package restaurant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"comanda/internal/models"
	"comanda/internal/reporting"

	"github.com/rs/zerolog"
)

// EventType names what happened to an order
type EventType string

const (
	EventOrderCreated  EventType = "order_created"
	EventOrderAdvanced EventType = "order_advanced"
	EventOrderUpdated  EventType = "order_updated"
	EventTableRejected EventType = "table_rejected"
)

// Event describes a completed order mutation. From is set for advances and
// Table for rejections.
type Event struct {
	Type  EventType         `json:"type"`
	Order models.Order      `json:"order"`
	From  models.OrderState `json:"from,omitempty"`
	Table int               `json:"table,omitempty"`
}

// Observer receives events after the mutation has been applied. Observe must
// not call back into the Service.
type Observer interface {
	Observe(event Event)
}

// OrderFilter selects orders by state and creation date. Empty fields match
// everything.
type OrderFilter struct {
	States []models.OrderState
	Range  reporting.DateRange
}

// Service is the single entry point for staff actions. Mutations are
// serialized by one lock so check-then-act sequences such as the table
// occupancy check are atomic. Queries return copies.
type Service struct {
	mu        sync.RWMutex
	state     *State
	engine    *Engine
	store     Store
	observers []Observer
	logger    zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithStore persists a snapshot after each successful mutation
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithObserver registers an observer
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observers = append(s.observers, o) }
}

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService wraps state and engine
func NewService(state *State, engine *Engine, opts ...Option) *Service {
	s := &Service{
		state:  state,
		engine: engine,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads state from store and returns a Service that persists into it
func Open(ctx context.Context, store Store, engine *Engine, opts ...Option) (*Service, error) {
	snapshot, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant state: %w", err)
	}
	state, err := StateFromSnapshot(snapshot)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithStore(store)}, opts...)
	return NewService(state, engine, opts...), nil
}

// Policy returns the lifecycle rules in force
func (s *Service) Policy() Policy {
	return s.engine.Policy()
}

// Menu

// AddMenuItem adds an item to the catalog. The category must be registered;
// an empty category means Unassigned.
func (s *Service) AddMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategory(item.Category); err != nil {
		return models.MenuItem{}, err
	}
	if err := s.state.Catalog.AddItem(item); err != nil {
		return models.MenuItem{}, err
	}
	s.persist(ctx, "add_menu_item")
	return s.state.Catalog.Get(item.Name)
}

// UpdateMenuItem edits the item stored under oldName, renaming it when
// item.Name differs.
func (s *Service) UpdateMenuItem(ctx context.Context, oldName string, item models.MenuItem) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategory(item.Category); err != nil {
		return models.MenuItem{}, err
	}
	if err := s.state.Catalog.UpdateItem(oldName, item); err != nil {
		return models.MenuItem{}, err
	}
	s.persist(ctx, "update_menu_item")
	return s.state.Catalog.Get(item.Name)
}

// RemoveMenuItem deletes an item from the catalog
func (s *Service) RemoveMenuItem(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.Catalog.RemoveItem(name); err != nil {
		return err
	}
	s.persist(ctx, "remove_menu_item")
	return nil
}

// MenuItem returns one catalog item
func (s *Service) MenuItem(name string) (models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Catalog.Get(name)
}

// MenuItems returns the catalog in insertion order
func (s *Service) MenuItems() []models.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Catalog.ListAll()
}

// Menu returns the catalog grouped by category
func (s *Service) Menu() map[string][]models.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Catalog.ByCategory()
}

func (s *Service) checkCategory(name string) error {
	if name != "" && !s.state.Categories.Has(name) {
		return fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return nil
}

// Categories

// AddCategory registers a category
func (s *Service) AddCategory(ctx context.Context, name string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.Categories.Add(name); err != nil {
		return models.Category{}, err
	}
	s.persist(ctx, "add_category")
	return models.Category{Name: name}, nil
}

// RenameCategory renames a category and re-tags its items
func (s *Service) RenameCategory(ctx context.Context, oldName, newName string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.Categories.Rename(s.state.Catalog, oldName, newName); err != nil {
		return models.Category{}, err
	}
	s.persist(ctx, "rename_category")
	return models.Category{Name: newName}, nil
}

// RemoveCategory deletes a category; its items become Unassigned
func (s *Service) RemoveCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.Categories.Remove(s.state.Catalog, name); err != nil {
		return err
	}
	s.persist(ctx, "remove_category")
	return nil
}

// Categories lists the registered categories
func (s *Service) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Categories.List()
}

// Orders

// CreateOrder submits a new order
func (s *Service) CreateOrder(ctx context.Context, req NewOrder) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.engine.CreateOrder(s.state, req)
	if err != nil {
		if req.Table != nil && errors.Is(err, ErrTableOccupied) {
			s.notify(Event{Type: EventTableRejected, Table: *req.Table})
		}
		return models.Order{}, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("channel", string(order.Channel)).
		Str("subtotal", order.Subtotal.String()).
		Msg("order created")
	s.persist(ctx, "create_order")
	created := order.Clone()
	s.notify(Event{Type: EventOrderCreated, Order: created})
	return created, nil
}

// Advance moves an order to its next state
func (s *Service) Advance(ctx context.Context, id int64) (models.Order, error) {
	return s.mutateOrder(ctx, id, "advance_order", func(order *models.Order) (Event, error) {
		from := order.State
		if err := s.engine.Advance(order); err != nil {
			return Event{}, err
		}
		s.logger.Info().
			Int64("order_id", order.ID).
			Str("from", string(from)).
			Str("to", string(order.State)).
			Msg("order advanced")
		return Event{Type: EventOrderAdvanced, From: from}, nil
	})
}

// AddLineItem appends a product to an order
func (s *Service) AddLineItem(ctx context.Context, id int64, req LineItemRequest) (models.Order, error) {
	return s.mutateOrder(ctx, id, "add_line_item", func(order *models.Order) (Event, error) {
		if err := s.engine.AddLineItem(s.state, order, req); err != nil {
			return Event{}, err
		}
		return Event{Type: EventOrderUpdated}, nil
	})
}

// RemoveLineItemQuantity takes units off a line of a registered order
func (s *Service) RemoveLineItemQuantity(ctx context.Context, id int64, index, quantity int) (models.Order, error) {
	return s.mutateOrder(ctx, id, "remove_line_item", func(order *models.Order) (Event, error) {
		if err := s.engine.RemoveLineItemQuantity(order, index, quantity); err != nil {
			return Event{}, err
		}
		return Event{Type: EventOrderUpdated}, nil
	})
}

// ApplyTip sets the tip of an unpaid order
func (s *Service) ApplyTip(ctx context.Context, id int64, tip Tip) (models.Order, error) {
	return s.mutateOrder(ctx, id, "apply_tip", func(order *models.Order) (Event, error) {
		if err := s.engine.ApplyTip(order, tip); err != nil {
			return Event{}, err
		}
		return Event{Type: EventOrderUpdated}, nil
	})
}

func (s *Service) mutateOrder(ctx context.Context, id int64, action string, apply func(*models.Order) (Event, error)) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.state.Ledger.Get(id)
	if err != nil {
		return models.Order{}, err
	}
	event, err := apply(order)
	if err != nil {
		s.logger.Debug().Err(err).Int64("order_id", id).Str("action", action).Msg("order mutation rejected")
		return models.Order{}, err
	}
	s.persist(ctx, action)
	event.Order = order.Clone()
	s.notify(event)
	return event.Order, nil
}

// Order returns one order by id
func (s *Service) Order(id int64) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, err := s.state.Ledger.Get(id)
	if err != nil {
		return models.Order{}, err
	}
	return order.Clone(), nil
}

// Orders returns the orders matching filter in creation order
func (s *Service) Orders(filter OrderFilter) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Ledger.Filter(func(o *models.Order) bool {
		if len(filter.States) > 0 && !containsState(filter.States, o.State) {
			return false
		}
		return filter.Range.Contains(o.CreatedAt)
	})
}

// TableStatus reports which order, if any, holds a table
type TableStatus struct {
	Table   int    `json:"table"`
	OrderID *int64 `json:"order_id,omitempty"`
}

// Tables returns the occupancy of every table
func (s *Service) Tables() []TableStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]TableStatus, 0, s.engine.policy.MaxTable)
	for t := 1; t <= s.engine.policy.MaxTable; t++ {
		status := TableStatus{Table: t}
		if occupant, held := s.state.Ledger.Occupant(t); held {
			id := occupant.ID
			status.OrderID = &id
		}
		tables = append(tables, status)
	}
	return tables
}

// Reports

// LineItemReport projects line items of orders created in r
func (s *Service) LineItemReport(r reporting.DateRange) []reporting.LineItemRow {
	return reporting.LineItemReport(s.snapshotOrders(), r)
}

// OrderSummaryReport projects orders created in r
func (s *Service) OrderSummaryReport(r reporting.DateRange) []reporting.OrderSummaryRow {
	return reporting.OrderSummaryReport(s.snapshotOrders(), r)
}

// Sales returns totals per channel and per state for orders created in r,
// along with the resolved range.
func (s *Service) Sales(r reporting.DateRange) (reporting.DateRange, []reporting.SalesBucket, []reporting.SalesBucket) {
	orders := s.snapshotOrders()
	return r.Resolve(orders), reporting.SalesByChannel(orders, r), reporting.SalesByState(orders, r)
}

func (s *Service) snapshotOrders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Ledger.Snapshot()
}

// Save writes the current state to the store, if any
func (s *Service) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	s.mu.RLock()
	snapshot := SnapshotOf(s.state)
	s.mu.RUnlock()
	return s.store.Save(ctx, snapshot)
}

// persist saves after a mutation. Durability is best effort: a failed save
// is logged and the in-memory change stands. Callers hold the write lock.
func (s *Service) persist(ctx context.Context, action string) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, SnapshotOf(s.state)); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist restaurant state")
	}
}

func (s *Service) notify(event Event) {
	for _, o := range s.observers {
		o.Observe(event)
	}
}

func containsState(states []models.OrderState, state models.OrderState) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
