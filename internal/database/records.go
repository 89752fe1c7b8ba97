package database

import (
	"fmt"
	"time"

	"comanda/internal/models"

	"github.com/shopspring/decimal"
)

// CategoryRecord is a row of the categories table
type CategoryRecord struct {
	ID       uint   `gorm:"primary_key"`
	Name     string `gorm:"unique_index;not null"`
	Position int
}

// TableName sets the table name for CategoryRecord
func (CategoryRecord) TableName() string {
	return "categories"
}

// MenuItemRecord is a row of the menu_items table
type MenuItemRecord struct {
	ID          uint   `gorm:"primary_key"`
	Name        string `gorm:"unique_index;not null"`
	Price       int64
	Description string `gorm:"type:text"`
	Category    string
	ImageURL    string
	Position    int
}

// TableName sets the table name for MenuItemRecord
func (MenuItemRecord) TableName() string {
	return "menu_items"
}

// OrderRecord is a row of the orders table. Amounts are stored as decimal
// strings so no dialect rounds them.
type OrderRecord struct {
	ID          int64 `gorm:"primary_key;auto_increment:false"`
	Channel     string
	TableNumber *int
	State       string `gorm:"index"`
	OpenedAt    time.Time
	ChangedAt   time.Time
	PaidAt      *time.Time
	Subtotal    string
	Tip         string
	Total       string
}

// TableName sets the table name for OrderRecord
func (OrderRecord) TableName() string {
	return "orders"
}

// LineItemRecord is a row of the order_line_items table
type LineItemRecord struct {
	ID           uint  `gorm:"primary_key"`
	OrderID      int64 `gorm:"index"`
	Position     int
	ProductName  string
	Quantity     int
	Note         string
	UnitPrice    string
	LineSubtotal string
}

// TableName sets the table name for LineItemRecord
func (LineItemRecord) TableName() string {
	return "order_line_items"
}

// CounterRecord holds named sequences such as the next order id
type CounterRecord struct {
	Name  string `gorm:"primary_key"`
	Value int64
}

// TableName sets the table name for CounterRecord
func (CounterRecord) TableName() string {
	return "counters"
}

const nextOrderIDCounter = "next_order_id"

func toOrderRecords(order models.Order) (OrderRecord, []LineItemRecord) {
	record := OrderRecord{
		ID:          order.ID,
		Channel:     string(order.Channel),
		TableNumber: order.Table,
		State:       string(order.State),
		OpenedAt:    order.CreatedAt,
		ChangedAt:   order.UpdatedAt,
		PaidAt:      order.PaidAt,
		Subtotal:    order.Subtotal.String(),
		Tip:         order.Tip.String(),
		Total:       order.Total.String(),
	}
	items := make([]LineItemRecord, 0, len(order.LineItems))
	for i, item := range order.LineItems {
		items = append(items, LineItemRecord{
			OrderID:      order.ID,
			Position:     i,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			Note:         item.Note,
			UnitPrice:    item.UnitPrice.String(),
			LineSubtotal: item.LineSubtotal.String(),
		})
	}
	return record, items
}

func fromOrderRecords(record OrderRecord, items []LineItemRecord) (models.Order, error) {
	order := models.Order{
		ID:        record.ID,
		Channel:   models.Channel(record.Channel),
		Table:     record.TableNumber,
		State:     models.OrderState(record.State),
		CreatedAt: record.OpenedAt,
		UpdatedAt: record.ChangedAt,
		PaidAt:    record.PaidAt,
		LineItems: make([]models.LineItem, 0, len(items)),
	}
	if !order.State.Valid() {
		return models.Order{}, fmt.Errorf("order %d has unknown state %q", record.ID, record.State)
	}

	tip, err := decimal.NewFromString(record.Tip)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %d tip: %w", record.ID, err)
	}
	order.Tip = tip

	for _, item := range items {
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return models.Order{}, fmt.Errorf("order %d line %d price: %w", record.ID, item.Position, err)
		}
		order.LineItems = append(order.LineItems, models.NewLineItem(item.ProductName, item.Quantity, item.Note, price))
	}
	// derived amounts are recomputed rather than trusted
	order.Recalculate()
	return order, nil
}
