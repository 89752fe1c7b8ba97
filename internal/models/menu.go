package models

import (
	"github.com/shopspring/decimal"
)

// Unassigned is the category of menu items whose category was deleted.
const Unassigned = "Unassigned"

// MenuItem represents a dish on the menu
type MenuItem struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url,omitempty"`
}

// UnitPrice returns the price as a decimal amount for line item snapshots
func (mi *MenuItem) UnitPrice() decimal.Decimal {
	return decimal.NewFromInt(mi.Price)
}

// IsInCategory checks if the item belongs to a specific category
func (mi *MenuItem) IsInCategory(category string) bool {
	return mi.Category == category
}

// Category represents a menu category
type Category struct {
	Name string `json:"name"`
}
