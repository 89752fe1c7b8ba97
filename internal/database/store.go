package database

import (
	"context"
	"fmt"

	"comanda/internal/models"
	"comanda/internal/restaurant"

	"github.com/jinzhu/gorm"
)

// Store persists restaurant snapshots with gorm
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on an open, migrated database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load reads the full snapshot
func (s *Store) Load(ctx context.Context) (*restaurant.Snapshot, error) {
	db := s.db

	var categories []CategoryRecord
	if err := db.Order("position").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	var menu []MenuItemRecord
	if err := db.Order("position").Find(&menu).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	var orders []OrderRecord
	if err := db.Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	var lines []LineItemRecord
	if err := db.Order("order_id").Order("position").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}

	snapshot := &restaurant.Snapshot{}
	for _, c := range categories {
		snapshot.Categories = append(snapshot.Categories, c.Name)
	}
	for _, m := range menu {
		snapshot.MenuItems = append(snapshot.MenuItems, models.MenuItem{
			Name:        m.Name,
			Price:       m.Price,
			Description: m.Description,
			Category:    m.Category,
			ImageURL:    m.ImageURL,
		})
	}

	linesByOrder := make(map[int64][]LineItemRecord)
	for _, l := range lines {
		linesByOrder[l.OrderID] = append(linesByOrder[l.OrderID], l)
	}
	for _, o := range orders {
		order, err := fromOrderRecords(o, linesByOrder[o.ID])
		if err != nil {
			return nil, err
		}
		snapshot.Orders = append(snapshot.Orders, order)
	}

	var counter CounterRecord
	err := db.Where("name = ?", nextOrderIDCounter).First(&counter).Error
	switch {
	case err == nil:
		snapshot.NextOrderID = counter.Value
	case gorm.IsRecordNotFoundError(err):
	default:
		return nil, fmt.Errorf("failed to load order counter: %w", err)
	}
	return snapshot, nil
}

// Save replaces the stored snapshot in a single transaction
func (s *Store) Save(ctx context.Context, snapshot *restaurant.Snapshot) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	if err := writeSnapshot(tx, snapshot); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func writeSnapshot(tx *gorm.DB, snapshot *restaurant.Snapshot) error {
	for _, table := range []interface{}{&LineItemRecord{}, &OrderRecord{}, &MenuItemRecord{}, &CategoryRecord{}, &CounterRecord{}} {
		if err := tx.Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}
	}

	for i, name := range snapshot.Categories {
		if err := tx.Create(&CategoryRecord{Name: name, Position: i}).Error; err != nil {
			return fmt.Errorf("failed to save category %q: %w", name, err)
		}
	}
	for i, item := range snapshot.MenuItems {
		record := MenuItemRecord{
			Name:        item.Name,
			Price:       item.Price,
			Description: item.Description,
			Category:    item.Category,
			ImageURL:    item.ImageURL,
			Position:    i,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to save menu item %q: %w", item.Name, err)
		}
	}
	for _, order := range snapshot.Orders {
		record, lines := toOrderRecords(order)
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to save order %d: %w", order.ID, err)
		}
		for i := range lines {
			if err := tx.Create(&lines[i]).Error; err != nil {
				return fmt.Errorf("failed to save order %d line %d: %w", order.ID, i, err)
			}
		}
	}

	counter := CounterRecord{Name: nextOrderIDCounter, Value: snapshot.NextOrderID}
	if err := tx.Create(&counter).Error; err != nil {
		return fmt.Errorf("failed to save order counter: %w", err)
	}
	return nil
}

// SeedDefaults stores the house menu when the database is empty. It reports
// whether anything was written.
func (s *Store) SeedDefaults(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.Model(&MenuItemRecord{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count menu items: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.db.Model(&OrderRecord{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count orders: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.Save(ctx, DefaultSnapshot()); err != nil {
		return false, err
	}
	return true, nil
}

// DefaultSnapshot is the house menu a fresh installation starts with
func DefaultSnapshot() *restaurant.Snapshot {
	return &restaurant.Snapshot{
		Categories: []string{"Carnes Especiales", "Comidas Rápidas", "Bebidas"},
		MenuItems: []models.MenuItem{
			{Name: "Carne Asada", Price: 20000, Description: "Carne Asada, Papitas, arepa con lonchita, Ensalada", Category: "Carnes Especiales", ImageURL: "https://tinyurl.com/yr2e7jfy"},
			{Name: "Hamburguesa", Price: 15000, Description: "Carne, Ripio, Tomate, Queso, Ensalada", Category: "Comidas Rápidas", ImageURL: "https://tinyurl.com/yr2e7jfy"},
			{Name: "Limonadas", Price: 7000, Description: "Limonadas de diferentes sabores", Category: "Bebidas"},
		},
		NextOrderID: 1,
	}
}
