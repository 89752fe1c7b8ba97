package restaurant

import (
	"fmt"

	"comanda/internal/models"
)

// Catalog owns the menu items, keyed by name and kept in insertion order.
type Catalog struct {
	items map[string]*models.MenuItem
	names []string
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]*models.MenuItem)}
}

// AddItem registers a new menu item
func (c *Catalog) AddItem(item models.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}
	if _, exists := c.items[item.Name]; exists {
		return fmt.Errorf("menu item %q: %w", item.Name, ErrDuplicateName)
	}
	if item.Category == "" {
		item.Category = models.Unassigned
	}
	c.items[item.Name] = &item
	c.names = append(c.names, item.Name)
	return nil
}

// UpdateItem replaces the item stored under oldName. A different item.Name
// re-keys the entry while keeping its position.
func (c *Catalog) UpdateItem(oldName string, item models.MenuItem) error {
	if _, exists := c.items[oldName]; !exists {
		return fmt.Errorf("menu item %q: %w", oldName, ErrNotFound)
	}
	if err := validateMenuItem(item); err != nil {
		return err
	}
	if item.Name != oldName {
		if _, taken := c.items[item.Name]; taken {
			return fmt.Errorf("menu item %q: %w", item.Name, ErrDuplicateName)
		}
	}
	if item.Category == "" {
		item.Category = models.Unassigned
	}

	delete(c.items, oldName)
	c.items[item.Name] = &item
	for i, name := range c.names {
		if name == oldName {
			c.names[i] = item.Name
			break
		}
	}
	return nil
}

// RemoveItem deletes a menu item. Orders keep their line item snapshots.
func (c *Catalog) RemoveItem(name string) error {
	if _, exists := c.items[name]; !exists {
		return fmt.Errorf("menu item %q: %w", name, ErrNotFound)
	}
	delete(c.items, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of the named item
func (c *Catalog) Get(name string) (models.MenuItem, error) {
	item, exists := c.items[name]
	if !exists {
		return models.MenuItem{}, fmt.Errorf("menu item %q: %w", name, ErrNotFound)
	}
	return *item, nil
}

// ListAll returns every item in insertion order
func (c *Catalog) ListAll() []models.MenuItem {
	items := make([]models.MenuItem, 0, len(c.names))
	for _, name := range c.names {
		items = append(items, *c.items[name])
	}
	return items
}

// ByCategory groups the items by category for menu display
func (c *Catalog) ByCategory() map[string][]models.MenuItem {
	groups := make(map[string][]models.MenuItem)
	for _, name := range c.names {
		item := c.items[name]
		groups[item.Category] = append(groups[item.Category], *item)
	}
	return groups
}

// retag moves every item in category from to category to.
func (c *Catalog) retag(from, to string) int {
	moved := 0
	for _, item := range c.items {
		if item.IsInCategory(from) {
			item.Category = to
			moved++
		}
	}
	return moved
}

func validateMenuItem(item models.MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("menu item name is required: %w", ErrRange)
	}
	if item.Price < 0 {
		return fmt.Errorf("menu item %q price %d: %w", item.Name, item.Price, ErrRange)
	}
	return nil
}
