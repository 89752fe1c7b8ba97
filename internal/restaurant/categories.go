package restaurant

import (
	"fmt"

	"comanda/internal/models"
)

// CategoryRegistry owns the category names. The Unassigned sentinel is
// implicit: it always exists and cannot be added, renamed or removed.
type CategoryRegistry struct {
	names []string
}

// NewCategoryRegistry creates an empty registry
func NewCategoryRegistry() *CategoryRegistry {
	return &CategoryRegistry{}
}

// Add registers a category name
func (r *CategoryRegistry) Add(name string) error {
	if name == "" {
		return fmt.Errorf("category name is required: %w", ErrRange)
	}
	if r.Has(name) {
		return fmt.Errorf("category %q: %w", name, ErrDuplicateName)
	}
	r.names = append(r.names, name)
	return nil
}

// Rename changes a category name and re-tags every catalog item that used it.
func (r *CategoryRegistry) Rename(catalog *Catalog, oldName, newName string) error {
	idx := r.index(oldName)
	if idx < 0 {
		return fmt.Errorf("category %q: %w", oldName, ErrNotFound)
	}
	if newName == "" {
		return fmt.Errorf("category name is required: %w", ErrRange)
	}
	if newName == oldName {
		return nil
	}
	if r.Has(newName) {
		return fmt.Errorf("category %q: %w", newName, ErrDuplicateName)
	}
	r.names[idx] = newName
	catalog.retag(oldName, newName)
	return nil
}

// Remove deletes a category; its items fall back to Unassigned.
func (r *CategoryRegistry) Remove(catalog *Catalog, name string) error {
	idx := r.index(name)
	if idx < 0 {
		return fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	r.names = append(r.names[:idx], r.names[idx+1:]...)
	catalog.retag(name, models.Unassigned)
	return nil
}

// Has reports whether name is registered. Unassigned always is.
func (r *CategoryRegistry) Has(name string) bool {
	return name == models.Unassigned || r.index(name) >= 0
}

// List returns the registered categories in insertion order, without the
// sentinel.
func (r *CategoryRegistry) List() []models.Category {
	categories := make([]models.Category, 0, len(r.names))
	for _, name := range r.names {
		categories = append(categories, models.Category{Name: name})
	}
	return categories
}

func (r *CategoryRegistry) index(name string) int {
	for i, n := range r.names {
		if n == name {
			return i
		}
	}
	return -1
}
