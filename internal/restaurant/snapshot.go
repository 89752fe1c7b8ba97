package restaurant

import (
	"context"
	"fmt"

	"comanda/internal/models"
)

// Snapshot is the storable form of a State. Menu items keep catalog order,
// orders keep creation order and line items keep insertion order.
type Snapshot struct {
	Categories  []string
	MenuItems   []models.MenuItem
	Orders      []models.Order
	NextOrderID int64
}

// Store loads and saves snapshots. The format is up to the implementation.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

// SnapshotOf copies state into a snapshot
func SnapshotOf(state *State) *Snapshot {
	categories := state.Categories.List()
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return &Snapshot{
		Categories:  names,
		MenuItems:   state.Catalog.ListAll(),
		Orders:      state.Ledger.Snapshot(),
		NextOrderID: state.Ledger.NextID(),
	}
}

// StateFromSnapshot rebuilds a State, rejecting snapshots that break the
// catalog or registry invariants.
func StateFromSnapshot(snapshot *Snapshot) (*State, error) {
	state := NewState()
	if snapshot == nil {
		return state, nil
	}
	for _, name := range snapshot.Categories {
		if err := state.Categories.Add(name); err != nil {
			return nil, fmt.Errorf("restore categories: %w", err)
		}
	}
	for _, item := range snapshot.MenuItems {
		if item.Category != "" && !state.Categories.Has(item.Category) {
			item.Category = models.Unassigned
		}
		if err := state.Catalog.AddItem(item); err != nil {
			return nil, fmt.Errorf("restore menu: %w", err)
		}
	}
	state.Ledger = RestoreLedger(snapshot.Orders, snapshot.NextOrderID)
	return state, nil
}
