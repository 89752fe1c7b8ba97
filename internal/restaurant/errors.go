// Package restaurant holds the order lifecycle engine together with the
// catalog, category registry and ledger it operates on.
//
// Every failure is one of the sentinel errors below, wrapped with context.
// Callers test the kind with errors.Is; the presentation layer alone decides
// how a kind is shown to staff.
package restaurant

import "errors"

// ErrDuplicateName is returned when a menu item or category name is taken.
var ErrDuplicateName = errors.New("duplicate name")

// ErrNotFound is returned when a menu item, category or order does not exist.
var ErrNotFound = errors.New("not found")

// ErrTableOccupied is returned when a dine-in order targets a table that
// another held order still occupies.
var ErrTableOccupied = errors.New("table occupied")

// ErrEmptyOrder is returned when an order is submitted without line items.
var ErrEmptyOrder = errors.New("empty order")

// ErrInvalidState is returned when the order's current state does not permit
// the operation.
var ErrInvalidState = errors.New("invalid state")

// ErrTerminalState is returned when advancing an order that is already paid.
var ErrTerminalState = errors.New("terminal state")

// ErrRange is returned for quantities, indexes, tables or amounts outside
// their allowed bounds.
var ErrRange = errors.New("out of range")
