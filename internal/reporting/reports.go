// Package reporting projects the order ledger into flat, tabular views for a
// date range. Projections are read-only: they work on order copies and never
// touch the ledger.
package reporting

import (
	"fmt"
	"sort"
	"time"

	"comanda/internal/models"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted for range bounds
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar dates. A zero bound is open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ParseDateRange parses optional YYYY-MM-DD bounds in loc
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	var r DateRange
	var err error
	if from != "" {
		if r.From, err = time.ParseInLocation(DateLayout, from, loc); err != nil {
			return DateRange{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
	}
	if to != "" {
		if r.To, err = time.ParseInLocation(DateLayout, to, loc); err != nil {
			return DateRange{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
	}
	return r, nil
}

// Contains reports whether t falls on a date inside the range. The date of t
// is taken in the location of each bound, not in t's own location.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && civilDay(t.In(r.From.Location())) < civilDay(r.From) {
		return false
	}
	if !r.To.IsZero() && civilDay(t.In(r.To.Location())) > civilDay(r.To) {
		return false
	}
	return true
}

// Resolve fills open bounds with the earliest and latest creation times of
// orders.
func (r DateRange) Resolve(orders []models.Order) DateRange {
	if len(orders) == 0 {
		return r
	}
	if r.From.IsZero() {
		r.From = earliest(orders)
	}
	if r.To.IsZero() {
		r.To = latest(orders)
	}
	return r
}

func earliest(orders []models.Order) time.Time {
	var t time.Time
	for _, o := range orders {
		if t.IsZero() || o.CreatedAt.Before(t) {
			t = o.CreatedAt
		}
	}
	return t
}

func latest(orders []models.Order) time.Time {
	var t time.Time
	for _, o := range orders {
		if o.CreatedAt.After(t) {
			t = o.CreatedAt
		}
	}
	return t
}

// civilDay encodes the calendar date of t, in t's location, as yyyymmdd.
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// LineItemRow is one line item of one order
type LineItemRow struct {
	Timestamp    time.Time         `json:"timestamp"`
	Channel      models.Channel    `json:"channel"`
	State        models.OrderState `json:"state"`
	OrderID      int64             `json:"orderId"`
	ProductName  string            `json:"productName"`
	LineSubtotal decimal.Decimal   `json:"lineSubtotal"`
}

// OrderSummaryRow is one order with its totals
type OrderSummaryRow struct {
	Timestamp time.Time         `json:"timestamp"`
	Channel   models.Channel    `json:"channel"`
	State     models.OrderState `json:"state"`
	OrderID   int64             `json:"orderId"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Tip       decimal.Decimal   `json:"tip"`
	Total     decimal.Decimal   `json:"total"`
}

// SalesBucket aggregates order totals under one key
type SalesBucket struct {
	Key    string          `json:"key"`
	Orders int             `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

// InRange returns the orders created on a date inside r
func InRange(orders []models.Order, r DateRange) []models.Order {
	var filtered []models.Order
	for _, o := range orders {
		if r.Contains(o.CreatedAt) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// LineItemReport flattens every line item of the orders in range
func LineItemReport(orders []models.Order, r DateRange) []LineItemRow {
	rows := []LineItemRow{}
	for _, o := range InRange(orders, r) {
		for _, item := range o.LineItems {
			rows = append(rows, LineItemRow{
				Timestamp:    o.CreatedAt,
				Channel:      o.Channel,
				State:        o.State,
				OrderID:      o.ID,
				ProductName:  item.ProductName,
				LineSubtotal: item.LineSubtotal,
			})
		}
	}
	return rows
}

// OrderSummaryReport returns one row per order in range
func OrderSummaryReport(orders []models.Order, r DateRange) []OrderSummaryRow {
	rows := []OrderSummaryRow{}
	for _, o := range InRange(orders, r) {
		rows = append(rows, OrderSummaryRow{
			Timestamp: o.CreatedAt,
			Channel:   o.Channel,
			State:     o.State,
			OrderID:   o.ID,
			Subtotal:  o.Subtotal,
			Tip:       o.Tip,
			Total:     o.Total,
		})
	}
	return rows
}

// SalesByChannel sums order totals per channel
func SalesByChannel(orders []models.Order, r DateRange) []SalesBucket {
	return salesBy(InRange(orders, r), func(o models.Order) string { return string(o.Channel) })
}

// SalesByState sums order totals per lifecycle state
func SalesByState(orders []models.Order, r DateRange) []SalesBucket {
	return salesBy(InRange(orders, r), func(o models.Order) string { return string(o.State) })
}

func salesBy(orders []models.Order, key func(models.Order) string) []SalesBucket {
	index := make(map[string]int)
	buckets := []SalesBucket{}
	for _, o := range orders {
		k := key(o)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, SalesBucket{Key: k, Total: decimal.Zero})
		}
		buckets[i].Orders++
		buckets[i].Total = buckets[i].Total.Add(o.Total)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}
