// Package cart holds a visitor's shopping cart, its persistence and the
// per-page-load session that keeps the two in step.
package cart

import (
	"math"
	"strings"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/format"
)

// Bounds keeping every subtotal and the cart total chargeable.
const (
	MaxPrice    = 1_000_000_000
	MaxQuantity = 10_000
)

// Cart is an insertion-ordered list of line items with unique ids. Every
// quantity is at least 1. The zero value is an empty cart.
type Cart struct {
	items []domain.LineItem
}

// New returns a cart holding copies of items, in order. Callers are expected
// to have validated them (see Validate).
func New(items []domain.LineItem) *Cart {
	return &Cart{items: append([]domain.LineItem(nil), items...)}
}

// Add inserts a line or bumps an existing one. An existing id gains exactly
// one unit regardless of quantity; a new id is appended with quantity (at
// least 1). It reports false and leaves the cart untouched when id or name is
// blank, price is not finite or outside [0, MaxPrice], the line would exceed
// MaxQuantity, or the total would exceed format.MaxAmount.
func (c *Cart) Add(id, name string, price float64, quantity int) bool {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" || !validPrice(price) {
		return false
	}
	for i := range c.items {
		if c.items[i].ID == id {
			if c.items[i].Quantity >= MaxQuantity || c.Total()+c.items[i].Price > format.MaxAmount {
				return false
			}
			c.items[i].Quantity++
			return true
		}
	}
	if quantity < 1 {
		quantity = 1
	}
	if quantity > MaxQuantity || c.Total()+price*float64(quantity) > format.MaxAmount {
		return false
	}
	c.items = append(c.items, domain.LineItem{ID: id, Name: name, Price: price, Quantity: quantity})
	return true
}

// Remove deletes the whole line at index. It reports false for an index out of range.
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.items) {
		return false
	}
	c.items = append(c.items[:index:index], c.items[index+1:]...)
	return true
}

// Total is the full-precision sum of price*quantity. Round only for display.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// Count is the sum of quantities.
func (c *Cart) Count() int {
	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []domain.LineItem {
	return append([]domain.LineItem(nil), c.items...)
}

// Len is the number of distinct lines.
func (c *Cart) Len() int { return len(c.items) }

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.items) == 0 }

// Reset drops every line.
func (c *Cart) Reset() { c.items = nil }

// Validate reports whether items satisfy the cart invariants: non-blank ids
// and names, unique ids, prices in [0, MaxPrice], quantities in
// [1, MaxQuantity] and a total within format.MaxAmount.
func Validate(items []domain.LineItem) bool {
	seen := make(map[string]struct{}, len(items))
	var total float64
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Name) == "" {
			return false
		}
		if !validPrice(item.Price) || item.Quantity < 1 || item.Quantity > MaxQuantity {
			return false
		}
		if total += item.Subtotal(); total > format.MaxAmount {
			return false
		}
		if _, dup := seen[item.ID]; dup {
			return false
		}
		seen[item.ID] = struct{}{}
	}
	return true
}

func validPrice(price float64) bool {
	return !math.IsNaN(price) && price >= 0 && price <= MaxPrice
}
