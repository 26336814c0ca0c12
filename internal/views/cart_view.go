package views

import (
	"fmt"

	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/format"
)

// CartLine is one rendered dropdown line. Index is the line's current
// position and is what the remove control posts back.
type CartLine struct {
	Index    int
	ID       string
	Label    string
	Subtotal string
}

// CartView aggregates everything the cart dropdown and the navbar badge show.
type CartView struct {
	Lines      []CartLine
	Total      string
	Count      int
	Empty      bool
	AutoHideMS int64
}

// BuildCartView projects c into display form. It reads c only, so building
// twice from an unchanged cart yields an identical view.
func BuildCartView(c *cart.Cart, currency string) CartView {
	if c == nil {
		c = &cart.Cart{}
	}
	items := c.Items()
	lines := make([]CartLine, 0, len(items))
	for i, item := range items {
		lines = append(lines, CartLine{
			Index:    i,
			ID:       item.ID,
			Label:    fmt.Sprintf("%s x %d", item.Name, item.Quantity),
			Subtotal: format.Price(item.Subtotal(), currency),
		})
	}
	return CartView{
		Lines: lines,
		Total: format.Price(c.Total(), currency),
		Count: c.Count(),
		Empty: len(lines) == 0,
	}
}

// Trigger is the HX-Trigger payload announcing the cart's new state.
func (v CartView) Trigger() map[string]any {
	return map[string]any{
		"cart:updated": map[string]any{
			"count": v.Count,
			"total": v.Total,
		},
	}
}
