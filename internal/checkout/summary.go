// Package checkout builds the checkout summary and submits orders.
package checkout

import (
	"fmt"

	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/format"
	"github.com/ignitoosolutions/ignito1/internal/payments"
)

// EmptyMessage is shown instead of a summary when the cart has no lines.
const EmptyMessage = "Your cart is empty."

// SummaryLine is one rendered checkout line: "name x qty" and its subtotal.
type SummaryLine struct {
	Label    string
	Subtotal string
}

// Summary is the checkout page's view of the cart. Amount is computed once
// and is the only source for both the displayed total and the charge.
type Summary struct {
	Empty   bool
	Message string
	Lines   []SummaryLine
	Items   []domain.LineItem
	Amount  payments.Amount
}

// NewSummary reads c once. An empty cart yields Empty with EmptyMessage and
// no total.
func NewSummary(c *cart.Cart, currency string) Summary {
	if c == nil || c.Empty() {
		return Summary{Empty: true, Message: EmptyMessage}
	}
	items := c.Items()
	lines := make([]SummaryLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, SummaryLine{
			Label:    fmt.Sprintf("%s x %d", item.Name, item.Quantity),
			Subtotal: format.Price(item.Subtotal(), currency),
		})
	}
	return Summary{
		Lines:  lines,
		Items:  items,
		Amount: payments.NewAmount(c.Total(), currency),
	}
}

// Total is the displayed grand total.
func (s Summary) Total() string {
	if s.Empty {
		return ""
	}
	return s.Amount.Display()
}

// Mount hands the summary's amount to the widget. It reports false for an
// empty summary, where no button is shown.
func (s Summary) Mount(widget payments.Widget) (payments.Button, bool) {
	if s.Empty || widget == nil {
		return payments.Button{}, false
	}
	return widget.Button(s.Amount), true
}
