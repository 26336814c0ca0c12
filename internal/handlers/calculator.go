package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ignitoosolutions/ignito1/internal/calculator"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/format"
	"github.com/ignitoosolutions/ignito1/internal/middleware"
	"github.com/ignitoosolutions/ignito1/internal/views"
)

const calculatorInvalidMessage = "Quantities and months must be whole numbers of zero or more."

func (h *SiteHandlers) calculatorPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "calculator", "calculator", "Cost calculator", h.calculatorView(r.Context(), nil))
}

// calculate prices the posted quantities and months per catalog service.
func (h *SiteHandlers) calculate(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	var view views.CalculatorView
	if err := r.ParseForm(); err != nil {
		status = http.StatusBadRequest
		view = h.calculatorView(r.Context(), nil)
		view.Error = calculatorInvalidMessage
	} else {
		view = h.calculatorView(r.Context(), r)
		if view.Error != "" {
			status = http.StatusUnprocessableEntity
		}
	}

	if middleware.IsHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = h.deps.Renderer.Fragment(w, "calculator_result", view)
		return
	}
	h.render(w, r, status, "calculator", "calculator", "Cost calculator", view)
}

// calculatorView builds one row per catalog service. With a nil form the
// rows are blank.
func (h *SiteHandlers) calculatorView(ctx context.Context, r *http.Request) views.CalculatorView {
	services := h.deps.Catalog.Snapshot(ctx).All()
	rows := make([]views.CalculatorRow, 0, len(services))
	lines := make([]calculator.Line, 0, len(services))
	invalid := false
	for _, svc := range services {
		row := views.CalculatorRow{
			Slug:      svc.Slug,
			Name:      svc.Name,
			UnitPrice: format.Price(svc.Price, h.deps.Currency),
		}
		if r != nil {
			qty, ok1 := formInt(r, "qty_"+svc.Slug)
			months, ok2 := formInt(r, "months_"+svc.Slug)
			invalid = invalid || !ok1 || !ok2
			row.Quantity, row.Months = qty, months
		}
		rows = append(rows, row)
		lines = append(lines, lineFor(svc, row))
	}

	view := views.CalculatorView{Rows: rows}
	if r == nil {
		return view
	}
	if invalid {
		view.Error = calculatorInvalidMessage
		return view
	}
	estimate, err := calculator.Calculate(lines)
	if err != nil {
		view.Error = calculatorInvalidMessage
		return view
	}
	for i, line := range estimate.Lines {
		if cost := line.Cost(); cost > 0 {
			view.Rows[i].Cost = format.Price(cost, h.deps.Currency)
		}
	}
	view.Total = format.Price(estimate.Total, h.deps.Currency)
	return view
}

func lineFor(svc domain.Service, row views.CalculatorRow) calculator.Line {
	return calculator.Line{Name: svc.Name, UnitPrice: svc.Price, Quantity: row.Quantity, Months: row.Months}
}

// formInt reads a non-negative integer field; blank means zero.
func formInt(r *http.Request, key string) (int, bool) {
	raw := strings.TrimSpace(r.PostForm.Get(key))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
