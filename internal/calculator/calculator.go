// Package calculator estimates the cost of a bundle of services over time.
package calculator

import (
	"errors"
	"math"
)

// ErrInvalidLine is returned for a negative or non-finite input.
var ErrInvalidLine = errors.New("calculator: invalid line")

// Line is one service in an estimate.
type Line struct {
	Name      string
	UnitPrice float64
	Quantity  int
	Months    int
}

// Cost is UnitPrice*Quantity*Months.
func (l Line) Cost() float64 {
	return l.UnitPrice * float64(l.Quantity) * float64(l.Months)
}

// Estimate is the result of pricing a set of lines.
type Estimate struct {
	Lines []Line
	Total float64
}

// Calculate sums the cost of every line. Lines with zero quantity or months
// contribute nothing but are kept so the form can be re-rendered as entered.
func Calculate(lines []Line) (Estimate, error) {
	var total float64
	for _, line := range lines {
		if math.IsNaN(line.UnitPrice) || math.IsInf(line.UnitPrice, 0) || line.UnitPrice < 0 {
			return Estimate{}, ErrInvalidLine
		}
		if line.Quantity < 0 || line.Months < 0 {
			return Estimate{}, ErrInvalidLine
		}
		total += line.Cost()
	}
	return Estimate{Lines: append([]Line(nil), lines...), Total: total}, nil
}
