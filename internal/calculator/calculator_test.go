package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	est, err := Calculate([]Line{
		{Name: "Reporting", UnitPrice: 499, Quantity: 2, Months: 12},
		{Name: "Marketing", UnitPrice: 1499, Quantity: 1, Months: 3},
		{Name: "Strategy", UnitPrice: 2999, Quantity: 0, Months: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 499.0*2*12+1499*3, est.Total)
	assert.Len(t, est.Lines, 3)
}

func TestCalculateEmpty(t *testing.T) {
	est, err := Calculate(nil)
	require.NoError(t, err)
	assert.Zero(t, est.Total)
}

func TestCalculateRejectsInvalid(t *testing.T) {
	for _, line := range []Line{
		{UnitPrice: -1, Quantity: 1, Months: 1},
		{UnitPrice: math.NaN(), Quantity: 1, Months: 1},
		{UnitPrice: 1, Quantity: -1, Months: 1},
		{UnitPrice: 1, Quantity: 1, Months: -1},
	} {
		_, err := Calculate([]Line{line})
		assert.ErrorIs(t, err, ErrInvalidLine)
	}
}
