package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$12.50", Currency(1250, "USD"))
	assert.Equal(t, "$0.00", Currency(0, "usd"))
	assert.Equal(t, "$1499.99", Currency(149999, "USD"))
	assert.Equal(t, "-$0.05", Currency(-5, "USD"))
	assert.Equal(t, "€3.10", Currency(310, "EUR"))
	assert.Equal(t, "ZZZ 1.00", Currency(100, "zzz"))
}

func TestToMinorRounds(t *testing.T) {
	assert.Equal(t, int64(30), ToMinor(0.1+0.2))
	assert.Equal(t, int64(13), ToMinor(0.125))
	assert.Equal(t, int64(49999), ToMinor(499.99))
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "$0.30", Price(0.1+0.2, "USD"))
	assert.Equal(t, "$999.98", Price(499.99*2, "USD"))
}

func TestToMinorSaturates(t *testing.T) {
	limit := int64(MaxAmount * 100)
	assert.Equal(t, limit, ToMinor(1e300))
	assert.Equal(t, limit, ToMinor(1e17))
	assert.Equal(t, -limit, ToMinor(-1e17))
	assert.Equal(t, int64(0), ToMinor(math.NaN()))
	assert.Equal(t, "$10000000000000.00", Price(1e300, "USD"))
}
