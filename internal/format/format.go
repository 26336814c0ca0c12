// Package format renders money for the storefront.
package format

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// MaxAmount bounds every amount the storefront formats or charges. In minor
// units it is exact as both a float64 and an int64.
const MaxAmount = 1e13

// ToMinor converts a full-precision amount to minor units (cents), rounding
// half away from zero. Amounts beyond ±MaxAmount saturate and NaN is zero.
func ToMinor(amount float64) int64 {
	switch {
	case math.IsNaN(amount):
		return 0
	case amount > MaxAmount:
		amount = MaxAmount
	case amount < -MaxAmount:
		amount = -MaxAmount
	}
	return int64(math.Round(amount * 100))
}

// Currency formats minor units with the currency's narrow symbol and exactly
// two decimals, without grouping: Currency(1250, "USD") => "$12.50".
// Unknown codes fall back to a "XYZ 12.50" form.
func Currency(minor int64, code string) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}
	digits := fmt.Sprintf("%d.%02d", minor/100, minor%100)

	var out string
	if unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code))); err == nil {
		out = printer.Sprint(currency.NarrowSymbol(unit)) + digits
	} else {
		out = strings.ToUpper(strings.TrimSpace(code)) + " " + digits
	}
	if neg {
		return "-" + out
	}
	return out
}

// Price formats a full-precision amount, rounding to cents for display only.
func Price(amount float64, code string) string {
	return Currency(ToMinor(amount), code)
}
