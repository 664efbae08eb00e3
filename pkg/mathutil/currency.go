// Package mathutil provides the decimal helpers shared by ingestion, the cost
// engine and display formatting.
package mathutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// ErrMalformedAmount is returned when a rate value cannot be read as a decimal.
var ErrMalformedAmount = errors.New("malformed amount")

var semesters = decimal.NewFromInt(constants.SemestersPerYear)

// ParseAmount reads a feed value such as "1,234.50" or "$2,000" into an exact
// decimal. Blank values are zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, constants.CurrencySymbol)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	return amount, nil
}

// AmountOrZero parses raw and reports whether it was well formed. Malformed
// values yield zero.
func AmountOrZero(raw string) (decimal.Decimal, bool) {
	amount, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// Truncate drops the fractional part toward zero. It never rounds.
func Truncate(val decimal.Decimal) decimal.Decimal {
	return val.Truncate(0)
}

// Annualize converts a semester figure into a fall-and-spring figure.
func Annualize(val decimal.Decimal) decimal.Decimal {
	return val.Mul(semesters)
}

// Semesterize converts a fall-and-spring figure into a single-semester figure.
func Semesterize(val decimal.Decimal) decimal.Decimal {
	return val.Div(semesters)
}

// Sum adds all values.
func Sum(vals ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vals {
		total = total.Add(v)
	}
	return total
}
