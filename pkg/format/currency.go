// Package format renders decimal amounts for display: truncated to whole
// currency units and grouped by the locale's thousands separator.
package format

import (
	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/iwvelando/tuition-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale parses a BCP 47 tag, falling back to American English.
func Locale(tag string) language.Tag {
	if tag == "" {
		tag = constants.DefaultLocale
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return language.AmericanEnglish
	}
	return parsed
}

// WholeNumber truncates amount and groups thousands, e.g. "12,345".
func WholeNumber(amount decimal.Decimal, tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("%d", mathutil.Truncate(amount).IntPart())
}

// WholeCurrency is WholeNumber with a dollar sign, e.g. "-$12,345".
func WholeCurrency(amount decimal.Decimal, tag language.Tag) string {
	whole := mathutil.Truncate(amount)
	formatted := WholeNumber(whole.Abs(), tag)
	if whole.IsNegative() {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}
