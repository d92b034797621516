package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.MustParse("uz"))

// FormatPrice renders an amount the way the storefront shows it,
// e.g. "1 500 000 so'm" with Uzbek digit grouping.
func FormatPrice(amount int64) string {
	return pricePrinter.Sprintf("%d", amount) + " so'm"
}
