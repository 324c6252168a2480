// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import "github.com/shopspring/decimal"

// EUR is the single currency the till operates in.
const EUR = "EUR"

// Format renders a monetary amount for display, e.g. "12.35 EUR".
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " " + EUR
}
