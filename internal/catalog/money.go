package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEuro renders an amount the way the storefront does: "€ 7,50".
func FormatEuro(d decimal.Decimal) string {
	return "€ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}
