// Package money форматирует суммы долга для отображения в карточке должника.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Символы совпадают с en-US форматом браузера (Intl.NumberFormat).
var symbols = map[models.Currency]string{
	models.USD: "$",
	models.EUR: "€",
	models.GBP: "£",
	models.GHS: "GH₵",
	models.JPY: "¥",
	models.AUD: "A$",
	models.CAD: "CA$",
}

var (
	printer = message.NewPrinter(language.AmericanEnglish)

	minInt64 = decimal.NewFromInt(-1 << 63)
	maxInt64 = decimal.NewFromInt(1<<63 - 1)
)

// Symbol возвращает символ валюты либо её код, если символ неизвестен.
func Symbol(c models.Currency) string {
	if s, ok := symbols[c]; ok {
		return s
	}
	return string(c)
}

// Format возвращает сумму в формате en-US с разделителями разрядов
// и ровно двумя знаками после запятой, например "$1,234.50".
// Сумма не проходит через float64, поэтому все цифры сохраняются.
func Format(amount decimal.Decimal, c models.Currency) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.Round(2).StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	intPart := amount.Round(2).Truncate(0)
	if intPart.GreaterThanOrEqual(minInt64) && intPart.LessThanOrEqual(maxInt64) {
		whole = printer.Sprintf("%d", intPart.IntPart())
	}
	return sign + Symbol(c) + whole + "." + frac
}
