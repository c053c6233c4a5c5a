package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jrmnl/yandex-techstore/catalog"
)

var symbols = map[catalog.Currency]string{
	catalog.USD: "$",
	catalog.EUR: "€",
	catalog.RUB: "₽",
	catalog.UAH: "₴",
}

// Format renders amount the way the storefront shows prices: Russian digit
// grouping, at most two fraction digits and the currency symbol after the
// number. Zero is always "0 $".
func Format(amount float64, currency catalog.Currency) string {
	if amount == 0 {
		return "0 $"
	}
	return message.NewPrinter(language.Russian).Sprintf("%v %s", number.Decimal(amount, number.MaxFractionDigits(2)), Symbol(currency))
}

func Symbol(currency catalog.Currency) string {
	if s, ok := symbols[currency]; ok {
		return s
	}
	return string(currency)
}
