package promo

import (
	"github.com/shopspring/decimal"

	"github.com/jrmnl/yandex-techstore/cart"
)

// MinorUnitPlaces is the rounding precision applied to every total.
const MinorUnitPlaces = 2

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Items      int     `json:"items"`
	Percent    int     `json:"discountPercent"`
	Amount     float64 `json:"amount"`
	Discount   float64 `json:"discount"`
	GrandTotal float64 `json:"grandTotal"`
}

// LineTotal is price times quantity for one line, rounded like the totals.
func LineTotal(l cart.Line) float64 {
	return decimal.NewFromFloat(l.Product.Price).
		Mul(decimal.NewFromInt(int64(l.Qty))).
		Round(MinorUnitPlaces).
		InexactFloat64()
}

// Compute prices the lines. Amount and discount are both rounded half away
// from zero to the minor unit, so GrandTotal is exact.
func Compute(lines []cart.Line, percent int) Totals {
	amount := decimal.Zero
	items := 0
	for _, l := range lines {
		amount = amount.Add(decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Qty))))
		items += l.Qty
	}
	amount = amount.Round(MinorUnitPlaces)
	discount := amount.Mul(decimal.NewFromInt(int64(percent))).Div(hundred).Round(MinorUnitPlaces)
	grand := amount.Sub(discount)

	return Totals{
		Items:      items,
		Percent:    percent,
		Amount:     amount.InexactFloat64(),
		Discount:   discount.InexactFloat64(),
		GrandTotal: grand.InexactFloat64(),
	}
}
