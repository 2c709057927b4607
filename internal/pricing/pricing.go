// Package pricing derives cart totals. Nothing here touches storage; callers
// recompute after every mutation instead of persisting totals.
package pricing

import "github.com/shopspring/decimal"

// ShippingFee is charged once per non-empty cart.
var ShippingFee = decimal.NewFromInt(70)

type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

func LineTotal(l Line) decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Compute sums the lines and adds shipping. An empty cart reports zero for
// every field, shipping included.
func Compute(lines []Line) Totals {
	if len(lines) == 0 {
		return Totals{Subtotal: decimal.Zero, Shipping: decimal.Zero, Total: decimal.Zero}
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l))
	}
	return Totals{
		Subtotal: subtotal,
		Shipping: ShippingFee,
		Total:    subtotal.Add(ShippingFee),
	}
}
