package offer

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Discount computes the discount amount for an order subtotal.
//
// Percentage offers take DiscountValue percent of the subtotal; flat offers
// take DiscountValue directly. The result is capped at the subtotal, so the
// discount alone can never push an order total negative. DiscountValue itself
// is not range-checked here; the cap is the only backstop.
func Discount(subtotal decimal.Decimal, o *Offer) decimal.Decimal {
	var amount decimal.Decimal
	if o.IsPercentage {
		amount = subtotal.Mul(o.DiscountValue).Div(hundred)
	} else {
		amount = o.DiscountValue
	}
	return decimal.Min(amount, subtotal).Round(2)
}
