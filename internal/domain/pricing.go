package domain

import "math"

// TaxRate is the fixed sales tax applied to the discounted subtotal.
const TaxRate = 0.088

// RoundCurrency rounds an amount to two decimal places (cents).
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Totals is the computed money breakdown of an order.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	Tax            float64
	Tips           float64
	Total          float64
}

// CalculateTotals derives tax and total from a subtotal, a fixed discount
// amount and tips. Tax is TaxRate applied to the discounted subtotal,
// rounded to cents. The discount is clamped so it never exceeds the
// subtotal.
func CalculateTotals(subtotal, discountAmount, tips float64) Totals {
	if discountAmount < 0 {
		discountAmount = 0
	}
	if discountAmount > subtotal {
		discountAmount = subtotal
	}

	taxable := subtotal - discountAmount
	tax := RoundCurrency(taxable * TaxRate)

	return Totals{
		Subtotal:       RoundCurrency(subtotal),
		DiscountAmount: RoundCurrency(discountAmount),
		Tax:            tax,
		Tips:           RoundCurrency(tips),
		Total:          RoundCurrency(taxable + tax + tips),
	}
}
