package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCurrency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10.56, RoundCurrency(10.559999))
	assert.Equal(t, 10.55, RoundCurrency(10.554))
	assert.Equal(t, 0.0, RoundCurrency(0))
	assert.Equal(t, -2.5, RoundCurrency(-2.499999))
}

func TestCalculateTotals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subtotal float64
		discount float64
		tips     float64
		want     Totals
	}{
		{
			name:     "no discount no tips",
			subtotal: 120,
			want: Totals{
				Subtotal: 120,
				Tax:      10.56,
				Total:    130.56,
			},
		},
		{
			name:     "discount reduces taxable base",
			subtotal: 120,
			discount: 10,
			want: Totals{
				Subtotal:       120,
				DiscountAmount: 10,
				Tax:            9.68,
				Total:          119.68,
			},
		},
		{
			name:     "tips added after tax",
			subtotal: 100,
			tips:     15,
			want: Totals{
				Subtotal: 100,
				Tax:      8.8,
				Tips:     15,
				Total:    123.8,
			},
		},
		{
			name:     "discount clamped to subtotal",
			subtotal: 50,
			discount: 80,
			want: Totals{
				Subtotal:       50,
				DiscountAmount: 50,
				Tax:            0,
				Total:          0,
			},
		},
		{
			name:     "negative discount treated as zero",
			subtotal: 100,
			discount: -5,
			want: Totals{
				Subtotal: 100,
				Tax:      8.8,
				Total:    108.8,
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := CalculateTotals(tc.subtotal, tc.discount, tc.tips)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculateTotalsRoundsToCents(t *testing.T) {
	t.Parallel()

	got := CalculateTotals(99.99, 0, 0)
	assert.Equal(t, 8.8, got.Tax)
	assert.Equal(t, 108.79, got.Total)
}
