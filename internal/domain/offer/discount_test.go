package offer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		value    string
		percent  bool
		want     string
	}{
		{
			name:     "percentage",
			subtotal: "100.00",
			value:    "20",
			percent:  true,
			want:     "20.00",
		},
		{
			name:     "percentage rounds to cents",
			subtotal: "33.33",
			value:    "15",
			percent:  true,
			want:     "5.00",
		},
		{
			name:     "flat",
			subtotal: "200.00",
			value:    "30",
			want:     "30",
		},
		{
			name:     "flat capped at subtotal",
			subtotal: "100.00",
			value:    "150",
			want:     "100.00",
		},
		{
			name:     "full percentage",
			subtotal: "250.00",
			value:    "100",
			percent:  true,
			want:     "250.00",
		},
		{
			name:     "zero value",
			subtotal: "99.00",
			value:    "0",
			percent:  true,
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Offer{
				DiscountValue: decimal.RequireFromString(tt.value),
				IsPercentage:  tt.percent,
			}
			got := Discount(decimal.RequireFromString(tt.subtotal), o)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestOfferAppliesTo(t *testing.T) {
	storeWide := &Offer{}
	assert.True(t, storeWide.AppliesTo(1))
	assert.True(t, storeWide.AppliesTo(42))

	productID := int64(7)
	restricted := &Offer{ProductID: &productID}
	assert.True(t, restricted.AppliesTo(7))
	assert.False(t, restricted.AppliesTo(8))
}

func TestOfferMerge(t *testing.T) {
	expires := mustTime(t, "2026-06-01T00:00:00Z")
	o := Offer{
		Code:          "SUMMER20",
		DiscountValue: decimal.NewFromInt(20),
		IsPercentage:  true,
		ExpiresAt:     expires,
	}

	newCode := "SUMMER25"
	newValue := decimal.NewFromInt(25)
	productID := int64(3)
	o.Merge(Update{
		Code:          &newCode,
		DiscountValue: &newValue,
		ProductID:     &productID,
	})

	assert.Equal(t, "SUMMER25", o.Code)
	assert.True(t, newValue.Equal(o.DiscountValue))
	assert.True(t, o.IsPercentage, "unset fields stay unchanged")
	assert.Equal(t, expires, o.ExpiresAt)
	assert.Equal(t, &productID, o.ProductID)
}
