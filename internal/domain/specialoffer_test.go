package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpecialOffer(t *testing.T) {
	t.Parallel()

	offer, err := NewSpecialOffer("Spring Special", OfferTypeSeasonal, DiscountTypePercentage, 15)
	require.NoError(t, err)

	assert.True(t, offer.IsActive)
	assert.Equal(t, OfferTypeSeasonal, offer.Type)
	assert.Equal(t, DiscountTypePercentage, offer.DiscountType)
	assert.Equal(t, 15.0, offer.DiscountValue)
}

func TestNewSpecialOfferValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSpecialOffer("", OfferTypePromotional, DiscountTypeAmount, 10)
	assert.ErrorIs(t, err, ErrEmptyOfferName)

	_, err = NewSpecialOffer("Promo", OfferType("weekly"), DiscountTypeAmount, 10)
	assert.ErrorIs(t, err, ErrInvalidOfferType)

	_, err = NewSpecialOffer("Promo", OfferTypePromotional, DiscountType("points"), 10)
	assert.ErrorIs(t, err, ErrInvalidDiscountType)

	_, err = NewSpecialOffer("Promo", OfferTypePromotional, DiscountTypeAmount, 0)
	assert.ErrorIs(t, err, ErrNonPositiveDiscount)

	_, err = NewSpecialOffer("Promo", OfferTypePromotional, DiscountTypePercentage, 120)
	assert.ErrorIs(t, err, ErrPercentageOutOfRange)
}

func TestSpecialOfferInValidityWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		from *time.Time
		to   *time.Time
		want bool
	}{
		{"unbounded", nil, nil, true},
		{"inside window", &before, &after, true},
		{"not yet valid", &after, nil, false},
		{"already ended", nil, &before, false},
		{"end bound is exclusive", &before, &now, false},
		{"start bound is inclusive", &now, &after, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			offer := &SpecialOffer{ValidFrom: tc.from, ValidTo: tc.to}
			assert.Equal(t, tc.want, offer.InValidityWindow(now))
		})
	}
}

func TestSpecialOfferDiscountFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		discType DiscountType
		value    float64
		minimum  float64
		subtotal float64
		want     float64
	}{
		{"fixed amount", DiscountTypeAmount, 20, 0, 120, 20},
		{"percentage", DiscountTypePercentage, 15, 0, 120, 18},
		{"percentage rounds to cents", DiscountTypePercentage, 12.5, 0, 99.99, 12.5},
		{"below minimum yields nothing", DiscountTypeAmount, 20, 150, 120, 0},
		{"amount clamped to subtotal", DiscountTypeAmount, 200, 0, 120, 120},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			offer := &SpecialOffer{
				DiscountType:       tc.discType,
				DiscountValue:      tc.value,
				MinimumOrderAmount: tc.minimum,
			}
			assert.Equal(t, tc.want, offer.DiscountFor(tc.subtotal))
		})
	}
}

func TestNewUserSpecialOffer(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	offerID := uuid.New()

	grant, err := NewUserSpecialOffer(userID, offerID, nil)
	require.NoError(t, err)
	assert.Equal(t, userID, grant.UserID)
	assert.Equal(t, offerID, grant.OfferID)
	assert.False(t, grant.IsUsed)
	assert.Nil(t, grant.UsedAt)

	_, err = NewUserSpecialOffer(uuid.Nil, offerID, nil)
	assert.ErrorIs(t, err, ErrEmptyGrantUser)

	_, err = NewUserSpecialOffer(userID, uuid.Nil, nil)
	assert.ErrorIs(t, err, ErrEmptyGrantOffer)
}

func TestUserSpecialOfferRedeemable(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	fresh := &UserSpecialOffer{ExpiresAt: &future}
	assert.True(t, fresh.Redeemable(now))

	used := &UserSpecialOffer{IsUsed: true, ExpiresAt: &future}
	assert.False(t, used.Redeemable(now))

	expired := &UserSpecialOffer{ExpiresAt: &past}
	assert.True(t, expired.Expired(now))
	assert.False(t, expired.Redeemable(now))

	// Expiry boundary is inclusive: a grant expiring exactly now is expired
	atBoundary := &UserSpecialOffer{ExpiresAt: &now}
	assert.True(t, atBoundary.Expired(now))

	unbounded := &UserSpecialOffer{}
	assert.True(t, unbounded.Redeemable(now))
}
