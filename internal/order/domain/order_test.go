package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderTotalsItems(t *testing.T) {
	o := NewOrder("usd", "jenny@example.com", Shipping{Name: "Jenny Rosen"}, []Item{
		{Parent: "shirt-small-woman", Quantity: 2, UnitAmount: 999},
		{Parent: "pins-collector", Quantity: 1, UnitAmount: 799},
	})
	assert.Equal(t, int64(2797), o.Amount)
	assert.Equal(t, StatusCreated, o.Status)
	assert.Regexp(t, `^ord_[0-9a-f]{32}$`, o.ID)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
}

func TestStatusNeedsPayment(t *testing.T) {
	assert.True(t, StatusCreated.NeedsPayment())
	for _, s := range []Status{StatusPending, StatusPaid, StatusFailed, StatusCanceled, Status("disputed")} {
		assert.False(t, s.NeedsPayment(), string(s))
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusPaid, StatusFailed, StatusCanceled, Status("disputed")} {
		assert.True(t, s.Terminal(), string(s))
	}
	assert.False(t, StatusCreated.Terminal())
	assert.False(t, StatusPending.Terminal())
}
