package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	sale := int64(8000)
	tooHigh := int64(20000)

	p := Product{Price: 10000}
	assert.Equal(t, int64(10000), p.EffectivePrice())

	p.SalePrice = &sale
	assert.Equal(t, int64(8000), p.EffectivePrice())

	// A sale price above the regular price is ignored.
	p.SalePrice = &tooHigh
	assert.Equal(t, int64(10000), p.EffectivePrice())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(OrderStatusReceived))
	assert.True(t, ValidStatus(OrderStatusShipped))
	assert.True(t, ValidStatus(OrderStatusDelivered))
	assert.True(t, ValidStatus(OrderStatusCancelled))
	assert.False(t, ValidStatus("primljeno"))
	assert.False(t, ValidStatus(""))
}

func TestAllowedTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusReceived, OrderStatusShipped, true},
		{OrderStatusReceived, OrderStatusCancelled, true},
		{OrderStatusReceived, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusReceived, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusReceived, false},
		// Terminal states accept only themselves.
		{OrderStatusDelivered, OrderStatusDelivered, true},
		{OrderStatusCancelled, OrderStatusCancelled, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, AllowedTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
