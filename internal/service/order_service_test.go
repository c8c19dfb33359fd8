package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/longnd/toystore-service/internal/models"
)

func TestTransitionTable(t *testing.T) {
	allowed := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusConfirmed, models.OrderStatusShipping},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled},
		{models.OrderStatusShipping, models.OrderStatusDelivered},
	}
	for _, tt := range allowed {
		assert.True(t, transitionAllowed(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusShipping},
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusShipping, models.OrderStatusCancelled},
		{models.OrderStatusDelivered, models.OrderStatusShipping},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed},
		{models.OrderStatusConfirmed, models.OrderStatusPending},
		{models.OrderStatusDelivered, models.OrderStatusDelivered},
	}
	for _, tt := range denied {
		assert.False(t, transitionAllowed(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}

func TestKnownStatus(t *testing.T) {
	for _, s := range []models.OrderStatus{
		models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusShipping,
		models.OrderStatusDelivered, models.OrderStatusCancelled,
	} {
		assert.True(t, knownStatus(s))
	}
	assert.False(t, knownStatus("returned"))
	assert.False(t, knownStatus(""))
}
