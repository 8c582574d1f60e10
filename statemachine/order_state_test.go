package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
)

func TestHappyPathTransitions(t *testing.T) {
	path := []models.OrderStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReady,
		models.StatusOnDelivery,
		models.StatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, CanTransition(path[i], path[i+1], ActorRestaurant),
			"%s -> %s should be allowed", path[i], path[i+1])
	}
}

func TestInvalidTransitionsRejected(t *testing.T) {
	invalid := []struct {
		from, to models.OrderStatus
		actor    string
	}{
		{models.StatusReady, models.StatusPreparing, ActorRestaurant},
		{models.StatusDelivered, models.StatusPreparing, ActorRestaurant},
		{models.StatusPending, models.StatusDelivered, ActorRestaurant},
		{models.StatusPreparing, models.StatusCancelled, ActorUser},
		{models.StatusPending, models.StatusRejected, ActorUser},
		{models.StatusPending, models.StatusConfirmed, ActorUser},
		{models.StatusCancelled, models.StatusConfirmed, ActorRestaurant},
	}
	for _, tt := range invalid {
		err := CanTransition(tt.from, tt.to, tt.actor)
		assert.Error(t, err, "%s -> %s by %s should be rejected", tt.from, tt.to, tt.actor)
		assert.Equal(t, apperr.State, apperr.KindOf(err))
	}
}

func TestCancellationEdges(t *testing.T) {
	for _, from := range []models.OrderStatus{models.StatusPending, models.StatusConfirmed} {
		assert.NoError(t, CanTransition(from, models.StatusCancelled, ActorUser))
		assert.NoError(t, CanTransition(from, models.StatusCancelled, ActorRestaurant))
	}
	assert.NoError(t, CanTransition(models.StatusPending, models.StatusRejected, ActorRestaurant))
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []models.OrderStatus{models.StatusDelivered, models.StatusCancelled, models.StatusRejected} {
		assert.True(t, IsTerminal(s), "%s should be terminal", s)
	}
	for _, s := range []models.OrderStatus{models.StatusPending, models.StatusConfirmed, models.StatusPreparing} {
		assert.False(t, IsTerminal(s), "%s should not be terminal", s)
	}
}

func TestMilestoneColumns(t *testing.T) {
	assert.Equal(t, "confirmed_at", MilestoneColumn(models.StatusConfirmed))
	assert.Equal(t, "on_delivery_at", MilestoneColumn(models.StatusOnDelivery))
	assert.Equal(t, "cancelled_at", MilestoneColumn(models.StatusCancelled))
	assert.Equal(t, "cancelled_at", MilestoneColumn(models.StatusRejected))
	assert.Equal(t, "", MilestoneColumn(models.StatusPending))
}
