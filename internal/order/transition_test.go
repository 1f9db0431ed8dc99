package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatuses(t *testing.T) {
	tests := []struct {
		from OrderStatus
		want []OrderStatus
	}{
		{StatusPending, []OrderStatus{StatusProcessing, StatusCancelled}},
		{StatusProcessing, []OrderStatus{StatusShipped, StatusCancelled}},
		{StatusShipped, []OrderStatus{StatusDelivered, StatusCancelled}},
		{StatusDelivered, []OrderStatus{}},
		{StatusCancelled, []OrderStatus{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatuses(tt.from))
		})
	}

	t.Run("result is a copy", func(t *testing.T) {
		next := NextStatuses(StatusPending)
		next[0] = StatusDelivered
		assert.Equal(t, StatusProcessing, NextStatuses(StatusPending)[0])
	})
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusProcessing))
	assert.True(t, CanTransition(StatusShipped, StatusCancelled))
	assert.False(t, CanTransition(StatusPending, StatusDelivered))
	assert.False(t, CanTransition(StatusDelivered, StatusPending))
	assert.False(t, CanTransition(StatusProcessing, StatusPending))
	assert.False(t, CanTransition("BOGUS", StatusPending))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusDelivered))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusShipped))
	assert.False(t, IsTerminal("BOGUS"))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" shipped ")
	assert.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("LOST")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
