package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to in_progress", StatusPending, StatusInProgress, false},
		{"pending to completed", StatusPending, StatusCompleted, false},
		{"confirmed to in_progress", StatusConfirmed, StatusInProgress, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to rejected", StatusConfirmed, StatusRejected, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, false},
		{"in_progress to completed", StatusInProgress, StatusCompleted, true},
		{"in_progress to cancelled", StatusInProgress, StatusCancelled, false},
		{"completed is terminal", StatusCompleted, StatusPending, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"rejected is terminal", StatusRejected, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestBookingStatusCanBeCancelled(t *testing.T) {
	assert.True(t, StatusPending.CanBeCancelled())
	assert.True(t, StatusConfirmed.CanBeCancelled())
	assert.False(t, StatusInProgress.CanBeCancelled())
	assert.False(t, StatusCompleted.CanBeCancelled())
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)

	_, err = ParseBookingStatus("shipped")
	assert.Error(t, err)
}

func TestParseCheckStatus(t *testing.T) {
	status, err := ParseCheckStatus("checked_in")
	require.NoError(t, err)
	assert.Equal(t, CheckedIn, status)

	_, err = ParseCheckStatus("done")
	assert.Error(t, err)
}
