package order

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var orderIDPattern = regexp.MustCompile(`^ORD-[0-9A-F]{12}$`)

func TestOrder_AssignID(t *testing.T) {
	o := &Order{}
	o.AssignID()
	assert.Regexp(t, orderIDPattern, o.OrderID)

	first := o.OrderID
	o.AssignID()
	assert.Equal(t, first, o.OrderID)

	assert.NotEqual(t, NewOrderID(), NewOrderID())
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"499.00", 49900},
		{"0", 0},
		{"19.99", 1999},
		{"10.005", 1001},
		{"1250.5", 125050},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, MinorUnits(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCompleted))
	assert.True(t, CanTransition(StatusPending, StatusFailed))
	assert.True(t, CanTransition(StatusPending, StatusRefunded))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCompleted, StatusRefunded))
	assert.False(t, CanTransition(StatusFailed, StatusCompleted))
	assert.False(t, CanTransition(Status("shipped"), StatusCompleted))
}
