package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentIsOverdue(t *testing.T) {
	due := refNow.Add(-time.Hour)

	tests := []struct {
		status PaymentStatus
		due    time.Time
		want   bool
	}{
		{PaymentPending, due, true},
		{PaymentPending, refNow.Add(time.Hour), false},
		{PaymentPending, refNow, false},
		{PaymentPaid, due, false},
		{PaymentFailed, due, false},
		{PaymentRefunded, due, false},
	}

	for _, tt := range tests {
		p := Payment{Status: tt.status, DueDate: tt.due}
		assert.Equal(t, tt.want, p.IsOverdue(refNow), "status %s due %s", tt.status, tt.due)
	}
}

func TestPaymentApplyTotal(t *testing.T) {
	p := Payment{
		Amount:      decimal.RequireFromString("50.00"),
		TaxAmount:   decimal.RequireFromString("2.50"),
		TotalAmount: decimal.RequireFromString("999"),
	}
	p.ApplyTotal()
	assert.Equal(t, "52.50", p.TotalAmount.StringFixed(2))
}

func TestAttendanceDuration(t *testing.T) {
	a := AttendanceLog{CheckInTime: refNow}
	_, ok := a.Duration()
	assert.False(t, ok)

	out := refNow.Add(95 * time.Minute)
	a.CheckOutTime = &out
	d, ok := a.Duration()
	assert.True(t, ok)
	assert.Equal(t, 95*time.Minute, d)
}
