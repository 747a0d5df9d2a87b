package models

import "time"

// Sequence is a named counter advanced by a single atomic upsert.
type Sequence struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     int64  `gorm:"not null"`
	UpdatedAt time.Time
}

const (
	MembershipNumberSequence = "membership_number"
	receiptSequencePrefix    = "receipt:"
)

// ReceiptSequence names the per-day receipt counter for day (UTC).
func ReceiptSequence(day time.Time) string {
	return receiptSequencePrefix + day.UTC().Format("20060102")
}
