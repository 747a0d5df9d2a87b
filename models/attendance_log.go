package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryMethod string

const (
	EntryManual    EntryMethod = "Manual"
	EntryCard      EntryMethod = "Card"
	EntryBiometric EntryMethod = "Biometric"
	EntryQRCode    EntryMethod = "QRCode"
)

type AttendanceLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MemberID uuid.UUID `gorm:"type:uuid;index;not null" json:"memberId"`

	CheckInTime  time.Time  `gorm:"not null;index" json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`

	EntryMethod        EntryMethod `gorm:"type:varchar(20);not null" json:"entryMethod"`
	FacilityArea       string      `gorm:"size:50" json:"facilityArea,omitempty"`
	ProcessedByStaffID *uuid.UUID  `gorm:"type:uuid;index" json:"processedByStaffId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *AttendanceLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Duration is the visit length; ok is false while the member is still in.
func (a AttendanceLog) Duration() (d time.Duration, ok bool) {
	if a.CheckOutTime == nil {
		return 0, false
	}
	return a.CheckOutTime.Sub(a.CheckInTime), true
}
