package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Day is the length of one calendar day in UTC.
const Day = 24 * time.Hour

// ExpiringSoonDays is the window, inclusive, in which a membership counts as
// expiring soon.
const ExpiringSoonDays = 7

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "Active"
	MembershipExpired   MembershipStatus = "Expired"
	MembershipCancelled MembershipStatus = "Cancelled"
	MembershipFrozen    MembershipStatus = "Frozen"
)

// MemberMembership is one contract over [StartDate, EndDate).
type MemberMembership struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	MemberID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"memberId"`
	Member           *Member         `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	MembershipTypeID uuid.UUID       `gorm:"type:uuid;index;not null" json:"membershipTypeId"`
	MembershipType   *MembershipType `gorm:"foreignKey:MembershipTypeID" json:"membershipType,omitempty"`

	StartDate time.Time        `gorm:"not null" json:"startDate"`
	EndDate   time.Time        `gorm:"not null;index" json:"endDate"`
	Status    MembershipStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentID *uuid.UUID       `gorm:"type:uuid" json:"paymentId,omitempty"`
	AutoRenew bool             `json:"autoRenew"`

	Freezes []MembershipFreeze `gorm:"foreignKey:MemberMembershipID;constraint:OnDelete:CASCADE" json:"freezes,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (m *MemberMembership) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// DaysUntilExpiry is EndDate - now in whole days, truncated toward zero.
// Negative once the membership has lapsed by at least a day.
func (m MemberMembership) DaysUntilExpiry(now time.Time) int {
	return int(m.EndDate.Sub(now) / Day)
}

func (m MemberMembership) IsExpired(now time.Time) bool {
	return now.After(m.EndDate)
}

func (m MemberMembership) IsExpiringSoon(now time.Time) bool {
	days := m.DaysUntilExpiry(now)
	return days >= 0 && days <= ExpiringSoonDays
}

// TotalFrozenDays sums FrozenDays over all recorded freezes.
func (m MemberMembership) TotalFrozenDays() int {
	total := 0
	for _, f := range m.Freezes {
		total += f.FrozenDays()
	}
	return total
}

// ChargedFrozenDays sums ChargedDays over all recorded freezes.
func (m MemberMembership) ChargedFrozenDays() int {
	total := 0
	for _, f := range m.Freezes {
		total += f.ChargedDays()
	}
	return total
}

// FrozenAt reports whether now falls inside one of the freezes.
func (m MemberMembership) FrozenAt(now time.Time) bool {
	for _, f := range m.Freezes {
		if f.Contains(now) {
			return true
		}
	}
	return false
}

// MembershipFreeze pauses a membership over [StartDate, EndDate).
type MembershipFreeze struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	MemberMembershipID uuid.UUID  `gorm:"type:uuid;index;not null" json:"memberMembershipId"`
	StartDate          time.Time  `gorm:"not null" json:"startDate"`
	EndDate            time.Time  `gorm:"not null" json:"endDate"`
	Reason             string     `gorm:"size:500" json:"reason,omitempty"`
	CreatedByStaffID   *uuid.UUID `gorm:"type:uuid;index" json:"createdByStaffId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func (f *MembershipFreeze) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// FrozenDays is EndDate - StartDate in whole days, truncated.
func (f MembershipFreeze) FrozenDays() int {
	return int(f.EndDate.Sub(f.StartDate) / Day)
}

// ChargedDays is the freeze length drawn from the plan allowance. A started
// day counts in full, so no freeze is free.
func (f MembershipFreeze) ChargedDays() int {
	d := f.EndDate.Sub(f.StartDate)
	if d <= 0 {
		return 0
	}
	return int((d + Day - 1) / Day)
}

func (f MembershipFreeze) Contains(t time.Time) bool {
	return !t.Before(f.StartDate) && t.Before(f.EndDate)
}

// Overlaps reports whether the two half-open intervals share any instant.
func (f MembershipFreeze) Overlaps(o MembershipFreeze) bool {
	return f.StartDate.Before(o.EndDate) && o.StartDate.Before(f.EndDate)
}
