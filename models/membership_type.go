package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MembershipType is a sellable plan. Rows referenced by existing memberships
// are treated as read-only; historical prices live on the payments.
type MembershipType struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name" validate:"required,max=100"`
	Description string    `json:"description,omitempty"`

	DurationDays   int             `gorm:"not null" json:"durationDays" validate:"gt=0"`
	Price          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	TaxPercentage  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"taxPercentage"`
	MaxFreezeDays  int             `gorm:"not null" json:"maxFreezeDays" validate:"gte=0,lte=365"`
	MaxGuestVisits int             `gorm:"not null" json:"maxGuestVisits" validate:"gte=0"`
	IsActive       bool            `gorm:"not null" json:"isActive"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (t *MembershipType) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// TaxAmount is Price x TaxPercentage / 100 rounded to cents.
func (t MembershipType) TaxAmount() decimal.Decimal {
	return PercentOf(t.Price, t.TaxPercentage)
}

// TotalPrice is Price + Price x TaxPercentage / 100 rounded half away from
// zero to two places.
func (t MembershipType) TotalPrice() decimal.Decimal {
	return RoundMoney(t.Price.Add(t.Price.Mul(t.TaxPercentage).Div(hundred)))
}

// Duration is the contract length.
func (t MembershipType) Duration() time.Duration {
	return time.Duration(t.DurationDays) * Day
}

// DefaultMembershipTypes is the catalogue installed into an empty store.
func DefaultMembershipTypes() []MembershipType {
	five := decimal.NewFromInt(5)
	plan := func(name, desc string, days int, price string, freeze, guests int) MembershipType {
		return MembershipType{
			Name:           name,
			Description:    desc,
			DurationDays:   days,
			Price:          decimal.RequireFromString(price),
			TaxPercentage:  five,
			MaxFreezeDays:  freeze,
			MaxGuestVisits: guests,
			IsActive:       true,
		}
	}
	return []MembershipType{
		plan("Daily Pass", "Single day access", 1, "10.00", 0, 0),
		plan("Monthly", "30 days unlimited access", 30, "50.00", 3, 1),
		plan("Quarterly", "90 days unlimited access", 90, "135.00", 7, 3),
		plan("Half-Yearly", "180 days unlimited access", 180, "250.00", 14, 5),
		plan("Annual", "365 days unlimited access", 365, "450.00", 30, 10),
	}
}
