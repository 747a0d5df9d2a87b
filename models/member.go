package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberStatus string

const (
	MemberActive    MemberStatus = "Active"
	MemberInactive  MemberStatus = "Inactive"
	MemberSuspended MemberStatus = "Suspended"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type Member struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MembershipNumber string    `gorm:"uniqueIndex;not null;size:20" json:"membershipNumber"`

	FirstName   string     `gorm:"not null;size:100" json:"firstName" validate:"required,max=100"`
	LastName    string     `gorm:"not null;size:100" json:"lastName" validate:"required,max=100"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      Gender     `gorm:"type:varchar(10)" json:"gender,omitempty" validate:"omitempty,oneof=Male Female Other"`

	Phone                 string `gorm:"not null;size:20;index" json:"phone" validate:"required,phone"`
	Email                 string `gorm:"size:100" json:"email,omitempty" validate:"omitempty,email,max=100"`
	AlternatePhone        string `gorm:"size:20" json:"alternatePhone,omitempty" validate:"omitempty,phone"`
	EmergencyContactName  string `gorm:"size:100" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string `gorm:"size:20" json:"emergencyContactPhone,omitempty" validate:"omitempty,phone"`

	Address string `json:"address,omitempty"`
	City    string `gorm:"size:50" json:"city,omitempty"`
	State   string `gorm:"size:50" json:"state,omitempty"`
	ZipCode string `gorm:"size:10" json:"zipCode,omitempty"`

	PhotoPath         string `json:"photoPath,omitempty"`
	MedicalConditions string `gorm:"type:text" json:"medicalConditions,omitempty"`
	FitnessGoals      string `gorm:"type:text" json:"fitnessGoals,omitempty"`
	BloodGroup        string `gorm:"size:5" json:"bloodGroup,omitempty"`

	EnrollmentDate time.Time    `gorm:"not null" json:"enrollmentDate"`
	ReferredByID   *uuid.UUID   `gorm:"type:uuid;index" json:"referredById,omitempty"`
	Status         MemberStatus `gorm:"type:varchar(20);not null;index" json:"status" validate:"required,oneof=Active Inactive Suspended"`

	ReferredBy  *Member            `gorm:"foreignKey:ReferredByID;constraint:OnDelete:SET NULL" json:"-"`
	Memberships []MemberMembership `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
	Payments    []Payment          `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
	Attendance  []AttendanceLog    `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}
