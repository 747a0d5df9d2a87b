package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StaffRole string

const (
	RoleAdmin        StaffRole = "Admin"
	RoleManager      StaffRole = "Manager"
	RoleReceptionist StaffRole = "Receptionist"
	RoleTrainer      StaffRole = "Trainer"
)

type Staff struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EmployeeCode string    `gorm:"uniqueIndex;not null;size:20" json:"employeeCode"`
	FirstName    string    `gorm:"not null;size:100" json:"firstName"`
	LastName     string    `gorm:"not null;size:100" json:"lastName"`
	Phone        string    `gorm:"size:20" json:"phone,omitempty"`
	Email        string    `gorm:"size:100" json:"email,omitempty"`

	Role     StaffRole       `gorm:"type:varchar(20);not null" json:"role"`
	JoinDate time.Time       `json:"joinDate"`
	ExitDate *time.Time      `json:"exitDate,omitempty"`
	Salary   decimal.Decimal `gorm:"type:decimal(18,2)" json:"-"`
	IsActive bool            `gorm:"not null" json:"isActive"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (s *Staff) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (s Staff) FullName() string {
	return s.FirstName + " " + s.LastName
}
