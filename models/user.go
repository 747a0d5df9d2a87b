package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a login credential. The password is only ever held as a hash.
type User struct {
	ID      uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	StaffID *uuid.UUID `gorm:"type:uuid;index" json:"staffId,omitempty"`
	Staff   *Staff     `gorm:"foreignKey:StaffID" json:"staff,omitempty"`

	Username     string `gorm:"uniqueIndex;not null;size:50" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`

	Role        string `gorm:"type:varchar(20);not null" json:"role"`
	Permissions string `json:"permissions,omitempty"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IsActive  bool       `gorm:"not null" json:"isActive"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

// Initialize UUID before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
