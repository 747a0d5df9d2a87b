package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentCard         PaymentMethod = "Card"
	PaymentUPI          PaymentMethod = "UPI"
	PaymentBankTransfer PaymentMethod = "BankTransfer"
	PaymentOnline       PaymentMethod = "Online"
)

type PaymentType string

const (
	PaymentTypeMembership PaymentType = "Membership"
	PaymentTypeOther      PaymentType = "Other"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

type Payment struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MemberID uuid.UUID `gorm:"type:uuid;index;not null" json:"memberId"`
	Member   *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`

	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"taxAmount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"totalAmount"`

	PaymentDate time.Time `gorm:"not null;index" json:"paymentDate"`
	DueDate     time.Time `gorm:"not null" json:"dueDate"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"paymentMethod" validate:"required,oneof=Cash Card UPI BankTransfer Online"`
	TransactionID string        `gorm:"size:100" json:"transactionId,omitempty"`
	PaymentType   PaymentType   `gorm:"type:varchar(20);not null" json:"paymentType" validate:"required,oneof=Membership Other"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status" validate:"required,oneof=Pending Paid Failed Refunded"`

	ReceiptNumber      string     `gorm:"uniqueIndex;not null;size:50" json:"receiptNumber"`
	Notes              string     `gorm:"size:500" json:"notes,omitempty"`
	ProcessedByStaffID *uuid.UUID `gorm:"type:uuid;index" json:"processedByStaffId,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.ApplyTotal()
	return
}

// ApplyTotal keeps TotalAmount equal to Amount + TaxAmount.
func (p *Payment) ApplyTotal() {
	p.TotalAmount = p.Amount.Add(p.TaxAmount)
}

func (p Payment) IsOverdue(now time.Time) bool {
	return p.Status == PaymentPending && now.After(p.DueDate)
}
