package repository

import (
	"context"
	"errors"
	"time"

	"gympro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDuplicate is returned when a write collides with a unique column
// (membership number, receipt number, username, ...).
var ErrDuplicate = errors.New("duplicate key")

// Lookups by id or unique key return (nil, nil) when nothing matches.

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, member *models.Member) error
	// Delete removes the member and everything it owns. It reports whether
	// the member existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	GetByMembershipNumber(ctx context.Context, number string) (*models.Member, error)
	// List returns every member, most recently created first.
	List(ctx context.Context) ([]models.Member, error)
	// Search matches term case-insensitively as a substring of first name,
	// last name, phone, email or membership number. Same order as List.
	Search(ctx context.Context, term string) ([]models.Member, error)
	// Count counts members in any of statuses, or all members when none given.
	Count(ctx context.Context, statuses ...models.MemberStatus) (int64, error)
}

// MembershipTypeRepository defines the interface for membership plan operations
type MembershipTypeRepository interface {
	Create(ctx context.Context, mt *models.MembershipType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MembershipType, error)
	List(ctx context.Context, activeOnly bool) ([]models.MembershipType, error)
	Count(ctx context.Context) (int64, error)
}

// MembershipFilter narrows MembershipRepository.Find. Zero values do not filter.
type MembershipFilter struct {
	Statuses []models.MembershipStatus
	EndFrom  *time.Time // inclusive
	EndTo    *time.Time // inclusive
}

// FreezeCheck validates a new freeze against the locked membership and
// returns the row to insert.
type FreezeCheck func(m *models.MemberMembership) (*models.MembershipFreeze, error)

// MembershipRepository defines the interface for member contract operations.
// Returned memberships carry their Member, MembershipType and Freezes.
type MembershipRepository interface {
	// CreateWithPayment stores the payment and the membership it funds in one
	// transaction and links membership.PaymentID.
	CreateWithPayment(ctx context.Context, membership *models.MemberMembership, payment *models.Payment) error
	Update(ctx context.Context, membership *models.MemberMembership) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MemberMembership, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.MemberMembership, error)
	// Find returns matching memberships ordered by EndDate ascending.
	Find(ctx context.Context, filter MembershipFilter) ([]models.MemberMembership, error)
	// AddFreeze locks the membership, hands it to check and stores the freeze
	// check returns, all in one transaction. check receives nil for an
	// unknown id; an error from check is returned unchanged.
	AddFreeze(ctx context.Context, membershipID uuid.UUID, check FreezeCheck) (*models.MembershipFreeze, error)
	GetFreeze(ctx context.Context, id uuid.UUID) (*models.MembershipFreeze, error)
	DeleteFreeze(ctx context.Context, id uuid.UUID) (bool, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByReceiptNumber(ctx context.Context, receipt string) (*models.Payment, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.Payment, error)
	// ListByStatus orders by due date ascending.
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, at time.Time) (bool, error)
	// SumTotal adds TotalAmount for payments in status with PaymentDate in [from, to).
	SumTotal(ctx context.Context, status models.PaymentStatus, from, to time.Time) (decimal.Decimal, error)
}

// DailyCount is the number of check-ins on one UTC calendar day.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// AttendanceRepository defines the interface for check-in operations
type AttendanceRepository interface {
	Create(ctx context.Context, log *models.AttendanceLog) error
	Update(ctx context.Context, log *models.AttendanceLog) error
	// GetOpenByMember returns the visit without a check-out, if any.
	GetOpenByMember(ctx context.Context, memberID uuid.UUID) (*models.AttendanceLog, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.AttendanceLog, error)
	// CountBetween counts check-ins in [from, to).
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	// CountByDay buckets check-ins in [from, to) by UTC date. Days without
	// check-ins are absent; results are in ascending date order.
	CountByDay(ctx context.Context, from, to time.Time) ([]DailyCount, error)
}

// UserRepository defines the interface for login credential operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// StaffRepository defines the interface for staff record operations
type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)
}

// ReminderLogRepository defines the interface for sent reminder bookkeeping
type ReminderLogRepository interface {
	Create(ctx context.Context, log *models.ReminderLog) error
	ExistsSince(ctx context.Context, membershipID uuid.UUID, since time.Time) (bool, error)
}

// SequenceRepository hands out values from named counters. Next is atomic:
// concurrent callers never observe the same value for one name.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Store bundles every repository over one backing store.
type Store struct {
	Members         MemberRepository
	MembershipTypes MembershipTypeRepository
	Memberships     MembershipRepository
	Payments        PaymentRepository
	Attendance      AttendanceRepository
	Users           UserRepository
	Staff           StaffRepository
	Reminders       ReminderLogRepository
	Sequences       SequenceRepository
}
