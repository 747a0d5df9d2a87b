package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var hundred = decimal.NewFromInt(100)

// EnrollRequest buys membershipTypeID for a member starting at StartDate.
type EnrollRequest struct {
	MemberID         uuid.UUID
	MembershipTypeID uuid.UUID
	StartDate        time.Time
	PaymentMethod    models.PaymentMethod
	PaymentStatus    models.PaymentStatus
	TransactionID    string
	AutoRenew        bool
	Notes            string
}

// MembershipService manages membership plans and member contracts with
// their freezes.
type MembershipService struct {
	members     repository.MemberRepository
	types       repository.MembershipTypeRepository
	memberships repository.MembershipRepository
	receipts    allocator
	logger      *logrus.Logger
	Clock       Clock
}

func NewMembershipService(store *repository.Store, logger *logrus.Logger) *MembershipService {
	return &MembershipService{
		members:     store.Members,
		types:       store.MembershipTypes,
		memberships: store.Memberships,
		receipts:    allocator{sequences: store.Sequences},
		logger:      logger,
		Clock:       SystemClock,
	}
}

// ListTypes returns plans ordered by duration.
func (s *MembershipService) ListTypes(ctx context.Context, activeOnly bool) ([]models.MembershipType, error) {
	return s.types.List(ctx, activeOnly)
}

func (s *MembershipService) GetType(ctx context.Context, id uuid.UUID) (*models.MembershipType, error) {
	return s.types.GetByID(ctx, id)
}

func (s *MembershipService) CreateType(ctx context.Context, mt *models.MembershipType) (*models.MembershipType, error) {
	mt.ID = uuid.New()
	mt.Name = strings.TrimSpace(mt.Name)
	mt.CreatedAt = s.Clock()
	mt.UpdatedAt = nil

	if err := validateStruct(mt); err != nil {
		return nil, err
	}
	if mt.Price.IsNegative() {
		return nil, invalid("price", "gte", "price cannot be negative")
	}
	if mt.TaxPercentage.IsNegative() || mt.TaxPercentage.GreaterThan(hundred) {
		return nil, invalid("taxPercentage", "range", "tax percentage must be between 0 and 100")
	}
	mt.Price = models.RoundMoney(mt.Price)

	if err := s.types.Create(ctx, mt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("name", "unique", "membership type %q already exists", mt.Name)
		}
		return nil, err
	}
	return mt, nil
}

// SeedDefaultTypes installs the standard plans into an empty catalogue.
func (s *MembershipService) SeedDefaultTypes(ctx context.Context) error {
	count, err := s.types.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, mt := range models.DefaultMembershipTypes() {
		mt := mt
		if _, err := s.CreateType(ctx, &mt); err != nil {
			return fmt.Errorf("failed to seed membership type %s: %w", mt.Name, err)
		}
	}
	s.logger.Info("Seeded default membership types")
	return nil
}

// Get returns nil when no membership has id.
func (s *MembershipService) Get(ctx context.Context, id uuid.UUID) (*models.MemberMembership, error) {
	return s.memberships.GetByID(ctx, id)
}

// ListByMember returns the member's contracts, newest first.
func (s *MembershipService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.MemberMembership, error) {
	return s.memberships.ListByMember(ctx, memberID)
}

// Enroll records the payment for a plan and opens the membership it funds.
func (s *MembershipService) Enroll(ctx context.Context, actor Actor, req EnrollRequest) (*models.MemberMembership, error) {
	member, err := s.members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, invalid("memberId", "exists", "member %s does not exist", req.MemberID)
	}
	mt, err := s.types.GetByID(ctx, req.MembershipTypeID)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, invalid("membershipTypeId", "exists", "membership type %s does not exist", req.MembershipTypeID)
	}
	if !mt.IsActive {
		return nil, invalid("membershipTypeId", "active", "membership type %s is not offered", mt.Name)
	}

	now := s.Clock()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}
	status := req.PaymentStatus
	if status == "" {
		status = models.PaymentPaid
	}
	if status != models.PaymentPaid && status != models.PaymentPending {
		return nil, invalid("paymentStatus", "oneof", "a new enrolment payment must be Paid or Pending")
	}

	membership := &models.MemberMembership{
		ID:               uuid.New(),
		MemberID:         member.ID,
		MembershipTypeID: mt.ID,
		StartDate:        start,
		EndDate:          start.Add(mt.Duration()),
		Status:           models.MembershipActive,
		AutoRenew:        req.AutoRenew,
		CreatedAt:        now,
	}
	if !membership.EndDate.After(membership.StartDate) {
		return nil, invalid("endDate", "after_start", "membership must end after it starts")
	}

	payment := &models.Payment{
		ID:                 uuid.New(),
		MemberID:           member.ID,
		Amount:             models.RoundMoney(mt.Price),
		TaxAmount:          mt.TaxAmount(),
		PaymentDate:        now,
		DueDate:            start,
		PaymentMethod:      req.PaymentMethod,
		TransactionID:      req.TransactionID,
		PaymentType:        models.PaymentTypeMembership,
		Status:             status,
		Notes:              req.Notes,
		ProcessedByStaffID: actor.StaffID,
		CreatedAt:          now,
	}
	payment.ApplyTotal()
	if err := validateStruct(payment); err != nil {
		return nil, err
	}

	err = retryOnDuplicate(s.logger, "receipt_number", func() error {
		receipt, err := s.receipts.receiptNumber(ctx, now)
		if err != nil {
			return err
		}
		payment.ReceiptNumber = receipt
		return s.memberships.CreateWithPayment(ctx, membership, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"member_id":     member.ID,
		"membership_id": membership.ID,
		"type":          mt.Name,
		"receipt":       payment.ReceiptNumber,
		"by":            actor.Username,
	}).Info("Membership enrolled")

	return s.memberships.GetByID(ctx, membership.ID)
}

// Cancel records the terminal Cancelled status. Cancelling twice is a no-op.
func (s *MembershipService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.MemberMembership, error) {
	membership, err := s.memberships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrNotFound
	}
	if membership.Status == models.MembershipCancelled {
		return membership, nil
	}

	now := s.Clock()
	membership.Status = models.MembershipCancelled
	membership.UpdatedAt = &now
	if err := s.memberships.Update(ctx, membership); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"membership_id": id,
		"by":            actor.Username,
	}).Info("Membership cancelled")
	return membership, nil
}

// AddFreeze pauses the membership over [start, end). The freeze must lie
// inside the membership, must not overlap another freeze, and the total
// frozen days must stay within the plan's allowance. Partial days count as
// whole days.
func (s *MembershipService) AddFreeze(ctx context.Context, actor Actor, membershipID uuid.UUID, start, end time.Time, reason string) (*models.MembershipFreeze, error) {
	if !end.After(start) {
		return nil, invalid("endDate", "after_start", "freeze must end after it starts")
	}

	check := func(membership *models.MemberMembership) (*models.MembershipFreeze, error) {
		if membership == nil {
			return nil, ErrNotFound
		}
		if membership.Status == models.MembershipCancelled {
			return nil, invalid("membershipId", "not_cancelled", "a cancelled membership cannot be frozen")
		}
		if start.Before(membership.StartDate) || end.After(membership.EndDate) {
			return nil, invalid("startDate", "within_membership", "freeze must lie within %s and %s",
				membership.StartDate.Format(time.DateOnly), membership.EndDate.Format(time.DateOnly))
		}

		freeze := &models.MembershipFreeze{
			ID:                 uuid.New(),
			MemberMembershipID: membership.ID,
			StartDate:          start,
			EndDate:            end,
			Reason:             strings.TrimSpace(reason),
			CreatedByStaffID:   actor.StaffID,
			CreatedAt:          s.Clock(),
		}
		for _, existing := range membership.Freezes {
			if existing.Overlaps(*freeze) {
				return nil, invalid("startDate", "no_overlap", "freeze overlaps an existing freeze from %s",
					existing.StartDate.Format(time.DateOnly))
			}
		}

		allowance := 0
		if membership.MembershipType != nil {
			allowance = membership.MembershipType.MaxFreezeDays
		}
		total := membership.ChargedFrozenDays() + freeze.ChargedDays()
		if total > allowance {
			return nil, invalid("endDate", "max_freeze_days", "freezes would total %d days, plan allows %d", total, allowance)
		}
		return freeze, nil
	}

	freeze, err := s.memberships.AddFreeze(ctx, membershipID, check)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"membership_id": membershipID,
		"freeze_id":     freeze.ID,
		"days":          freeze.ChargedDays(),
		"by":            actor.Username,
	}).Info("Membership frozen")
	return freeze, nil
}

// RemoveFreeze deletes a freeze. Unknown ids are ignored.
func (s *MembershipService) RemoveFreeze(ctx context.Context, actor Actor, freezeID uuid.UUID) error {
	removed, err := s.memberships.DeleteFreeze(ctx, freezeID)
	if err != nil {
		return err
	}
	if removed {
		s.logger.WithFields(logrus.Fields{
			"freeze_id": freezeID,
			"by":        actor.Username,
		}).Info("Membership freeze removed")
	}
	return nil
}
