package services

import (
	"context"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentRequest records a payment that is not an enrolment.
type PaymentRequest struct {
	MemberID      uuid.UUID
	Amount        decimal.Decimal
	TaxAmount     decimal.Decimal
	DueDate       time.Time
	PaymentMethod models.PaymentMethod
	PaymentType   models.PaymentType
	Status        models.PaymentStatus
	TransactionID string
	Notes         string
}

// paymentTransitions lists the statuses each status may move to.
var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentPending: {models.PaymentPaid, models.PaymentFailed},
	models.PaymentPaid:    {models.PaymentRefunded},
}

type PaymentService struct {
	members  repository.MemberRepository
	payments repository.PaymentRepository
	receipts allocator
	logger   *logrus.Logger
	Clock    Clock
}

func NewPaymentService(store *repository.Store, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		members:  store.Members,
		payments: store.Payments,
		receipts: allocator{sequences: store.Sequences},
		logger:   logger,
		Clock:    SystemClock,
	}
}

func (s *PaymentService) Record(ctx context.Context, actor Actor, req PaymentRequest) (*models.Payment, error) {
	member, err := s.members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, invalid("memberId", "exists", "member %s does not exist", req.MemberID)
	}
	if req.Amount.IsNegative() {
		return nil, invalid("amount", "gte", "amount cannot be negative")
	}
	if req.TaxAmount.IsNegative() {
		return nil, invalid("taxAmount", "gte", "tax amount cannot be negative")
	}

	now := s.Clock()
	payment := &models.Payment{
		ID:                 uuid.New(),
		MemberID:           member.ID,
		Amount:             models.RoundMoney(req.Amount),
		TaxAmount:          models.RoundMoney(req.TaxAmount),
		PaymentDate:        now,
		DueDate:            req.DueDate,
		PaymentMethod:      req.PaymentMethod,
		TransactionID:      req.TransactionID,
		PaymentType:        req.PaymentType,
		Status:             req.Status,
		Notes:              req.Notes,
		ProcessedByStaffID: actor.StaffID,
		CreatedAt:          now,
	}
	if payment.DueDate.IsZero() {
		payment.DueDate = now
	}
	if payment.PaymentType == "" {
		payment.PaymentType = models.PaymentTypeOther
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPaid
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
		return s.payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": member.ID,
		"receipt":   payment.ReceiptNumber,
		"total":     payment.TotalAmount.StringFixed(models.MoneyPlaces),
		"by":        actor.Username,
	}).Info("Payment recorded")
	return payment, nil
}

// UpdateStatus moves a payment along Pending -> Paid|Failed and
// Paid -> Refunded.
func (s *PaymentService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrNotFound
	}
	if payment.Status == status {
		return payment, nil
	}
	if !canTransition(payment.Status, status) {
		return nil, invalid("status", "transition", "payment cannot move from %s to %s", payment.Status, status)
	}

	now := s.Clock()
	updated, err := s.payments.UpdateStatus(ctx, id, status, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	payment.Status = status
	payment.UpdatedAt = &now

	s.logger.WithFields(logrus.Fields{
		"payment_id": id,
		"status":     status,
		"by":         actor.Username,
	}).Info("Payment status changed")
	return payment, nil
}

func canTransition(from, to models.PaymentStatus) bool {
	for _, allowed := range paymentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *PaymentService) GetByReceiptNumber(ctx context.Context, receipt string) (*models.Payment, error) {
	return s.payments.GetByReceiptNumber(ctx, receipt)
}

func (s *PaymentService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.Payment, error) {
	return s.payments.ListByMember(ctx, memberID)
}

// Overdue returns pending payments past their due date, oldest due first.
func (s *PaymentService) Overdue(ctx context.Context) ([]models.Payment, error) {
	pending, err := s.payments.ListByStatus(ctx, models.PaymentPending)
	if err != nil {
		return nil, err
	}
	now := s.Clock()
	overdue := make([]models.Payment, 0, len(pending))
	for _, p := range pending {
		if p.IsOverdue(now) {
			overdue = append(overdue, p)
		}
	}
	return overdue, nil
}
