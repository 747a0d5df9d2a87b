package memory

import (
	"context"
	"sort"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type paymentRepository struct{ s *state }

func (s *state) receiptTaken(receipt string) bool {
	for _, p := range s.payments {
		if p.value.ReceiptNumber == receipt {
			return true
		}
	}
	return false
}

func (r *paymentRepository) Create(_ context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.receiptTaken(payment.ReceiptNumber) {
		return repository.ErrDuplicate
	}
	ensureID(&payment.ID)
	payment.ApplyTotal()
	p := *payment
	p.Member = nil
	r.s.payments[p.ID] = row[models.Payment]{value: p}
	return nil
}

func (r *paymentRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	out := p.value
	return &out, nil
}

func (r *paymentRepository) GetByReceiptNumber(_ context.Context, receipt string) (*models.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.payments {
		if p.value.ReceiptNumber == receipt {
			out := p.value
			return &out, nil
		}
	}
	return nil, nil
}

func (r *paymentRepository) ListByMember(_ context.Context, memberID uuid.UUID) ([]models.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Payment
	for _, p := range r.s.payments {
		if p.value.MemberID == memberID {
			out = append(out, p.value)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

func (r *paymentRepository) ListByStatus(_ context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Payment
	for _, p := range r.s.payments {
		if p.value.Status != status {
			continue
		}
		v := p.value
		if m, ok := r.s.members[v.MemberID]; ok {
			member := m.value
			v.Member = &member
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *paymentRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.PaymentStatus, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return false, nil
	}
	p.value.Status = status
	p.value.UpdatedAt = &at
	r.s.payments[id] = p
	return true, nil
}

func (r *paymentRepository) SumTotal(_ context.Context, status models.PaymentStatus, from, to time.Time) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := decimal.Zero
	for _, p := range r.s.payments {
		v := p.value
		if v.Status == status && !v.PaymentDate.Before(from) && v.PaymentDate.Before(to) {
			total = total.Add(v.TotalAmount)
		}
	}
	return total, nil
}
