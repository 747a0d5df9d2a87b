package memory

import (
	"bytes"
	"context"
	"sort"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
)

type membershipTypeRepository struct{ s *state }

func (r *membershipTypeRepository) Create(_ context.Context, mt *models.MembershipType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&mt.ID)
	for _, t := range r.s.types {
		if t.value.Name == mt.Name {
			return repository.ErrDuplicate
		}
	}
	r.s.types[mt.ID] = row[models.MembershipType]{value: *mt}
	return nil
}

func (r *membershipTypeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.MembershipType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.types[id]
	if !ok {
		return nil, nil
	}
	out := t.value
	return &out, nil
}

func (r *membershipTypeRepository) List(_ context.Context, activeOnly bool) ([]models.MembershipType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.MembershipType, 0, len(r.s.types))
	for _, t := range r.s.types {
		if activeOnly && !t.value.IsActive {
			continue
		}
		out = append(out, t.value)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DurationDays != out[j].DurationDays {
			return out[i].DurationDays < out[j].DurationDays
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *membershipTypeRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.types)), nil
}

type membershipRepository struct{ s *state }

func (r *membershipRepository) CreateWithPayment(_ context.Context, membership *models.MemberMembership, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.receiptTaken(payment.ReceiptNumber) {
		return repository.ErrDuplicate
	}
	ensureID(&payment.ID)
	ensureID(&membership.ID)
	payment.ApplyTotal()
	membership.PaymentID = &payment.ID

	p := *payment
	p.Member = nil
	r.s.payments[p.ID] = row[models.Payment]{value: p}

	m := *membership
	m.Member, m.MembershipType, m.Freezes = nil, nil, nil
	r.s.memberships[m.ID] = row[models.MemberMembership]{value: m}
	return nil
}

func (r *membershipRepository) Update(_ context.Context, membership *models.MemberMembership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.memberships[membership.ID]
	if !ok {
		return nil
	}
	existing.value.Status = membership.Status
	existing.value.AutoRenew = membership.AutoRenew
	existing.value.UpdatedAt = membership.UpdatedAt
	r.s.memberships[membership.ID] = existing
	return nil
}

// hydrate must be called with mu held.
func (s *state) hydrate(m models.MemberMembership) models.MemberMembership {
	if member, ok := s.members[m.MemberID]; ok {
		v := member.value
		m.Member = &v
	}
	if t, ok := s.types[m.MembershipTypeID]; ok {
		v := t.value
		m.MembershipType = &v
	}
	m.Freezes = nil
	for _, f := range s.freezes {
		if f.value.MemberMembershipID == m.ID {
			m.Freezes = append(m.Freezes, f.value)
		}
	}
	sort.Slice(m.Freezes, func(i, j int) bool {
		return m.Freezes[i].StartDate.Before(m.Freezes[j].StartDate)
	})
	return m
}

func (r *membershipRepository) GetByID(_ context.Context, id uuid.UUID) (*models.MemberMembership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.memberships[id]
	if !ok {
		return nil, nil
	}
	out := r.s.hydrate(m.value)
	return &out, nil
}

func (r *membershipRepository) ListByMember(_ context.Context, memberID uuid.UUID) ([]models.MemberMembership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.MemberMembership
	for _, m := range r.s.memberships {
		if m.value.MemberID == memberID {
			out = append(out, r.s.hydrate(m.value))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *membershipRepository) Find(_ context.Context, filter repository.MembershipFilter) ([]models.MemberMembership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []row[models.MemberMembership]
	for _, m := range r.s.memberships {
		v := m.value
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, v.Status) {
			continue
		}
		if filter.EndFrom != nil && v.EndDate.Before(*filter.EndFrom) {
			continue
		}
		if filter.EndTo != nil && v.EndDate.After(*filter.EndTo) {
			continue
		}
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].value.EndDate.Equal(rows[j].value.EndDate) {
			return rows[i].value.EndDate.Before(rows[j].value.EndDate)
		}
		return bytes.Compare(rows[i].value.ID[:], rows[j].value.ID[:]) < 0
	})

	out := make([]models.MemberMembership, len(rows))
	for i, m := range rows {
		out[i] = r.s.hydrate(m.value)
	}
	return out, nil
}

func (r *membershipRepository) AddFreeze(_ context.Context, membershipID uuid.UUID, check repository.FreezeCheck) (*models.MembershipFreeze, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var current *models.MemberMembership
	if m, ok := r.s.memberships[membershipID]; ok {
		v := r.s.hydrate(m.value)
		current = &v
	}
	freeze, err := check(current)
	if err != nil {
		return nil, err
	}
	ensureID(&freeze.ID)
	r.s.freezes[freeze.ID] = row[models.MembershipFreeze]{value: *freeze}
	return freeze, nil
}

func (r *membershipRepository) GetFreeze(_ context.Context, id uuid.UUID) (*models.MembershipFreeze, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.freezes[id]
	if !ok {
		return nil, nil
	}
	out := f.value
	return &out, nil
}

func (r *membershipRepository) DeleteFreeze(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.freezes[id]; !ok {
		return false, nil
	}
	delete(r.s.freezes, id)
	return true, nil
}
