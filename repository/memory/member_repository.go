package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
)

type memberRepository struct{ s *state }

func (r *memberRepository) Create(_ context.Context, member *models.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&member.ID)
	if _, ok := r.s.members[member.ID]; ok {
		return repository.ErrDuplicate
	}
	if r.s.numberTaken(member.MembershipNumber, uuid.Nil) {
		return repository.ErrDuplicate
	}
	r.s.members[member.ID] = row[models.Member]{value: detachMember(*member)}
	return nil
}

func (r *memberRepository) Update(_ context.Context, member *models.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.members[member.ID]
	if !ok {
		return nil
	}
	if r.s.numberTaken(member.MembershipNumber, member.ID) {
		return repository.ErrDuplicate
	}
	updated := detachMember(*member)
	updated.CreatedAt = existing.value.CreatedAt
	r.s.members[member.ID] = row[models.Member]{value: updated}
	return nil
}

func (s *state) numberTaken(number string, except uuid.UUID) bool {
	for id, m := range s.members {
		if id != except && m.value.MembershipNumber == number {
			return true
		}
	}
	return false
}

func (r *memberRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.members[id]; !ok {
		return false, nil
	}
	for mid, m := range r.s.memberships {
		if m.value.MemberID != id {
			continue
		}
		for fid, f := range r.s.freezes {
			if f.value.MemberMembershipID == mid {
				delete(r.s.freezes, fid)
			}
		}
		delete(r.s.memberships, mid)
	}
	for pid, p := range r.s.payments {
		if p.value.MemberID == id {
			delete(r.s.payments, pid)
		}
	}
	for aid, a := range r.s.attendance {
		if a.value.MemberID == id {
			delete(r.s.attendance, aid)
		}
	}
	for lid, l := range r.s.reminders {
		if l.value.MemberID == id {
			delete(r.s.reminders, lid)
		}
	}
	for mid, m := range r.s.members {
		if m.value.ReferredByID != nil && *m.value.ReferredByID == id {
			m.value.ReferredByID = nil
			r.s.members[mid] = m
		}
	}
	delete(r.s.members, id)
	return true, nil
}

func (r *memberRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.members[id]
	if !ok {
		return nil, nil
	}
	out := m.value
	return &out, nil
}

func (r *memberRepository) GetByMembershipNumber(_ context.Context, number string) (*models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.members {
		if m.value.MembershipNumber == number {
			out := m.value
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memberRepository) List(ctx context.Context) ([]models.Member, error) {
	return r.filter(func(models.Member) bool { return true }), nil
}

func (r *memberRepository) Search(ctx context.Context, term string) ([]models.Member, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return r.List(ctx)
	}
	return r.filter(func(m models.Member) bool {
		for _, field := range []string{m.FirstName, m.LastName, m.Phone, m.Email, m.MembershipNumber} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}), nil
}

// filter returns matches newest first; ties go to the higher id, as
// postgres orders uuids bytewise.
func (r *memberRepository) filter(keep func(models.Member) bool) []models.Member {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]row[models.Member], 0, len(r.s.members))
	for _, m := range r.s.members {
		if keep(m.value) {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].value.CreatedAt.Equal(rows[j].value.CreatedAt) {
			return rows[i].value.CreatedAt.After(rows[j].value.CreatedAt)
		}
		return bytes.Compare(rows[i].value.ID[:], rows[j].value.ID[:]) > 0
	})

	out := make([]models.Member, len(rows))
	for i, m := range rows {
		out[i] = m.value
	}
	return out
}

func (r *memberRepository) Count(_ context.Context, statuses ...models.MemberStatus) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, m := range r.s.members {
		if len(statuses) == 0 || containsStatus(statuses, m.value.Status) {
			n++
		}
	}
	return n, nil
}

func containsStatus[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// detachMember drops association slices so stored rows never alias caller memory.
func detachMember(m models.Member) models.Member {
	m.ReferredBy = nil
	m.Memberships = nil
	m.Payments = nil
	m.Attendance = nil
	return m
}
