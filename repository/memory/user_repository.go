package memory

import (
	"context"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
)

type userRepository struct{ s *state }

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.value.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	ensureID(&user.ID)
	u := *user
	u.Staff = nil
	r.s.users[u.ID] = row[models.User]{value: u}
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return r.s.withStaff(u.value), nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.value.Username == username {
			return r.s.withStaff(u.value), nil
		}
	}
	return nil, nil
}

func (s *state) withStaff(u models.User) *models.User {
	if u.StaffID != nil {
		if st, ok := s.staff[*u.StaffID]; ok {
			v := st.value
			u.Staff = &v
		}
	}
	return &u
}

func (r *userRepository) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		u.value.LastLogin = &at
		r.s.users[id] = u
	}
	return nil
}

func (r *userRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

type staffRepository struct{ s *state }

func (r *staffRepository) Create(_ context.Context, staff *models.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, st := range r.s.staff {
		if st.value.EmployeeCode == staff.EmployeeCode {
			return repository.ErrDuplicate
		}
	}
	ensureID(&staff.ID)
	r.s.staff[staff.ID] = row[models.Staff]{value: *staff}
	return nil
}

func (r *staffRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.staff[id]
	if !ok {
		return nil, nil
	}
	out := st.value
	return &out, nil
}

type reminderLogRepository struct{ s *state }

func (r *reminderLogRepository) Create(_ context.Context, log *models.ReminderLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&log.ID)
	r.s.reminders[log.ID] = row[models.ReminderLog]{value: *log}
	return nil
}

func (r *reminderLogRepository) ExistsSince(_ context.Context, membershipID uuid.UUID, since time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, l := range r.s.reminders {
		v := l.value
		if v.MembershipID == membershipID && v.Status == models.ReminderSent && !v.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}
