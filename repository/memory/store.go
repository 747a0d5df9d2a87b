// Package memory is a mutex-guarded in-memory implementation of the
// repositories. It keeps the same uniqueness, ordering and cascade rules as
// the postgres store and backs the test suites and DB_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
)

type row[T any] struct {
	value T
}

type state struct {
	mu sync.RWMutex

	members     map[uuid.UUID]row[models.Member]
	types       map[uuid.UUID]row[models.MembershipType]
	memberships map[uuid.UUID]row[models.MemberMembership]
	freezes     map[uuid.UUID]row[models.MembershipFreeze]
	payments    map[uuid.UUID]row[models.Payment]
	attendance  map[uuid.UUID]row[models.AttendanceLog]
	users       map[uuid.UUID]row[models.User]
	staff       map[uuid.UUID]row[models.Staff]
	reminders   map[uuid.UUID]row[models.ReminderLog]
	sequences   map[string]int64
}

// NewStore returns an empty store.
func NewStore() *repository.Store {
	s := &state{
		members:     map[uuid.UUID]row[models.Member]{},
		types:       map[uuid.UUID]row[models.MembershipType]{},
		memberships: map[uuid.UUID]row[models.MemberMembership]{},
		freezes:     map[uuid.UUID]row[models.MembershipFreeze]{},
		payments:    map[uuid.UUID]row[models.Payment]{},
		attendance:  map[uuid.UUID]row[models.AttendanceLog]{},
		users:       map[uuid.UUID]row[models.User]{},
		staff:       map[uuid.UUID]row[models.Staff]{},
		reminders:   map[uuid.UUID]row[models.ReminderLog]{},
		sequences:   map[string]int64{},
	}
	return &repository.Store{
		Members:         &memberRepository{s},
		MembershipTypes: &membershipTypeRepository{s},
		Memberships:     &membershipRepository{s},
		Payments:        &paymentRepository{s},
		Attendance:      &attendanceRepository{s},
		Users:           &userRepository{s},
		Staff:           &staffRepository{s},
		Reminders:       &reminderLogRepository{s},
		Sequences:       &sequenceRepository{s},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

type sequenceRepository struct{ s *state }

func (r *sequenceRepository) Next(_ context.Context, name string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sequences[name]++
	return r.s.sequences[name], nil
}
