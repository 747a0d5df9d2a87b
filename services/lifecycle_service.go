package services

import (
	"context"
	"math"
	"sort"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"
)

// LifecycleService classifies memberships as of a point in time without
// writing derived state back to the store.
type LifecycleService struct {
	memberships repository.MembershipRepository
	policy      models.ExpiryPolicy
}

// NewLifecycleService uses EndDateExpiry when policy is nil.
func NewLifecycleService(memberships repository.MembershipRepository, policy models.ExpiryPolicy) *LifecycleService {
	if policy == nil {
		policy = models.EndDateExpiry{}
	}
	return &LifecycleService{memberships: memberships, policy: policy}
}

// maxWindowDays is the widest window a time.Duration can hold. No stored
// membership can end further out than that.
const maxWindowDays = int(math.MaxInt64 / int64(models.Day))

// MembershipView is a stored membership together with its state at a point
// in time.
type MembershipView struct {
	models.MemberMembership
	EffectiveStatus  models.MembershipStatus `json:"effectiveStatus"`
	EffectiveEndDate time.Time               `json:"effectiveEndDate"`
	DaysUntilExpiry  int                     `json:"daysUntilExpiry"`
	ExpiringSoon     bool                    `json:"expiringSoon"`
}

// EffectiveEndDate is the instant m stops granting access.
func (s *LifecycleService) EffectiveEndDate(m models.MemberMembership) time.Time {
	return s.policy.EffectiveEndDate(m)
}

// Classify returns the state of m at now. A recorded cancellation or expiry
// wins over anything derived from the clock.
func (s *LifecycleService) Classify(m models.MemberMembership, now time.Time) models.MembershipStatus {
	switch m.Status {
	case models.MembershipCancelled, models.MembershipExpired:
		return m.Status
	}
	if now.After(s.EffectiveEndDate(m)) {
		return models.MembershipExpired
	}
	if m.FrozenAt(now) {
		return models.MembershipFrozen
	}
	return m.Status
}

// View classifies m at now.
func (s *LifecycleService) View(m models.MemberMembership, now time.Time) MembershipView {
	end := s.EffectiveEndDate(m)
	status := s.Classify(m, now)
	days := int(end.Sub(now) / models.Day)
	return MembershipView{
		MemberMembership: m,
		EffectiveStatus:  status,
		EffectiveEndDate: end,
		DaysUntilExpiry:  days,
		ExpiringSoon:     status == models.MembershipActive && !end.Before(now) && days <= models.ExpiringSoonDays,
	}
}

func (s *LifecycleService) Views(ms []models.MemberMembership, now time.Time) []MembershipView {
	out := make([]MembershipView, len(ms))
	for i, m := range ms {
		out[i] = s.View(m, now)
	}
	return out
}

// ActiveMemberships returns memberships stored as Active whose effective end
// is not before now, soonest-ending first.
func (s *LifecycleService) ActiveMemberships(ctx context.Context, now time.Time) ([]models.MemberMembership, error) {
	return s.findActive(ctx, now, nil)
}

// ExpiringWithin returns Active memberships ending in [now, now+days],
// soonest-ending first. Negative days behave as zero.
func (s *LifecycleService) ExpiringWithin(ctx context.Context, now time.Time, days int) ([]models.MemberMembership, error) {
	if days < 0 {
		days = 0
	}
	if days >= maxWindowDays {
		return s.findActive(ctx, now, nil)
	}
	until := now.AddDate(0, 0, days)
	return s.findActive(ctx, now, &until)
}

func (s *LifecycleService) findActive(ctx context.Context, now time.Time, until *time.Time) ([]models.MemberMembership, error) {
	// The stored EndDate lags the effective end by at most MaxExtension.
	from := now.Add(-s.policy.MaxExtension())
	filter := repository.MembershipFilter{
		Statuses: []models.MembershipStatus{models.MembershipActive},
		EndFrom:  &from,
		EndTo:    until,
	}
	candidates, err := s.memberships.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]models.MemberMembership, 0, len(candidates))
	for _, m := range candidates {
		end := s.EffectiveEndDate(m)
		if end.Before(now) {
			continue
		}
		if until != nil && end.After(*until) {
			continue
		}
		result = append(result, m)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return s.EffectiveEndDate(result[i]).Before(s.EffectiveEndDate(result[j]))
	})
	return result, nil
}
