package models

import "time"

// ExpiryPolicy decides when a membership stops being usable. Every
// expiry-sensitive query goes through one of these so the freeze rule can
// change in a single place.
type ExpiryPolicy interface {
	EffectiveEndDate(m MemberMembership) time.Time
	// MaxExtension bounds how far EffectiveEndDate may sit past EndDate.
	MaxExtension() time.Duration
}

// EndDateExpiry ignores freezes: a membership ends at its EndDate.
type EndDateExpiry struct{}

func (EndDateExpiry) EffectiveEndDate(m MemberMembership) time.Time { return m.EndDate }

func (EndDateExpiry) MaxExtension() time.Duration { return 0 }

// MaxFreezeAllowanceDays caps MembershipType.MaxFreezeDays, and with it the
// extension FreezeExtendedExpiry can grant.
const MaxFreezeAllowanceDays = 365

// FreezeExtendedExpiry pushes EndDate out by the charged frozen days.
type FreezeExtendedExpiry struct {
	Limit time.Duration
}

func (p FreezeExtendedExpiry) EffectiveEndDate(m MemberMembership) time.Time {
	ext := time.Duration(m.ChargedFrozenDays()) * Day
	if ext > p.Limit {
		ext = p.Limit
	}
	return m.EndDate.Add(ext)
}

func (p FreezeExtendedExpiry) MaxExtension() time.Duration { return p.Limit }
