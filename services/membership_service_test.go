package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gympro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultTypesRunsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.memberships.SeedDefaultTypes(ctx))
	types, err := env.memberships.ListTypes(ctx, true)
	require.NoError(t, err)
	require.Len(t, types, 5)
	assert.Equal(t, "Daily Pass", types[0].Name)
	assert.Equal(t, "Annual", types[4].Name)
}

func TestCreateTypeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		mt   models.MembershipType
		rule string
	}{
		{"zero duration", models.MembershipType{Name: "Broken", DurationDays: 0}, "gt"},
		{"negative price", models.MembershipType{Name: "Broken", DurationDays: 10, Price: decimal.NewFromInt(-1)}, "gte"},
		{"tax over 100", models.MembershipType{Name: "Broken", DurationDays: 10, TaxPercentage: decimal.NewFromInt(101)}, "range"},
		{"duplicate name", models.MembershipType{Name: "Monthly", DurationDays: 10}, "unique"},
		{"freeze allowance over cap", models.MembershipType{Name: "Broken", DurationDays: 10, MaxFreezeDays: models.MaxFreezeAllowanceDays + 1}, "lte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := tt.mt
			_, err := env.memberships.CreateType(ctx, &mt)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.rule, verr.Rule)
		})
	}
}

func TestEnrollCreatesMembershipAndPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	member := env.addMember(t, "Asha", "Rao")
	staffID := uuid.New()

	m, err := env.memberships.Enroll(ctx, Actor{Username: "desk", StaffID: &staffID}, EnrollRequest{
		MemberID:         member.ID,
		MembershipTypeID: env.planNamed(t, "Quarterly").ID,
		PaymentMethod:    models.PaymentUPI,
	})
	require.NoError(t, err)

	assert.Equal(t, refNow, m.StartDate)
	assert.Equal(t, refNow.Add(90*models.Day), m.EndDate)
	assert.Equal(t, models.MembershipActive, m.Status)
	require.NotNil(t, m.MembershipType)
	assert.Equal(t, "Quarterly", m.MembershipType.Name)
	require.NotNil(t, m.PaymentID)

	payment, err := env.payments.Get(ctx, *m.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, "REC20240315001", payment.ReceiptNumber)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("135.00")))
	assert.True(t, payment.TaxAmount.Equal(decimal.RequireFromString("6.75")))
	assert.True(t, payment.TotalAmount.Equal(decimal.RequireFromString("141.75")))
	assert.Equal(t, models.PaymentTypeMembership, payment.PaymentType)
	assert.Equal(t, models.PaymentPaid, payment.Status)
	assert.Equal(t, &staffID, payment.ProcessedByStaffID)

	second := env.enroll(t, member, "Monthly", refNow.Add(90*models.Day))
	p2, err := env.payments.Get(ctx, *second.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, "REC20240315002", p2.ReceiptNumber)
}

func TestEnrollRejectsUnknownReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	member := env.addMember(t, "Asha", "Rao")

	_, err := env.memberships.Enroll(ctx, SystemActor, EnrollRequest{
		MemberID:         uuid.New(),
		MembershipTypeID: env.planNamed(t, "Monthly").ID,
		PaymentMethod:    models.PaymentCash,
	})
	assert.True(t, IsValidationError(err))

	_, err = env.memberships.Enroll(ctx, SystemActor, EnrollRequest{
		MemberID:         member.ID,
		MembershipTypeID: uuid.New(),
		PaymentMethod:    models.PaymentCash,
	})
	assert.True(t, IsValidationError(err))

	_, err = env.memberships.Enroll(ctx, SystemActor, EnrollRequest{
		MemberID:         member.ID,
		MembershipTypeID: env.planNamed(t, "Monthly").ID,
		PaymentMethod:    "Cheque",
	})
	assert.True(t, IsValidationError(err))

	memberships, err := env.memberships.ListByMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

func TestCancelIsTerminalAndIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.enroll(t, env.addMember(t, "Asha", "Rao"), "Monthly", refNow)

	cancelled, err := env.memberships.Cancel(ctx, SystemActor, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipCancelled, cancelled.Status)

	again, err := env.memberships.Cancel(ctx, SystemActor, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipCancelled, again.Status)

	_, err = env.memberships.Cancel(ctx, SystemActor, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := env.lifecycle.ActiveMemberships(ctx, refNow)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAddFreezeRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	// Quarterly allows 7 freeze days.
	m := env.enroll(t, env.addMember(t, "Asha", "Rao"), "Quarterly", refNow)
	day := func(n int) time.Time { return refNow.Add(time.Duration(n) * models.Day) }

	_, err := env.memberships.AddFreeze(ctx, SystemActor, m.ID, day(10), day(14), "travel")
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end time.Time
		rule       string
	}{
		{"end before start", day(20), day(19), "after_start"},
		{"empty interval", day(20), day(20), "after_start"},
		{"starts before membership", day(-1), day(1), "within_membership"},
		{"ends after membership", day(88), day(91), "within_membership"},
		{"overlaps existing", day(13), day(15), "no_overlap"},
		{"exceeds allowance", day(30), day(34), "max_freeze_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.memberships.AddFreeze(ctx, SystemActor, m.ID, tt.start, tt.end, "")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.rule, verr.Rule)
		})
	}

	// Touching intervals do not overlap, and 4+3 days fits the allowance.
	_, err = env.memberships.AddFreeze(ctx, SystemActor, m.ID, day(14), day(17), "")
	require.NoError(t, err)

	stored, err := env.memberships.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Freezes, 2)
	assert.Equal(t, 7, stored.TotalFrozenDays())
	assert.Equal(t, refNow.Add(90*models.Day), stored.EndDate, "freezes never move the stored end date")
}

func TestFreezeOnCancelledOrMissingMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.enroll(t, env.addMember(t, "Asha", "Rao"), "Quarterly", refNow)
	_, err := env.memberships.Cancel(ctx, SystemActor, m.ID)
	require.NoError(t, err)

	_, err = env.memberships.AddFreeze(ctx, SystemActor, m.ID, refNow, refNow.Add(models.Day), "")
	assert.True(t, IsValidationError(err))

	_, err = env.memberships.AddFreeze(ctx, SystemActor, uuid.New(), refNow, refNow.Add(models.Day), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFreeze(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.enroll(t, env.addMember(t, "Asha", "Rao"), "Quarterly", refNow)

	f, err := env.memberships.AddFreeze(ctx, SystemActor, m.ID, refNow, refNow.Add(7*models.Day), "")
	require.NoError(t, err)
	require.NoError(t, env.memberships.RemoveFreeze(ctx, SystemActor, f.ID))
	require.NoError(t, env.memberships.RemoveFreeze(ctx, SystemActor, f.ID))

	// The allowance is available again.
	_, err = env.memberships.AddFreeze(ctx, SystemActor, m.ID, refNow, refNow.Add(7*models.Day), "")
	assert.NoError(t, err)
}

func TestShortFreezesUseWholeDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	daily := env.enroll(t, env.addMember(t, "Day", "Tripper"), "Daily Pass", refNow)
	_, err := env.memberships.AddFreeze(ctx, SystemActor, daily.ID, refNow, refNow.Add(time.Hour), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max_freeze_days", verr.Rule)

	// Quarterly allows 7 days: seven slices of 23h59m fit, the eighth does not.
	m := env.enroll(t, env.addMember(t, "Asha", "Rao"), "Quarterly", refNow)
	slice := models.Day - time.Minute
	start := refNow
	for i := 0; i < 7; i++ {
		_, err := env.memberships.AddFreeze(ctx, SystemActor, m.ID, start, start.Add(slice), "")
		require.NoError(t, err, "slice %d", i)
		start = start.Add(models.Day)
	}
	_, err = env.memberships.AddFreeze(ctx, SystemActor, m.ID, start, start.Add(slice), "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max_freeze_days", verr.Rule)
}

func TestConcurrentFreezesRespectAllowance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.enroll(t, env.addMember(t, "Asha", "Rao"), "Quarterly", refNow)

	// Ten disjoint two-day freezes race for a seven day allowance.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := refNow.Add(time.Duration(i*3) * models.Day)
			_, err := env.memberships.AddFreeze(ctx, SystemActor, m.ID, start, start.Add(2*models.Day), "")
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, IsValidationError(err), "%v", err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	stored, err := env.memberships.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.TotalFrozenDays())
}
