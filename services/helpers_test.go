package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"
	"gympro-backend/repository/memory"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// testClock is a settable clock shared by every service in an env.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store       *repository.Store
	clock       *testClock
	members     *MemberService
	memberships *MembershipService
	payments    *PaymentService
	attendance  *AttendanceService
	lifecycle   *LifecycleService
	dashboard   *DashboardService
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithPolicy(t, nil)
}

func newTestEnvWithPolicy(t *testing.T, policy models.ExpiryPolicy) *testEnv {
	t.Helper()

	store := memory.NewStore()
	logger := quietLogger()
	clock := &testClock{now: refNow}

	env := &testEnv{
		store:       store,
		clock:       clock,
		members:     NewMemberService(store, logger),
		memberships: NewMembershipService(store, logger),
		payments:    NewPaymentService(store, logger),
		attendance:  NewAttendanceService(store, logger),
		lifecycle:   NewLifecycleService(store.Memberships, policy),
	}
	env.dashboard = NewDashboardService(store, env.lifecycle)

	env.members.Clock = clock.Now
	env.memberships.Clock = clock.Now
	env.payments.Clock = clock.Now
	env.attendance.Clock = clock.Now
	env.dashboard.Clock = clock.Now

	require.NoError(t, env.memberships.SeedDefaultTypes(context.Background()))
	return env
}

func (e *testEnv) addMember(t *testing.T, first, last string) *models.Member {
	t.Helper()
	m, err := e.members.Add(context.Background(), &models.Member{
		FirstName: first,
		LastName:  last,
		Phone:     "+15551234567",
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) planNamed(t *testing.T, name string) models.MembershipType {
	t.Helper()
	types, err := e.memberships.ListTypes(context.Background(), false)
	require.NoError(t, err)
	for _, mt := range types {
		if mt.Name == name {
			return mt
		}
	}
	t.Fatalf("no membership type %q", name)
	return models.MembershipType{}
}

// enroll buys plan for member starting at start.
func (e *testEnv) enroll(t *testing.T, member *models.Member, plan string, start time.Time) *models.MemberMembership {
	t.Helper()
	m, err := e.memberships.Enroll(context.Background(), SystemActor, EnrollRequest{
		MemberID:         member.ID,
		MembershipTypeID: e.planNamed(t, plan).ID,
		StartDate:        start,
		PaymentMethod:    models.PaymentCash,
	})
	require.NoError(t, err)
	return m
}

// expiresAt enrolls a Monthly membership that ends exactly at end.
func (e *testEnv) expiresAt(t *testing.T, member *models.Member, end time.Time) *models.MemberMembership {
	t.Helper()
	return e.enroll(t, member, "Monthly", end.Add(-30*models.Day))
}
