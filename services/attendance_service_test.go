package services

import (
	"context"
	"testing"
	"time"

	"gympro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInAndOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	member := env.addMember(t, "Asha", "Rao")

	visit, err := env.attendance.CheckIn(ctx, SystemActor, member.ID, "", " Weights ")
	require.NoError(t, err)
	assert.Equal(t, models.EntryManual, visit.EntryMethod)
	assert.Equal(t, "Weights", visit.FacilityArea)
	_, ok := visit.Duration()
	assert.False(t, ok)

	_, err = env.attendance.CheckIn(ctx, SystemActor, member.ID, models.EntryCard, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "not_checked_in", verr.Rule)

	env.clock.Advance(90 * time.Minute)
	closed, err := env.attendance.CheckOut(ctx, SystemActor, member.ID)
	require.NoError(t, err)
	d, ok := closed.Duration()
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, d)

	_, err = env.attendance.CheckOut(ctx, SystemActor, member.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.attendance.CheckIn(ctx, SystemActor, member.ID, models.EntryQRCode, "")
	require.NoError(t, err)
	visits, err := env.attendance.ListByMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, visits, 2)
}

func TestCheckInRequiresActiveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.attendance.CheckIn(ctx, SystemActor, uuid.New(), "", "")
	assert.True(t, IsValidationError(err))

	member := env.addMember(t, "Asha", "Rao")
	member.Status = models.MemberSuspended
	_, err = env.members.Update(ctx, member)
	require.NoError(t, err)

	_, err = env.attendance.CheckIn(ctx, SystemActor, member.ID, "", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "active", verr.Rule)

	member.Status = models.MemberActive
	_, err = env.members.Update(ctx, member)
	require.NoError(t, err)
	_, err = env.attendance.CheckIn(ctx, SystemActor, member.ID, "Retina", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "oneof", verr.Rule)
}
