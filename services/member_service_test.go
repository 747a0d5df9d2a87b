package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsNumberAndDefaults(t *testing.T) {
	env := newTestEnv(t)

	m := env.addMember(t, "Asha", "Rao")

	assert.Equal(t, "GYM001", m.MembershipNumber)
	assert.Equal(t, models.MemberActive, m.Status)
	assert.Equal(t, refNow, m.CreatedAt)
	assert.Equal(t, refNow, m.EnrollmentDate)
	assert.Nil(t, m.UpdatedAt)
	assert.NotEqual(t, uuid.Nil, m.ID)
}

func TestAddRejectsInvalidMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.members.Add(ctx, &models.Member{FirstName: "No", LastName: "Phone"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone", verr.Field)

	_, err = env.members.Add(ctx, &models.Member{FirstName: "Bad", LastName: "Phone", Phone: "call me"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone", verr.Rule)

	members, err := env.members.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestConcurrentAllocationIsContiguous(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 100
	numbers := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := env.members.Add(ctx, &models.Member{
				FirstName: "Member",
				LastName:  fmt.Sprintf("%03d", i),
				Phone:     "+15551234567",
			})
			errs[i] = err
			if m != nil {
				numbers[i] = m.MembershipNumber
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Strings(numbers)
	for i, number := range numbers {
		assert.Equal(t, FormatMembershipNumber(int64(i+1)), number)
	}
}

func TestAllocationSkipsTakenNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.members.Add(ctx, &models.Member{
		MembershipNumber: "GYM002",
		FirstName:        "Walk",
		LastName:         "In",
		Phone:            "+15551234567",
	})
	require.NoError(t, err)

	first := env.addMember(t, "First", "Auto")
	second := env.addMember(t, "Second", "Auto")

	assert.Equal(t, "GYM001", first.MembershipNumber)
	assert.Equal(t, "GYM003", second.MembershipNumber)
}

func TestExplicitDuplicateNumberIsValidationError(t *testing.T) {
	env := newTestEnv(t)
	existing := env.addMember(t, "Asha", "Rao")

	_, err := env.members.Add(context.Background(), &models.Member{
		MembershipNumber: existing.MembershipNumber,
		FirstName:        "Copy",
		LastName:         "Cat",
		Phone:            "+15551234567",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unique", verr.Rule)
}

type collidingSequences struct{}

func (collidingSequences) Next(context.Context, string) (int64, error) { return 1, nil }

func TestAllocationGivesUpAfterRepeatedConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "Holds", "GYM001")

	env.members.numbers = allocator{sequences: collidingSequences{}}
	_, err := env.members.Add(context.Background(), &models.Member{
		FirstName: "Unlucky",
		LastName:  "Caller",
		Phone:     "+15551234567",
	})
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.False(t, IsValidationError(err))
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	asha := env.addMember(t, "Asha", "Rao")
	env.clock.Advance(models.Day)
	ben := env.addMember(t, "Ben", "Okafor")
	ben.Email = "ben@example.com"
	_, err := env.members.Update(ctx, ben)
	require.NoError(t, err)

	tests := []struct {
		term string
		want []uuid.UUID
	}{
		{"asha", []uuid.UUID{asha.ID}},
		{"OKAF", []uuid.UUID{ben.ID}},
		{"example.com", []uuid.UUID{ben.ID}},
		{"gym00", []uuid.UUID{ben.ID, asha.ID}},
		{"5551234", []uuid.UUID{ben.ID, asha.ID}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := env.members.Search(ctx, tt.term)
			require.NoError(t, err)
			var ids []uuid.UUID
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBlankSearchEqualsList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		env.addMember(t, "Member", fmt.Sprint(i))
		if i%2 == 0 {
			env.clock.Advance(models.Day)
		}
	}

	all, err := env.members.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "list must be newest first")
	}

	for _, term := range []string{"", "   ", "\t"} {
		got, err := env.members.Search(ctx, term)
		require.NoError(t, err)
		assert.Equal(t, all, got)
	}
}

func TestUpdateReplacesMutableFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMember(t, "Asha", "Rao")

	env.clock.Advance(models.Day)
	updated, err := env.members.Update(ctx, &models.Member{
		ID:        m.ID,
		FirstName: "Asha",
		LastName:  "Menon",
		Phone:     "+15550000000",
		Status:    models.MemberSuspended,
	})
	require.NoError(t, err)
	assert.Equal(t, m.MembershipNumber, updated.MembershipNumber)
	assert.Equal(t, m.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, refNow.Add(models.Day), *updated.UpdatedAt)

	stored, err := env.members.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Menon", stored.LastName)
	assert.Equal(t, models.MemberSuspended, stored.Status)
	assert.Empty(t, stored.Email)
}

func TestUpdateRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMember(t, "Asha", "Rao")

	_, err := env.members.Update(ctx, &models.Member{
		ID:               m.ID,
		MembershipNumber: "GYM999",
		FirstName:        "Asha",
		LastName:         "Rao",
		Phone:            "+15551234567",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "immutable", verr.Rule)

	_, err = env.members.Update(ctx, &models.Member{
		ID:        uuid.New(),
		FirstName: "Ghost",
		LastName:  "Member",
		Phone:     "+15551234567",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReferralCycles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.addMember(t, "A", "Member")
	b, err := env.members.Add(ctx, &models.Member{FirstName: "B", LastName: "Member", Phone: "+15551234567", ReferredByID: &a.ID})
	require.NoError(t, err)
	c, err := env.members.Add(ctx, &models.Member{FirstName: "C", LastName: "Member", Phone: "+15551234567", ReferredByID: &b.ID})
	require.NoError(t, err)

	var verr *ValidationError

	a.ReferredByID = &a.ID
	_, err = env.members.Update(ctx, a)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "no_self_referral", verr.Rule)

	a.ReferredByID = &c.ID
	_, err = env.members.Update(ctx, a)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "acyclic", verr.Rule)

	missing := uuid.New()
	_, err = env.members.Add(ctx, &models.Member{FirstName: "D", LastName: "Member", Phone: "+15551234567", ReferredByID: &missing})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exists", verr.Rule)

	// Pointing elsewhere in the chain is fine.
	c.ReferredByID = &a.ID
	_, err = env.members.Update(ctx, c)
	assert.NoError(t, err)
}

func TestDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m := env.addMember(t, "Asha", "Rao")
	referred, err := env.members.Add(ctx, &models.Member{FirstName: "Friend", LastName: "Of Asha", Phone: "+15551234567", ReferredByID: &m.ID})
	require.NoError(t, err)

	membership := env.enroll(t, m, "Quarterly", refNow)
	_, err = env.memberships.AddFreeze(ctx, SystemActor, membership.ID, refNow.Add(models.Day), refNow.Add(3*models.Day), "travel")
	require.NoError(t, err)
	_, err = env.attendance.CheckIn(ctx, SystemActor, m.ID, "", "")
	require.NoError(t, err)

	require.NoError(t, env.members.Delete(ctx, m.ID))

	got, err := env.members.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	memberships, err := env.memberships.ListByMember(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
	payments, err := env.payments.ListByMember(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
	visits, err := env.attendance.ListByMember(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, visits)

	friend, err := env.members.Get(ctx, referred.ID)
	require.NoError(t, err)
	assert.Nil(t, friend.ReferredByID)
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.members.Delete(context.Background(), uuid.New()))
}

func TestGetByMembershipNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMember(t, "Asha", "Rao")

	got, err := env.members.GetByMembershipNumber(ctx, " GYM001 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.ID, got.ID)

	got, err = env.members.GetByMembershipNumber(ctx, "GYM404")
	require.NoError(t, err)
	assert.Nil(t, got)
}

var _ repository.SequenceRepository = collidingSequences{}

func TestListBreaksTiesByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 6; i++ {
		ids = append(ids, env.addMember(t, "Same", fmt.Sprint(i)).ID)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) > 0 })

	all, err := env.members.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(ids))
	for i, m := range all {
		assert.Equal(t, ids[i], m.ID)
	}
}
