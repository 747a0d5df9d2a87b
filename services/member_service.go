package services

import (
	"context"
	"errors"
	"strings"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxReferralDepth bounds the referral chain walk on write.
const maxReferralDepth = 1000

// MemberService is the member directory: CRUD, search and membership
// number allocation.
type MemberService struct {
	members repository.MemberRepository
	numbers allocator
	logger  *logrus.Logger
	tracer  trace.Tracer
	Clock   Clock
}

func NewMemberService(store *repository.Store, logger *logrus.Logger) *MemberService {
	return &MemberService{
		members: store.Members,
		numbers: allocator{sequences: store.Sequences},
		logger:  logger,
		tracer:  otel.Tracer("gympro/members"),
		Clock:   SystemClock,
	}
}

// List returns every member, most recently created first.
func (s *MemberService) List(ctx context.Context) ([]models.Member, error) {
	return s.members.List(ctx)
}

// Get returns nil when no member has id.
func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return s.members.GetByID(ctx, id)
}

// GetByMembershipNumber returns nil when number is unassigned.
func (s *MemberService) GetByMembershipNumber(ctx context.Context, number string) (*models.Member, error) {
	return s.members.GetByMembershipNumber(ctx, strings.TrimSpace(number))
}

// Search matches term against names, phone, email and membership number.
// A blank term lists everyone.
func (s *MemberService) Search(ctx context.Context, term string) ([]models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "members.search")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		return s.members.List(ctx)
	}
	return s.members.Search(ctx, term)
}

// AllocateMembershipNumber hands out the next number. Concurrent callers
// always receive distinct, increasing values.
func (s *MemberService) AllocateMembershipNumber(ctx context.Context) (string, error) {
	return s.numbers.membershipNumber(ctx)
}

// Add enrols a member. Without an explicit membership number one is
// allocated, retrying past numbers that are already taken.
func (s *MemberService) Add(ctx context.Context, member *models.Member) (*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "members.add")
	defer span.End()

	now := s.Clock()
	member.ID = uuid.New()
	member.CreatedAt = now
	member.UpdatedAt = nil
	if member.EnrollmentDate.IsZero() {
		member.EnrollmentDate = now
	}
	if member.Status == "" {
		member.Status = models.MemberActive
	}
	member.MembershipNumber = strings.TrimSpace(member.MembershipNumber)

	if err := validateStruct(member); err != nil {
		return nil, err
	}
	if err := s.checkReferral(ctx, member.ID, member.ReferredByID); err != nil {
		return nil, err
	}

	if member.MembershipNumber != "" {
		if err := s.addWithNumber(ctx, member); err != nil {
			return nil, err
		}
	} else {
		err := retryOnDuplicate(s.logger, "membership_number", func() error {
			number, err := s.numbers.membershipNumber(ctx)
			if err != nil {
				return err
			}
			member.MembershipNumber = number
			return s.members.Create(ctx, member)
		})
		if err != nil {
			member.MembershipNumber = ""
			return nil, err
		}
	}

	span.SetAttributes(attribute.String("member.number", member.MembershipNumber))
	s.logger.WithFields(logrus.Fields{
		"member_id": member.ID,
		"number":    member.MembershipNumber,
	}).Info("Member added")
	return member, nil
}

func (s *MemberService) addWithNumber(ctx context.Context, member *models.Member) error {
	existing, err := s.members.GetByMembershipNumber(ctx, member.MembershipNumber)
	if err != nil {
		return err
	}
	if existing != nil {
		return invalid("membershipNumber", "unique", "membership number %s is already assigned", member.MembershipNumber)
	}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return invalid("membershipNumber", "unique", "membership number %s is already assigned", member.MembershipNumber)
		}
		return err
	}
	return nil
}

// Update replaces every mutable field of the stored member. The membership
// number and creation time are kept.
func (s *MemberService) Update(ctx context.Context, member *models.Member) (*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "members.update",
		trace.WithAttributes(attribute.String("member.id", member.ID.String())))
	defer span.End()

	existing, err := s.members.GetByID(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	number := strings.TrimSpace(member.MembershipNumber)
	if number != "" && number != existing.MembershipNumber {
		return nil, invalid("membershipNumber", "immutable", "membership number cannot change once assigned")
	}
	member.MembershipNumber = existing.MembershipNumber
	member.CreatedAt = existing.CreatedAt
	if member.EnrollmentDate.IsZero() {
		member.EnrollmentDate = existing.EnrollmentDate
	}
	if member.Status == "" {
		member.Status = existing.Status
	}
	now := s.Clock()
	member.UpdatedAt = &now

	if err := validateStruct(member); err != nil {
		return nil, err
	}
	if err := s.checkReferral(ctx, member.ID, member.ReferredByID); err != nil {
		return nil, err
	}
	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Delete removes the member with its memberships, payments and attendance.
// Deleting an unknown id is a no-op.
func (s *MemberService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "members.delete",
		trace.WithAttributes(attribute.String("member.id", id.String())))
	defer span.End()

	deleted, err := s.members.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		s.logger.WithField("member_id", id).Info("Member deleted")
	}
	return nil
}

// checkReferral rejects a referral edge member -> referrer that would close
// a cycle in the referral chain.
func (s *MemberService) checkReferral(ctx context.Context, memberID uuid.UUID, referrerID *uuid.UUID) error {
	if referrerID == nil {
		return nil
	}
	if *referrerID == memberID {
		return invalid("referredById", "no_self_referral", "a member cannot refer themselves")
	}

	visited := map[uuid.UUID]bool{}
	current := *referrerID
	for depth := 0; ; depth++ {
		if depth >= maxReferralDepth {
			return invalid("referredById", "max_depth", "referral chain is longer than %d members", maxReferralDepth)
		}
		referrer, err := s.members.GetByID(ctx, current)
		if err != nil {
			return err
		}
		if referrer == nil {
			if depth == 0 {
				return invalid("referredById", "exists", "referring member %s does not exist", current)
			}
			return nil
		}
		if referrer.ReferredByID == nil {
			return nil
		}
		next := *referrer.ReferredByID
		if next == memberID {
			return invalid("referredById", "acyclic", "referral would create a cycle")
		}
		if visited[next] {
			return nil
		}
		visited[current] = true
		current = next
	}
}
