package services

import (
	"context"
	"strings"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AttendanceService struct {
	members    repository.MemberRepository
	attendance repository.AttendanceRepository
	logger     *logrus.Logger
	Clock      Clock
}

func NewAttendanceService(store *repository.Store, logger *logrus.Logger) *AttendanceService {
	return &AttendanceService{
		members:    store.Members,
		attendance: store.Attendance,
		logger:     logger,
		Clock:      SystemClock,
	}
}

// CheckIn opens a visit. A member can only have one open visit.
func (s *AttendanceService) CheckIn(ctx context.Context, actor Actor, memberID uuid.UUID, method models.EntryMethod, area string) (*models.AttendanceLog, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, invalid("memberId", "exists", "member %s does not exist", memberID)
	}
	if member.Status != models.MemberActive {
		return nil, invalid("memberId", "active", "member %s is %s", member.MembershipNumber, member.Status)
	}
	open, err := s.attendance.GetOpenByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, invalid("memberId", "not_checked_in", "member %s is already checked in", member.MembershipNumber)
	}

	switch method {
	case "":
		method = models.EntryManual
	case models.EntryManual, models.EntryCard, models.EntryBiometric, models.EntryQRCode:
	default:
		return nil, invalid("entryMethod", "oneof", "unknown entry method %s", method)
	}

	now := s.Clock()
	log := &models.AttendanceLog{
		ID:                 uuid.New(),
		MemberID:           memberID,
		CheckInTime:        now,
		EntryMethod:        method,
		FacilityArea:       strings.TrimSpace(area),
		ProcessedByStaffID: actor.StaffID,
		CreatedAt:          now,
	}
	if err := s.attendance.Create(ctx, log); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"method":    method,
	}).Debug("Member checked in")
	return log, nil
}

// CheckOut closes the member's open visit.
func (s *AttendanceService) CheckOut(ctx context.Context, actor Actor, memberID uuid.UUID) (*models.AttendanceLog, error) {
	open, err := s.attendance.GetOpenByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrNotFound
	}
	now := s.Clock()
	if now.Before(open.CheckInTime) {
		now = open.CheckInTime
	}
	open.CheckOutTime = &now
	if err := s.attendance.Update(ctx, open); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"by":        actor.Username,
	}).Debug("Member checked out")
	return open, nil
}

func (s *AttendanceService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.AttendanceLog, error) {
	return s.attendance.ListByMember(ctx, memberID)
}
