package services

import (
	"context"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"
	"gympro-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TrendLabelLayout formats the day of a trend entry as MM/dd.
const TrendLabelLayout = "01/02"

// DashboardStats is a point-in-time snapshot of the gym.
type DashboardStats struct {
	TotalMembers             int64           `json:"totalMembers"`
	ActiveMembers            int64           `json:"activeMembers"`
	InactiveMembers          int64           `json:"inactiveMembers"`
	TodayCheckIns            int64           `json:"todayCheckIns"`
	MonthlyRevenue           decimal.Decimal `json:"monthlyRevenue"`
	TodayRevenue             decimal.Decimal `json:"todayRevenue"`
	ExpiringMembershipsCount int             `json:"expiringMembershipsCount"`
	ActiveMembershipsCount   int             `json:"activeMembershipsCount"`
	GeneratedAt              time.Time       `json:"generatedAt"`
}

type AttendanceTrendEntry struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Count int64     `json:"count"`
}

type ExpiringMembership struct {
	MembershipID   uuid.UUID `json:"membershipId"`
	MemberID       uuid.UUID `json:"memberId"`
	MemberName     string    `json:"memberName"`
	MembershipType string    `json:"membershipType"`
	ExpiryDate     time.Time `json:"expiryDate"`
	DaysRemaining  int       `json:"daysRemaining"`
	Phone          string    `json:"phone"`
}

// DashboardService computes the reporting views. Every day boundary is UTC.
type DashboardService struct {
	members    repository.MemberRepository
	payments   repository.PaymentRepository
	attendance repository.AttendanceRepository
	lifecycle  *LifecycleService
	tracer     trace.Tracer
	Clock      Clock
}

func NewDashboardService(store *repository.Store, lifecycle *LifecycleService) *DashboardService {
	return &DashboardService{
		members:    store.Members,
		payments:   store.Payments,
		attendance: store.Attendance,
		lifecycle:  lifecycle,
		tracer:     otel.Tracer("gympro/dashboard"),
		Clock:      SystemClock,
	}
}

func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.stats")
	defer span.End()

	now := s.Clock().UTC()
	today := utils.BeginningOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	month := utils.BeginningOfMonth(now)
	nextMonth := month.AddDate(0, 1, 0)

	stats := &DashboardStats{GeneratedAt: now}
	var err error

	if stats.TotalMembers, err = s.members.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveMembers, err = s.members.Count(ctx, models.MemberActive); err != nil {
		return nil, err
	}
	if stats.InactiveMembers, err = s.members.Count(ctx, models.MemberInactive, models.MemberSuspended); err != nil {
		return nil, err
	}
	if stats.TodayCheckIns, err = s.attendance.CountBetween(ctx, today, tomorrow); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.payments.SumTotal(ctx, models.PaymentPaid, month, nextMonth); err != nil {
		return nil, err
	}
	if stats.TodayRevenue, err = s.payments.SumTotal(ctx, models.PaymentPaid, today, tomorrow); err != nil {
		return nil, err
	}

	expiring, err := s.lifecycle.ExpiringWithin(ctx, now, models.ExpiringSoonDays)
	if err != nil {
		return nil, err
	}
	stats.ExpiringMembershipsCount = len(expiring)

	active, err := s.lifecycle.ActiveMemberships(ctx, now)
	if err != nil {
		return nil, err
	}
	stats.ActiveMembershipsCount = len(active)

	return stats, nil
}

// MaxTrendDays is the longest attendance trend served. Longer requests are
// cut to this many days.
const MaxTrendDays = 366

// GetAttendanceTrend returns exactly days entries, oldest first, ending
// today. Days without check-ins carry a zero count.
func (s *DashboardService) GetAttendanceTrend(ctx context.Context, days int) ([]AttendanceTrendEntry, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.attendance_trend",
		trace.WithAttributes(attribute.Int("days", days)))
	defer span.End()

	if days <= 0 {
		return []AttendanceTrendEntry{}, nil
	}
	if days > MaxTrendDays {
		days = MaxTrendDays
	}

	today := utils.BeginningOfDay(s.Clock().UTC())
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	buckets, err := s.attendance.CountByDay(ctx, start, end)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		counts[b.Day.UTC().Format(time.DateOnly)] += b.Count
	}

	trend := make([]AttendanceTrendEntry, days)
	for i := range trend {
		day := start.AddDate(0, 0, i)
		trend[i] = AttendanceTrendEntry{
			Date:  day,
			Label: day.Format(TrendLabelLayout),
			Count: counts[day.Format(time.DateOnly)],
		}
	}
	return trend, nil
}

// GetExpiringMemberships projects Active memberships ending within days,
// soonest first.
func (s *DashboardService) GetExpiringMemberships(ctx context.Context, days int) ([]ExpiringMembership, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.expiring",
		trace.WithAttributes(attribute.Int("days", days)))
	defer span.End()

	now := s.Clock().UTC()
	memberships, err := s.lifecycle.ExpiringWithin(ctx, now, days)
	if err != nil {
		return nil, err
	}

	rows := make([]ExpiringMembership, 0, len(memberships))
	for _, m := range memberships {
		expiry := s.lifecycle.EffectiveEndDate(m)
		row := ExpiringMembership{
			MembershipID:  m.ID,
			MemberID:      m.MemberID,
			ExpiryDate:    expiry,
			DaysRemaining: int(expiry.Sub(now) / models.Day),
		}
		if m.Member != nil {
			row.MemberName = m.Member.FullName()
			row.Phone = m.Member.Phone
		}
		if m.MembershipType != nil {
			row.MembershipType = m.MembershipType.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}
