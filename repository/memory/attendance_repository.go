package memory

import (
	"context"
	"sort"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
)

type attendanceRepository struct{ s *state }

func (r *attendanceRepository) Create(_ context.Context, log *models.AttendanceLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&log.ID)
	r.s.attendance[log.ID] = row[models.AttendanceLog]{value: *log}
	return nil
}

func (r *attendanceRepository) Update(_ context.Context, log *models.AttendanceLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.attendance[log.ID]
	if !ok {
		return nil
	}
	existing.value.CheckOutTime = log.CheckOutTime
	existing.value.FacilityArea = log.FacilityArea
	r.s.attendance[log.ID] = existing
	return nil
}

func (r *attendanceRepository) GetOpenByMember(_ context.Context, memberID uuid.UUID) (*models.AttendanceLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var open *models.AttendanceLog
	for _, a := range r.s.attendance {
		v := a.value
		if v.MemberID != memberID || v.CheckOutTime != nil {
			continue
		}
		if open == nil || v.CheckInTime.After(open.CheckInTime) {
			open = &v
		}
	}
	return open, nil
}

func (r *attendanceRepository) ListByMember(_ context.Context, memberID uuid.UUID) ([]models.AttendanceLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.AttendanceLog
	for _, a := range r.s.attendance {
		if a.value.MemberID == memberID {
			out = append(out, a.value)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out, nil
}

func (r *attendanceRepository) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, a := range r.s.attendance {
		if t := a.value.CheckInTime; !t.Before(from) && t.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *attendanceRepository) CountByDay(_ context.Context, from, to time.Time) ([]repository.DailyCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	buckets := make(map[time.Time]int64)
	for _, a := range r.s.attendance {
		t := a.value.CheckInTime
		if t.Before(from) || !t.Before(to) {
			continue
		}
		y, m, d := t.UTC().Date()
		buckets[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)]++
	}

	out := make([]repository.DailyCount, 0, len(buckets))
	for day, n := range buckets {
		out = append(out, repository.DailyCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}
