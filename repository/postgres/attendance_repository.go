package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type attendanceRepository struct {
	db *gorm.DB
}

func (r *attendanceRepository) Create(ctx context.Context, log *models.AttendanceLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create attendance log: %w", translate(err))
	}
	return nil
}

func (r *attendanceRepository) Update(ctx context.Context, log *models.AttendanceLog) error {
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Where("id = ?", log.ID).
		Updates(map[string]interface{}{
			"check_out_time": log.CheckOutTime,
			"facility_area":  log.FacilityArea,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update attendance log: %w", err)
	}
	return nil
}

func (r *attendanceRepository) GetOpenByMember(ctx context.Context, memberID uuid.UUID) (*models.AttendanceLog, error) {
	var log models.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND check_out_time IS NULL", memberID).
		Order("check_in_time DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open visit: %w", err)
	}
	return &log, nil
}

func (r *attendanceRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.AttendanceLog, error) {
	var out []models.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("check_in_time DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return out, nil
}

func (r *attendanceRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Where("check_in_time >= ? AND check_in_time < ?", from, to).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return n, nil
}

func (r *attendanceRepository) CountByDay(ctx context.Context, from, to time.Time) ([]repository.DailyCount, error) {
	var rows []struct {
		Day   time.Time
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Select("DATE(check_in_time AT TIME ZONE 'UTC') AS day, COUNT(*) AS count").
		Where("check_in_time >= ? AND check_in_time < ?", from, to).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count check-ins by day: %w", err)
	}

	out := make([]repository.DailyCount, 0, len(rows))
	for _, row := range rows {
		y, m, d := row.Day.Date()
		out = append(out, repository.DailyCount{
			Day:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Count: row.Count,
		})
	}
	return out, nil
}
