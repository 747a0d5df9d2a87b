package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gympro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Staff").Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

type staffRepository struct {
	db *gorm.DB
}

func (r *staffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if err := r.db.WithContext(ctx).Create(staff).Error; err != nil {
		return fmt.Errorf("failed to create staff: %w", translate(err))
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

type reminderLogRepository struct {
	db *gorm.DB
}

func (r *reminderLogRepository) Create(ctx context.Context, log *models.ReminderLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to log reminder: %w", err)
	}
	return nil
}

func (r *reminderLogRepository) ExistsSince(ctx context.Context, membershipID uuid.UUID, since time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.ReminderLog{}).
		Where("membership_id = ? AND sent_at >= ? AND status = ?", membershipID, since, models.ReminderSent).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reminder log: %w", err)
	}
	return n > 0, nil
}

type sequenceRepository struct {
	db *gorm.DB
}

// Next advances the named counter with a single upsert, so concurrent
// callers are serialized by the row lock.
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequences (name, value, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (name) DO UPDATE
		SET value = sequences.value + 1, updated_at = NOW()
		RETURNING value
	`, name).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return value, nil
}
