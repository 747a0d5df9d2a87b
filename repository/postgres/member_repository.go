package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gympro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type memberRepository struct {
	db *gorm.DB
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error; err != nil {
		return fmt.Errorf("failed to create member: %w", translate(err))
	}
	return nil
}

func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	err := r.db.WithContext(ctx).
		Model(member).
		Select("*").
		Omit(clause.Associations, "id", "created_at").
		Updates(member).Error
	if err != nil {
		return fmt.Errorf("failed to update member: %w", translate(err))
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var membershipIDs []uuid.UUID
		if err := tx.Model(&models.MemberMembership{}).
			Where("member_id = ?", id).
			Pluck("id", &membershipIDs).Error; err != nil {
			return err
		}
		if len(membershipIDs) > 0 {
			if err := tx.Where("member_membership_id IN ?", membershipIDs).
				Delete(&models.MembershipFreeze{}).Error; err != nil {
				return err
			}
		}

		owned := []interface{}{
			&models.MemberMembership{},
			&models.Payment{},
			&models.AttendanceLog{},
			&models.ReminderLog{},
		}
		for _, model := range owned {
			if err := tx.Where("member_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Member{}).
			Where("referred_by_id = ?", id).
			UpdateColumn("referred_by_id", nil).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Member{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete member: %w", err)
	}
	return deleted, nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *memberRepository) GetByMembershipNumber(ctx context.Context, number string) (*models.Member, error) {
	return r.first(ctx, "membership_number = ?", number)
}

func (r *memberRepository) first(ctx context.Context, query string, args ...interface{}) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where(query, args...).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

func (r *memberRepository) List(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	if err := r.ordered(ctx).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (r *memberRepository) Search(ctx context.Context, term string) ([]models.Member, error) {
	if strings.TrimSpace(term) == "" {
		return r.List(ctx)
	}
	pattern := containsPattern(strings.TrimSpace(term))

	var members []models.Member
	err := r.ordered(ctx).
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ? OR LOWER(membership_number) LIKE ?",
			pattern, pattern, pattern, pattern, pattern).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search members: %w", err)
	}
	return members, nil
}

func (r *memberRepository) ordered(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
}

func (r *memberRepository) Count(ctx context.Context, statuses ...models.MemberStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Member{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}
