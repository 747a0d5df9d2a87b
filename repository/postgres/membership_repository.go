package postgres

import (
	"context"
	"errors"
	"fmt"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type membershipTypeRepository struct {
	db *gorm.DB
}

func (r *membershipTypeRepository) Create(ctx context.Context, mt *models.MembershipType) error {
	if err := r.db.WithContext(ctx).Create(mt).Error; err != nil {
		return fmt.Errorf("failed to create membership type: %w", translate(err))
	}
	return nil
}

func (r *membershipTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MembershipType, error) {
	var mt models.MembershipType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&mt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership type: %w", err)
	}
	return &mt, nil
}

func (r *membershipTypeRepository) List(ctx context.Context, activeOnly bool) ([]models.MembershipType, error) {
	q := r.db.WithContext(ctx).Order("duration_days ASC").Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var types []models.MembershipType
	if err := q.Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list membership types: %w", err)
	}
	return types, nil
}

func (r *membershipTypeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.MembershipType{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count membership types: %w", err)
	}
	return n, nil
}

type membershipRepository struct {
	db *gorm.DB
}

func (r *membershipRepository) CreateWithPayment(ctx context.Context, membership *models.MemberMembership, payment *models.Payment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(payment).Error; err != nil {
			return err
		}
		membership.PaymentID = &payment.ID
		return tx.Omit(clause.Associations).Create(membership).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", translate(err))
	}
	return nil
}

// Update persists the mutable contract fields: status and auto-renew.
func (r *membershipRepository) Update(ctx context.Context, membership *models.MemberMembership) error {
	err := r.db.WithContext(ctx).
		Model(&models.MemberMembership{}).
		Where("id = ?", membership.ID).
		Updates(map[string]interface{}{
			"status":     membership.Status,
			"auto_renew": membership.AutoRenew,
			"updated_at": membership.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return nil
}

func (r *membershipRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Member").
		Preload("MembershipType").
		Preload("Freezes", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date ASC")
		})
}

func (r *membershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MemberMembership, error) {
	var m models.MemberMembership
	if err := r.withDetails(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

func (r *membershipRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.MemberMembership, error) {
	var out []models.MemberMembership
	err := r.withDetails(ctx).
		Where("member_id = ?", memberID).
		Order("start_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return out, nil
}

func (r *membershipRepository) Find(ctx context.Context, filter repository.MembershipFilter) ([]models.MemberMembership, error) {
	q := r.withDetails(ctx)
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.EndFrom != nil {
		q = q.Where("end_date >= ?", *filter.EndFrom)
	}
	if filter.EndTo != nil {
		q = q.Where("end_date <= ?", *filter.EndTo)
	}

	var out []models.MemberMembership
	if err := q.Order("end_date ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to find memberships: %w", err)
	}
	return out, nil
}

// AddFreeze serializes freezes of one membership on its row lock, so the
// overlap and allowance checks see every committed freeze.
func (r *membershipRepository) AddFreeze(ctx context.Context, membershipID uuid.UUID, check repository.FreezeCheck) (*models.MembershipFreeze, error) {
	var (
		freeze   *models.MembershipFreeze
		checkErr error
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.MemberMembership
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", membershipID).
			First(&locked).Error
		var current *models.MemberMembership
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			var m models.MemberMembership
			if err := tx.Preload("Member").
				Preload("MembershipType").
				Preload("Freezes", func(db *gorm.DB) *gorm.DB {
					return db.Order("start_date ASC")
				}).
				Where("id = ?", membershipID).
				First(&m).Error; err != nil {
				return err
			}
			current = &m
		}

		f, err := check(current)
		if err != nil {
			checkErr = err
			return err
		}
		if err := tx.Omit(clause.Associations).Create(f).Error; err != nil {
			return err
		}
		freeze = f
		return nil
	})
	if checkErr != nil {
		return nil, checkErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create freeze: %w", translate(err))
	}
	return freeze, nil
}

func (r *membershipRepository) GetFreeze(ctx context.Context, id uuid.UUID) (*models.MembershipFreeze, error) {
	var f models.MembershipFreeze
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get freeze: %w", err)
	}
	return &f, nil
}

func (r *membershipRepository) DeleteFreeze(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MembershipFreeze{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete freeze: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
