package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gympro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentRepository struct {
	db *gorm.DB
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", translate(err))
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *paymentRepository) GetByReceiptNumber(ctx context.Context, receipt string) (*models.Payment, error) {
	return r.first(ctx, "receipt_number = ?", receipt)
}

func (r *paymentRepository) first(ctx context.Context, query string, args ...interface{}) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where(query, args...).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (r *paymentRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("payment_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return out, nil
}

func (r *paymentRepository) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("status = ?", status).
		Order("due_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return out, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"status": status, "updated_at": at})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) SumTotal(ctx context.Context, status models.PaymentStatus, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status = ? AND payment_date >= ? AND payment_date < ?", status, from, to).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}
