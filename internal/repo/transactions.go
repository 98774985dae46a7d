package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
)

// TransactionFilter is a conjunction of optional criteria. A non-nil UserIDs
// restricts results to those owners, an empty non-nil slice matches nothing.
type TransactionFilter struct {
	UserIDs         []uuid.UUID
	TransactionType string
	MinAmount       *float64
	MaxAmount       *float64
	Start           *time.Time
	End             *time.Time
	IsFraud         *bool
	City            string
}

func (r *GormRepo) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return translate(r.DB.WithContext(ctx).Create(tx).Error)
}

func (r *GormRepo) TransactionIDExists(ctx context.Context, transactionID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CountUserFrauds(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND is_fraud = ?", userID, true).
		Count(&n).Error
	return n, err
}

func (r *GormRepo) CountUserTransactions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *GormRepo) ListUserTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("transaction_time DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) RecentUserTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *GormRepo) FilterTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return []models.Transaction{}, nil
	}

	q := r.DB.WithContext(ctx).Model(&models.Transaction{})
	if f.UserIDs != nil {
		q = q.Where("user_id IN ?", f.UserIDs)
	}
	if f.TransactionType != "" {
		q = q.Where("transaction_type = ?", f.TransactionType)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.Start != nil {
		q = q.Where("transaction_time >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("transaction_time <= ?", *f.End)
	}
	if f.IsFraud != nil {
		q = q.Where("is_fraud = ?", *f.IsFraud)
	}
	if f.City != "" {
		q = whereContainsFold(q, "city", f.City)
	}

	var out []models.Transaction
	if err := q.Preload("User").Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
