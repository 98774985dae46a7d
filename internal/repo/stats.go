package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
)

type CityCount struct {
	City  string `gorm:"column:city" json:"city"`
	Count int64  `gorm:"column:cnt"  json:"count"`
}

type TypeCount struct {
	Type  string `gorm:"column:transaction_type" json:"type"`
	Count int64  `gorm:"column:cnt"              json:"count"`
}

// Totals holds the raw aggregates behind the admin statistics summary.
type Totals struct {
	Users            int64
	BlockedUsers     int64
	Transactions     int64
	Frauds           int64
	Since            int64
	DistinctSpenders int64
	AverageAmount    float64
	ByCity           []CityCount
	ByType           []TypeCount
}

// Totals aggregates everything in one pass per metric; Since counts
// transactions created at or after since.
func (r *GormRepo) Totals(ctx context.Context, since time.Time) (*Totals, error) {
	db := r.DB.WithContext(ctx)
	var t Totals

	if err := db.Model(&models.User{}).Count(&t.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("is_blocked = ?", true).Count(&t.BlockedUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).Count(&t.Transactions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).Where("is_fraud = ?", true).Count(&t.Frauds).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).Where("created_at >= ?", since).Count(&t.Since).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).Distinct("user_id").Count(&t.DistinctSpenders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).Select("COALESCE(AVG(amount), 0)").Row().Scan(&t.AverageAmount); err != nil {
		return nil, err
	}

	t.ByCity = []CityCount{}
	if err := db.Model(&models.Transaction{}).
		Select("city, COUNT(*) AS cnt").
		Group("city").
		Order("cnt DESC, city ASC").
		Scan(&t.ByCity).Error; err != nil {
		return nil, err
	}
	t.ByType = []TypeCount{}
	if err := db.Model(&models.Transaction{}).
		Select("transaction_type, COUNT(*) AS cnt").
		Group("transaction_type").
		Order("cnt DESC, transaction_type ASC").
		Scan(&t.ByType).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
