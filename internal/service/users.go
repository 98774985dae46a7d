package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
	"github.com/Skotchmaster/fraud_reporting/internal/repo"
)

const dashboardRecent = 5

type UserStore interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUserNames(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.User, error)
	ListUserTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	RecentUserTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
	CountUserTransactions(ctx context.Context, userID uuid.UUID) (int64, error)
}

type UserService struct {
	Store UserStore
}

// OwnTransaction is the owner's view of a transaction; fraud verdict fields
// are not exposed to the owner.
type OwnTransaction struct {
	ID               uuid.UUID       `json:"id"`
	TransactionID    string          `json:"transactionId"`
	TransactionTime  time.Time       `json:"transactionTime"`
	CCNum            string          `json:"ccNum"`
	TransactionType  string          `json:"transactionType"`
	Amount           float64         `json:"amount"`
	City             string          `json:"city"`
	UserLocation     models.Location `json:"userLocation"`
	MerchantLocation models.Location `json:"merchantLocation"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func ownView(txs []models.Transaction) []OwnTransaction {
	out := make([]OwnTransaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, OwnTransaction{
			ID:               t.ID,
			TransactionID:    t.TransactionID,
			TransactionTime:  t.TransactionTime,
			CCNum:            t.CCNum,
			TransactionType:  t.TransactionType,
			Amount:           t.Amount,
			City:             t.City,
			UserLocation:     t.UserLocation,
			MerchantLocation: t.MerchantLocation,
			CreatedAt:        t.CreatedAt,
		})
	}
	return out
}

type Dashboard struct {
	RecentTransactions []OwnTransaction `json:"recentTransactions"`
	FirstName          string           `json:"firstName"`
	Total              int64            `json:"total"`
}

func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Store.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return u, nil
}

type ProfileUpdate struct {
	FirstName string `json:"firstName" validate:"omitempty,min=3,max=30"`
	LastName  string `json:"lastName" validate:"omitempty,min=3,max=30"`
}

func profileReason(verrs validator.ValidationErrors) string {
	if verrs[0].StructField() == "LastName" {
		return "Last name must be between 3 and 30 characters"
	}
	return "First name must be between 3 and 30 characters"
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" && in.LastName == "" {
		return nil, fmt.Errorf("update profile: %w", invalid("Nothing to update"))
	}
	if err := checkStruct(in, profileReason); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	u, err := s.Store.UpdateUserNames(ctx, id, in.FirstName, in.LastName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("update profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *UserService) Transactions(ctx context.Context, id uuid.UUID) ([]OwnTransaction, error) {
	txs, err := s.Store.ListUserTransactions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ownView(txs), nil
}

// ExportRows returns the owner's transactions for download, newest first.
func (s *UserService) ExportRows(ctx context.Context, id uuid.UUID) ([]models.Transaction, error) {
	txs, err := s.Store.ListUserTransactions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("export transactions: %w", ErrNotFound)
	}
	return txs, nil
}

func (s *UserService) Dashboard(ctx context.Context, id uuid.UUID) (*Dashboard, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := s.Store.RecentUserTransactions(ctx, id, dashboardRecent)
	if err != nil {
		return nil, fmt.Errorf("dashboard: recent: %w", err)
	}
	total, err := s.Store.CountUserTransactions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count: %w", err)
	}
	return &Dashboard{
		RecentTransactions: ownView(recent),
		FirstName:          u.FirstName,
		Total:              total,
	}, nil
}
