package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Skotchmaster/fraud_reporting/internal/events"
	"github.com/Skotchmaster/fraud_reporting/internal/models"
	"github.com/Skotchmaster/fraud_reporting/internal/repo"
	"github.com/Skotchmaster/fraud_reporting/internal/scoring"
	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
)

// FraudBlockThreshold is the number of fraud flagged transactions a user may
// accumulate; one more blocks the account.
const FraudBlockThreshold = 10

type Scorer interface {
	Predict(ctx context.Context, in scoring.Request) (*scoring.Verdict, error)
}

type TransactionIndexer interface {
	IndexTransaction(ctx context.Context, tx *models.Transaction) error
}

type TransactionStore interface {
	TransactionIDExists(ctx context.Context, transactionID string) (bool, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	CountUserFrauds(ctx context.Context, userID uuid.UUID) (int64, error)
	BlockUser(ctx context.Context, id uuid.UUID) error
}

type TransactionService struct {
	Store   TransactionStore
	Scorer  Scorer
	Events  events.Publisher
	Indexer TransactionIndexer
}

type LocationInput struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type TransactionInput struct {
	TransactionID    string         `json:"transactionId" validate:"required"`
	TransactionTime  string         `json:"transactionTime" validate:"required"`
	CCNum            string         `json:"ccNum" validate:"required"`
	TransactionType  string         `json:"transactionType" validate:"required"`
	Amount           float64        `json:"amount" validate:"gt=0"`
	City             string         `json:"city" validate:"required"`
	UserLocation     *LocationInput `json:"userLocation" validate:"required"`
	MerchantLocation *LocationInput `json:"merchantLocation" validate:"required"`
}

// Outcome is what Submit did with an accepted transaction.
type Outcome struct {
	Transaction *models.Transaction
	FraudCount  int64
	Blocked     bool
}

var transactionTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", scoring.WireTimeLayout}

func parseTransactionTime(v string) (time.Time, bool) {
	for _, layout := range transactionTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

const missingFields = "Missing required transaction fields"

func (in *TransactionInput) validate() (time.Time, error) {
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	in.CCNum = strings.TrimSpace(in.CCNum)
	in.TransactionType = strings.TrimSpace(in.TransactionType)
	in.City = strings.TrimSpace(in.City)
	in.TransactionTime = strings.TrimSpace(in.TransactionTime)

	if err := checkStruct(in, func(validator.ValidationErrors) string { return missingFields }); err != nil {
		return time.Time{}, err
	}
	at, ok := parseTransactionTime(in.TransactionTime)
	if !ok {
		return time.Time{}, invalid(missingFields)
	}
	return at, nil
}

func point(l *LocationInput) scoring.Point {
	var p scoring.Point
	if l == nil {
		return p
	}
	if l.Lat != nil {
		p.Lat = *l.Lat
	}
	if l.Lon != nil {
		p.Lon = *l.Lon
	}
	return p
}

func location(l *LocationInput) models.Location {
	if l == nil {
		return models.Location{}
	}
	return models.Location{Lat: l.Lat, Lon: l.Lon}
}

// MaskCardNumber keeps the last four characters and stars out the rest.
func MaskCardNumber(cc string) string {
	r := []rune(cc)
	if len(r) <= 4 {
		return cc
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

// Submit scores a transaction, stores it with the verdict and blocks the
// owner once the fraud count passes FraudBlockThreshold.
func (s *TransactionService) Submit(ctx context.Context, userID uuid.UUID, in TransactionInput) (*Outcome, error) {
	l := logging.FromContext(ctx).With("svc", "transactions.submit", "user_id", userID)

	at, err := in.validate()
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	exists, err := s.Store.TransactionIDExists(ctx, in.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("submit: lookup: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("submit %s: %w", in.TransactionID, invalid("Transaction ID already exists"))
	}

	verdict, err := s.Scorer.Predict(ctx, scoring.Request{
		TransactionID:    in.TransactionID,
		TransactionTime:  at.Format(scoring.WireTimeLayout),
		CCNum:            in.CCNum,
		TransactionType:  in.TransactionType,
		Amount:           in.Amount,
		City:             in.City,
		UserLocation:     point(in.UserLocation),
		MerchantLocation: point(in.MerchantLocation),
	})
	if err != nil {
		l.Error("scoring_error", "transaction_id", in.TransactionID, "error", err)
		return nil, fmt.Errorf("submit: %w: %w", ErrScoringUnavailable, err)
	}

	reasons := verdict.FraudReason
	if reasons == nil {
		reasons = []string{}
	}
	tx := &models.Transaction{
		UserID:           userID,
		TransactionID:    in.TransactionID,
		TransactionTime:  at,
		CCNum:            MaskCardNumber(in.CCNum),
		TransactionType:  in.TransactionType,
		Amount:           in.Amount,
		City:             in.City,
		UserLocation:     location(in.UserLocation),
		MerchantLocation: location(in.MerchantLocation),
		IsFraud:          verdict.IsFraud,
		FraudReason:      reasons,
		FraudConfidence:  verdict.Confidence,
	}
	if err := s.Store.CreateTransaction(ctx, tx); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("submit %s: %w", in.TransactionID, invalid("Transaction ID already exists"))
		}
		return nil, fmt.Errorf("submit: create: %w", err)
	}

	out := &Outcome{Transaction: tx}
	if tx.IsFraud {
		n, err := s.Store.CountUserFrauds(ctx, userID)
		if err != nil {
			return out, fmt.Errorf("submit: count frauds: %w", err)
		}
		out.FraudCount = n
		if n > FraudBlockThreshold {
			if err := s.Store.BlockUser(ctx, userID); err != nil {
				return out, fmt.Errorf("submit: block user: %w", err)
			}
			out.Blocked = true
			l.Warn("user_blocked", "fraud_count", n)
		}
	}

	s.afterPersist(ctx, out)
	l.Info("transaction_scored", "transaction_id", tx.TransactionID, "is_fraud", tx.IsFraud)
	return out, nil
}

func (s *TransactionService) afterPersist(ctx context.Context, out *Outcome) {
	l := logging.FromContext(ctx)
	tx := out.Transaction
	now := time.Now().UTC()

	if s.Events != nil {
		fraud := tx.IsFraud
		ev := events.Event{
			Type:          events.TypeTransactionScored,
			UserID:        tx.UserID.String(),
			TransactionID: tx.TransactionID,
			IsFraud:       &fraud,
			FraudCount:    out.FraudCount,
			Amount:        tx.Amount,
			At:            now,
		}
		if err := s.Events.PublishEvent(ctx, events.TopicTransactionEvents, tx.UserID.String(), ev); err != nil {
			l.Warn("publish_error", "event", ev.Type, "error", err)
		}
		if out.Blocked {
			ev := events.Event{Type: events.TypeUserBlocked, UserID: tx.UserID.String(), FraudCount: out.FraudCount, At: now}
			if err := s.Events.PublishEvent(ctx, events.TopicUserEvents, tx.UserID.String(), ev); err != nil {
				l.Warn("publish_error", "event", ev.Type, "error", err)
			}
		}
	}

	if s.Indexer != nil {
		if err := s.Indexer.IndexTransaction(ctx, tx); err != nil {
			l.Warn("index_error", "transaction_id", tx.TransactionID, "error", err)
		}
	}
}
