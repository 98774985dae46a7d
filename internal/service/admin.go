package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
	"github.com/Skotchmaster/fraud_reporting/internal/repo"
	"github.com/Skotchmaster/fraud_reporting/internal/search"
	"github.com/Skotchmaster/fraud_reporting/internal/util"
)

type AdminStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SearchUsers(ctx context.Context, s repo.UserSearch) ([]models.User, error)
	MatchUserIDs(ctx context.Context, s repo.UserSearch) ([]uuid.UUID, error)
	FilterTransactions(ctx context.Context, f repo.TransactionFilter) ([]models.Transaction, error)
	Totals(ctx context.Context, since time.Time) (*repo.Totals, error)
}

type TransactionSearcher interface {
	SearchTransactions(ctx context.Context, query string, from, size int) (int64, []search.TransactionDoc, error)
}

type AdminService struct {
	Store    AdminStore
	Searcher TransactionSearcher
	Now      func() time.Time
}

func (s *AdminService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) SearchUsers(ctx context.Context, q repo.UserSearch) ([]models.User, error) {
	users, err := s.Store.SearchUsers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// FilterParams are the raw query values of the advanced transaction filter.
type FilterParams struct {
	Email           string
	FirstName       string
	LastName        string
	UserID          string
	TransactionType string
	MinAmount       string
	MaxAmount       string
	StartDate       string
	EndDate         string
	IsFraud         *string
	City            string
}

var filterDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly}

func parseFilterDate(field, v string) (time.Time, error) {
	for _, layout := range filterDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalid("Invalid " + field)
}

func parseAmount(field, v string) (*float64, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, invalid("Invalid " + field)
	}
	f := d.InexactFloat64()
	return &f, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

func (p FilterParams) toFilter() (repo.TransactionFilter, repo.UserSearch, error) {
	var f repo.TransactionFilter
	who := repo.UserSearch{
		Email:     strings.TrimSpace(p.Email),
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
	}

	if id := strings.TrimSpace(p.UserID); id != "" {
		uid, err := uuid.Parse(id)
		if err != nil {
			return f, who, invalid("Invalid userId")
		}
		f.UserIDs = []uuid.UUID{uid}
		who = repo.UserSearch{}
	}

	f.TransactionType = strings.TrimSpace(p.TransactionType)
	f.City = strings.TrimSpace(p.City)

	if v := strings.TrimSpace(p.MinAmount); v != "" {
		a, err := parseAmount("minAmount", v)
		if err != nil {
			return f, who, err
		}
		f.MinAmount = a
	}
	if v := strings.TrimSpace(p.MaxAmount); v != "" {
		a, err := parseAmount("maxAmount", v)
		if err != nil {
			return f, who, err
		}
		f.MaxAmount = a
	}
	if v := strings.TrimSpace(p.StartDate); v != "" {
		t, err := parseFilterDate("startDate", v)
		if err != nil {
			return f, who, err
		}
		f.Start = &t
	}
	if v := strings.TrimSpace(p.EndDate); v != "" {
		t, err := parseFilterDate("endDate", v)
		if err != nil {
			return f, who, err
		}
		end := endOfDay(t)
		f.End = &end
	}
	if p.IsFraud != nil {
		fraud := *p.IsFraud == "true"
		f.IsFraud = &fraud
	}
	return f, who, nil
}

// FilterTransactions applies every given criterion. Identity criteria are
// resolved to user ids first and a miss there is ErrNotFound.
func (s *AdminService) FilterTransactions(ctx context.Context, p FilterParams) ([]models.Transaction, error) {
	f, who, err := p.toFilter()
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}

	if f.UserIDs == nil && !who.Empty() {
		ids, err := s.Store.MatchUserIDs(ctx, who)
		if err != nil {
			return nil, fmt.Errorf("filter transactions: match users: %w", err)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("filter transactions: no matching users: %w", ErrNotFound)
		}
		f.UserIDs = ids
	}

	txs, err := s.Store.FilterTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}
	return txs, nil
}

type StatsSummary struct {
	TotalUsers           int64            `json:"totalUsers"`
	TotalTransactions    int64            `json:"totalTransactions"`
	TotalFrauds          int64            `json:"totalFrauds"`
	FraudRate            string           `json:"fraudRate"`
	TransactionsByCity   []repo.CityCount `json:"transactionsByCity"`
	TransactionsByType   []repo.TypeCount `json:"transactionsByType"`
	Tx24h                int64            `json:"tx24h"`
	AvgTxPerUser         string           `json:"avgTxPerUser"`
	BlockedUsers         int64            `json:"blockedUsers"`
	AvgTransactionAmount string           `json:"avgTransactionAmount"`
}

func ratio(num, den int64) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(den))
}

// Statistics recomputes the summary from the store on every call.
func (s *AdminService) Statistics(ctx context.Context) (*StatsSummary, error) {
	t, err := s.Store.Totals(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &StatsSummary{
		TotalUsers:           t.Users,
		TotalTransactions:    t.Transactions,
		TotalFrauds:          t.Frauds,
		FraudRate:            ratio(t.Frauds, t.Transactions).Mul(decimal.NewFromInt(100)).StringFixed(2),
		TransactionsByCity:   t.ByCity,
		TransactionsByType:   t.ByType,
		Tx24h:                t.Since,
		AvgTxPerUser:         ratio(t.Transactions, t.DistinctSpenders).StringFixed(0),
		BlockedUsers:         t.BlockedUsers,
		AvgTransactionAmount: decimal.NewFromFloat(t.AverageAmount).StringFixed(2),
	}, nil
}

type SearchPage struct {
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Size  int                     `json:"size"`
	Items []search.TransactionDoc `json:"items"`
}

func (s *AdminService) SearchTransactions(ctx context.Context, query string, page, size int) (*SearchPage, error) {
	if s.Searcher == nil {
		return nil, fmt.Errorf("search transactions: %w", ErrSearchDisabled)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search transactions: %w", invalid("Query is required"))
	}
	from, limit := util.Calculate(page, size)
	total, docs, err := s.Searcher.SearchTransactions(ctx, query, from, limit)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	if page < 1 {
		page = 1
	}
	return &SearchPage{Total: total, Page: page, Size: limit, Items: docs}, nil
}
