package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fraud_reporting/internal/repo"
	"github.com/Skotchmaster/fraud_reporting/internal/service"
	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) Panel(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Welcome to the Admin Panel",
		"admin":   p,
	})
}

func (h *AdminHTTP) AllUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_all_users")

	users, err := h.Svc.Users(ctx)
	if err != nil {
		return fail(l, "all_users_error", err, "Failed to fetch users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) SearchUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_search_user")

	users, err := h.Svc.SearchUsers(ctx, repo.UserSearch{
		Email:     c.QueryParam("email"),
		FirstName: c.QueryParam("firstName"),
		LastName:  c.QueryParam("lastName"),
	})
	if err != nil {
		return fail(l, "search_user_error", err, "User search failed")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) FilterTransactions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_transactions_filter")

	q := c.QueryParams()
	p := service.FilterParams{
		Email:           q.Get("email"),
		FirstName:       q.Get("firstName"),
		LastName:        q.Get("lastName"),
		UserID:          q.Get("userId"),
		TransactionType: q.Get("transactionType"),
		MinAmount:       q.Get("minAmount"),
		MaxAmount:       q.Get("maxAmount"),
		StartDate:       q.Get("startDate"),
		EndDate:         q.Get("endDate"),
		City:            q.Get("city"),
	}
	if q.Has("isFraud") {
		v := q.Get("isFraud")
		p.IsFraud = &v
	}

	txs, err := h.Svc.FilterTransactions(ctx, p)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("filter_error", "status", 404, "reason", "no matching users")
			return echo.NewHTTPError(http.StatusNotFound, "No matching users found")
		}
		return fail(l, "filter_error", err, "Server error during filtering")
	}
	return c.JSON(http.StatusOK, txs)
}

func (h *AdminHTTP) Statistics(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_statistics")

	s, err := h.Svc.Statistics(ctx)
	if err != nil {
		return fail(l, "statistics_error", err, "Error fetching summary stats")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminHTTP) SearchTransactions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_transactions_search")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	res, err := h.Svc.SearchTransactions(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_error", err, "Search failed")
	}
	return c.JSON(http.StatusOK, res)
}
