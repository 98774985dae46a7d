package httpserver

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fraud_reporting/internal/export"
	"github.com/Skotchmaster/fraud_reporting/internal/middleware/auth"
	"github.com/Skotchmaster/fraud_reporting/internal/service"
	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
)

type UserHTTP struct {
	Users        *service.UserService
	Transactions *service.TransactionService
}

func principal(c echo.Context) (*auth.Principal, error) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
	}
	return p, nil
}

func (h *UserHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_profile")
	p, err := principal(c)
	if err != nil {
		return err
	}

	u, err := h.Users.Profile(ctx, p.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("profile_error", "status", 404, "reason", "user not found")
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return fail(l, "profile_error", err, "Internal Server Error")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_profile_update")
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req service.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return badBody(l, "profile_update_error", err)
	}

	u, err := h.Users.UpdateProfile(ctx, p.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("profile_update_error", "status", 404, "reason", "user not found")
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return fail(l, "profile_update_error", err, "Internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

func (h *UserHTTP) SubmitTransaction(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_form_transaction")
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req service.TransactionInput
	if err := c.Bind(&req); err != nil {
		return badBody(l, "submit_error", err)
	}

	out, err := h.Transactions.Submit(ctx, p.ID, req)
	if err != nil {
		return fail(l, "submit_error", err, "Server error while reporting transaction")
	}

	l.Info("submit_successful", "transaction_id", out.Transaction.TransactionID, "is_fraud", out.Transaction.IsFraud, "blocked", out.Blocked)
	return c.JSON(http.StatusCreated, echo.Map{"message": "Transaction reported successfully"})
}

func (h *UserHTTP) ListTransactions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_transactions")
	p, err := principal(c)
	if err != nil {
		return err
	}

	txs, err := h.Users.Transactions(ctx, p.ID)
	if err != nil {
		return fail(l, "transactions_error", err, "Server error fetching transactions")
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

func (h *UserHTTP) DownloadTransactions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_download_transactions")
	p, err := principal(c)
	if err != nil {
		return err
	}

	rows, err := h.Users.ExportRows(ctx, p.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("download_error", "status", 404, "reason", "no transactions")
			return echo.NewHTTPError(http.StatusNotFound, "No transactions found")
		}
		return fail(l, "download_error", err, "Error downloading transactions")
	}

	var buf bytes.Buffer
	if err := export.WriteTransactions(&buf, rows); err != nil {
		return fail(l, "download_error", err, "Error downloading transactions")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.TransactionsFilename+`"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *UserHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_dashboard")
	p, err := principal(c)
	if err != nil {
		return err
	}

	d, err := h.Users.Dashboard(ctx, p.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("dashboard_error", "status", 404, "reason", "user not found")
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return fail(l, "dashboard_error", err, "Error fetching dashboard data")
	}
	return c.JSON(http.StatusOK, d)
}
