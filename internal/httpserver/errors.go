package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fraud_reporting/internal/service"
)

// fail logs err and turns it into the response for a known service error.
// Unknown errors become a 500 carrying fallback.
func fail(l *slog.Logger, event string, err error, fallback string) error {
	code, msg := http.StatusInternalServerError, fallback
	switch {
	case errors.Is(err, service.ErrValidation):
		code, msg = http.StatusBadRequest, service.Reason(err, "Invalid request")
	case errors.Is(err, service.ErrNotFound):
		code, msg = http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrScoringUnavailable):
		code, msg = http.StatusInternalServerError, "Scoring service unavailable"
	case errors.Is(err, service.ErrSearchDisabled):
		code, msg = http.StatusServiceUnavailable, "Search is not configured"
	}

	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
}
