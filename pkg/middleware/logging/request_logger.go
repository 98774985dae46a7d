package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
)

// RequestLogger puts a request scoped logger into the request context and
// writes one line per finished request. Paths with a skipped prefix are
// served without the summary line.
func RequestLogger(base *slog.Logger, skipPrefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			l := base.With(
				"request_id", rid,
				"method", req.Method,
				"route", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			for _, p := range skipPrefixes {
				if strings.HasPrefix(req.URL.Path, p) {
					return nil
				}
			}

			status := c.Response().Status
			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			switch {
			case status >= 500:
				if err != nil {
					attrs = append(attrs, "error", err.Error())
				}
				l.Error("request_completed", attrs...)
			case status >= 400:
				l.Warn("request_completed", attrs...)
			default:
				l.Info("request_completed", append(attrs, "bytes", c.Response().Size)...)
			}
			return nil
		}
	}
}
