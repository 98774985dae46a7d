package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/fraud_reporting/pkg/middleware/logging"
)

// New returns an echo instance with the common middleware chain installed.
func New(log *slog.Logger, corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(Common(log, corsOrigins)...)
	return e
}

func Common(log *slog.Logger, corsOrigins []string) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{
		ecM.Recover(),
		loggingmw.RequestLogger(log, "/health"),
		ecM.Secure(),
		ecM.BodyLimit("1M"),
	}
	if len(corsOrigins) > 0 {
		mws = append(mws, ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			ExposeHeaders:    []string{echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}
	return mws
}
