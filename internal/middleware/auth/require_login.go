package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
	"github.com/Skotchmaster/fraud_reporting/pkg/tokens"
)

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireLogin verifies the bearer access token. It never touches storage.
func RequireLogin(accessSecret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
			}

			claims, err := tokens.AccessClaimsFromToken(raw, accessSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid")
			}
			p, ok := principalFromClaims(claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid")
			}

			SetPrincipal(c, p)
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("principal_id", p.ID, "role", p.Role)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
			return next(c)
		}
	}
}
