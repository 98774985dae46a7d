package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fraud_reporting/internal/service"
	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
)

// AuthHTTP serves the credential lifecycle of one principal kind. Label is
// "User" or "Admin" and prefixes the client facing messages.
type AuthHTTP struct {
	Svc          *service.SessionService
	Label        string
	CookieSecure bool
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", h.Svc.Policy.Role+"_signup")

	var req service.SignupInput
	if err := c.Bind(&req); err != nil {
		return badBody(l, "signup_error", err)
	}

	ident, err := h.Svc.Register(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			l.Warn("signup_error", "status", 400, "reason", "already exists")
			return echo.NewHTTPError(http.StatusBadRequest, h.Label+" already exists")
		}
		return fail(l, "signup_error", err, "Internal Server Error")
	}

	l.Info("signup_successful", "id", ident.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": h.Label + " registered successfully"})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", h.Svc.Policy.Role+"_login")

	var req credentials
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}

	sess, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_error", "status", 400, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid email or password")
		}
		return fail(l, "login_error", err, "Internal Server Error")
	}

	c.SetCookie(CreateCookie(h.Svc.Policy.CookieName, sess.RefreshToken, sess.RefreshExp, h.CookieSecure))
	l.Info("login_successful", "id", sess.Identity.ID)

	msg := "Logged in successfully"
	if h.Label != "User" {
		msg = h.Label + " logged in successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":    sess.AccessToken,
		"message": msg,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", h.Svc.Policy.Role+"_refresh")

	var raw string
	if ck, err := c.Cookie(h.Svc.Policy.CookieName); err == nil {
		raw = ck.Value
	}

	sess, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingToken):
			l.Warn("refresh_error", "status", 401, "reason", "no refresh cookie")
			return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token not found")
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrStaleToken):
			l.Warn("refresh_error", "status", 403, "reason", "rejected refresh token", "error", err)
			return echo.NewHTTPError(http.StatusForbidden, "Invalid refresh token")
		}
		return fail(l, "refresh_error", err, "Internal Server Error")
	}

	c.SetCookie(CreateCookie(h.Svc.Policy.CookieName, sess.RefreshToken, sess.RefreshExp, h.CookieSecure))
	l.Info("refresh_successful", "id", sess.Identity.ID)
	return c.JSON(http.StatusOK, echo.Map{"data": sess.AccessToken})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", h.Svc.Policy.Role+"_logout")

	var raw string
	if ck, err := c.Cookie(h.Svc.Policy.CookieName); err == nil {
		raw = ck.Value
	}

	if err := h.Svc.LogOut(ctx, raw); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingToken):
			l.Warn("logout_error", "status", 400, "reason", "no refresh cookie")
			return echo.NewHTTPError(http.StatusBadRequest, "No token provided")
		case errors.Is(err, service.ErrInvalidToken):
			l.Warn("logout_error", "status", 400, "reason", "unknown refresh token")
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid token")
		}
		return fail(l, "logout_error", err, "Internal Server Error")
	}

	c.SetCookie(DeleteCookie(h.Svc.Policy.CookieName, h.CookieSecure))
	l.Info("logout_successful")
	return c.JSON(http.StatusOK, echo.Map{"message": h.Label + " logged out successfully"})
}
