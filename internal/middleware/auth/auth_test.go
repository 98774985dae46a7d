package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/fraud_reporting/pkg/tokens"
)

var secret = []byte("access-secret")

func mint(t *testing.T, role string, ttl time.Duration, key []byte) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	iss := tokens.NewIssuer(key, []byte("refresh"))
	if ttl < 0 {
		iss.Now = func() time.Time { return time.Now().Add(2 * ttl) }
		ttl = -ttl
	}
	tok, _, err := iss.CreateAccessToken(tokens.Subject{ID: id.String(), Email: "a@x.io", Role: role, FirstName: "Ann"}, ttl)
	require.NoError(t, err)
	return tok, id
}

func run(t *testing.T, header string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *Principal, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Principal
	h := func(c echo.Context) error {
		seen, _ = PrincipalFrom(c)
		return c.NoContent(http.StatusOK)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return rec, seen, h(c)
}

func httpErr(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he
}

func TestRequireLogin(t *testing.T) {
	t.Parallel()
	valid, id := mint(t, tokens.RoleUser, time.Hour, secret)
	expired, _ := mint(t, tokens.RoleUser, -time.Hour, secret)
	forged, _ := mint(t, tokens.RoleUser, time.Hour, []byte("other"))

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "No token provided"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "No token provided"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "No token provided"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "Token is not valid"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token is not valid"},
		{"forged", "Bearer " + forged, http.StatusUnauthorized, "Token is not valid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := run(t, tc.header, RequireLogin(secret))
			he := httpErr(t, err)
			assert.Equal(t, tc.status, he.Code)
			assert.Equal(t, tc.message, he.Message)
		})
	}

	rec, p, err := run(t, "Bearer "+valid, RequireLogin(secret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, p)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, tokens.RoleUser, p.Role)
	assert.Equal(t, "a@x.io", p.Email)
	assert.Equal(t, "Ann", p.FirstName)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()
	user, _ := mint(t, tokens.RoleUser, time.Hour, secret)
	admin, _ := mint(t, tokens.RoleAdmin, time.Hour, secret)

	_, _, err := run(t, "Bearer "+user, RequireLogin(secret), RequireRole(tokens.RoleAdmin))
	he := httpErr(t, err)
	assert.Equal(t, http.StatusForbidden, he.Code)
	assert.Equal(t, "Access denied", he.Message)

	rec, p, err := run(t, "Bearer "+admin, RequireLogin(secret), RequireRole(tokens.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tokens.RoleAdmin, p.Role)

	_, _, err = run(t, "", RequireRole(tokens.RoleUser))
	assert.Equal(t, http.StatusUnauthorized, httpErr(t, err).Code)
}
