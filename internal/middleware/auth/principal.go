package auth

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fraud_reporting/pkg/tokens"
)

const ctxPrincipal = "principal"

// Principal is the verified identity behind an access token.
type Principal struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
}

func principalFromClaims(c *tokens.AccessClaims) (*Principal, bool) {
	id, err := uuid.Parse(c.Subject)
	if err != nil || c.Role == "" {
		return nil, false
	}
	return &Principal{
		ID:        id,
		Email:     c.Email,
		Role:      c.Role,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}, true
}

// PrincipalFrom returns the principal stored by RequireLogin.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(ctxPrincipal).(*Principal)
	return p, ok && p != nil
}

func SetPrincipal(c echo.Context, p *Principal) {
	c.Set(ctxPrincipal, p)
}
