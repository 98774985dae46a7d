package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Subject is the identity a token pair is minted for.
type Subject struct {
	ID        string
	Email     string
	Role      string
	FirstName string
	LastName  string
}

type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Now           func() time.Time
}

func NewIssuer(accessSecret, refreshSecret []byte) *Issuer {
	return &Issuer{AccessSecret: accessSecret, RefreshSecret: refreshSecret, Now: time.Now}
}

func (i *Issuer) now() time.Time {
	if i.Now == nil {
		return time.Now()
	}
	return i.Now()
}

func (i *Issuer) CreateAccessToken(s Subject, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(ttl)
	claims := AccessClaims{
		Email:     s.Email,
		Role:      s.Role,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.AccessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// CreateRefreshToken always embeds a fresh jti so two tokens minted within
// the same second still differ.
func (i *Issuer) CreateRefreshToken(s Subject, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(ttl)
	claims := RefreshClaims{
		Email: s.Email,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.RefreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) ParseAccess(tokenStr string) (*AccessClaims, error) {
	return AccessClaimsFromToken(tokenStr, i.AccessSecret)
}

func (i *Issuer) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	return RefreshClaimsFromToken(tokenStr, i.RefreshSecret)
}
