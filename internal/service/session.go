package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/fraud_reporting/internal/events"
	"github.com/Skotchmaster/fraud_reporting/internal/models"
	"github.com/Skotchmaster/fraud_reporting/internal/repo"
	pkg_hash "github.com/Skotchmaster/fraud_reporting/pkg/hash"
	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
	"github.com/Skotchmaster/fraud_reporting/pkg/tokens"
)

type IdentityStore interface {
	Create(ctx context.Context, ident *models.Identity) error
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	FindByRefreshToken(ctx context.Context, token string) (*models.Identity, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
}

// Policy is what differs between the user and the admin session.
type Policy struct {
	Role       string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	CookieName string
}

func UserPolicy(accessTTL, refreshTTL time.Duration) Policy {
	return Policy{Role: tokens.RoleUser, AccessTTL: accessTTL, RefreshTTL: refreshTTL, CookieName: "UserrefreshToken"}
}

func AdminPolicy(accessTTL, refreshTTL time.Duration) Policy {
	return Policy{Role: tokens.RoleAdmin, AccessTTL: accessTTL, RefreshTTL: refreshTTL, CookieName: "AdminrefreshToken"}
}

type SessionService struct {
	Store  IdentityStore
	Tokens *tokens.Issuer
	Policy Policy
	Events events.Publisher
}

type Session struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Identity     *models.Identity
}

func (s *SessionService) subject(ident *models.Identity) tokens.Subject {
	return tokens.Subject{
		ID:        ident.ID.String(),
		Email:     ident.Email,
		Role:      s.Policy.Role,
		FirstName: ident.FirstName,
		LastName:  ident.LastName,
	}
}

func (s *SessionService) mint(ident *models.Identity) (*Session, error) {
	sub := s.subject(ident)
	access, accessExp, err := s.Tokens.CreateAccessToken(sub, s.Policy.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access: %w", err)
	}
	refresh, refreshExp, err := s.Tokens.CreateRefreshToken(sub, s.Policy.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh: %w", err)
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		Identity:     ident,
	}, nil
}

func (s *SessionService) publish(ctx context.Context, typ string, id uuid.UUID) {
	if s.Events == nil {
		return
	}
	ev := events.Event{Type: typ, Role: s.Policy.Role, UserID: id.String(), At: time.Now().UTC()}
	if err := s.Events.PublishEvent(ctx, events.TopicUserEvents, id.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "event", typ, "error", err)
	}
}

func (s *SessionService) Register(ctx context.Context, in SignupInput) (*models.Identity, error) {
	l := logging.FromContext(ctx).With("svc", s.Policy.Role+".register")

	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	exists, err := s.Store.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: lookup: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("register %s: %w", in.Email, ErrConflict)
	}

	pwHash, err := pkg_hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	ident := &models.Identity{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: pwHash,
	}
	if err := s.Store.Create(ctx, ident); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("register %s: %w", in.Email, ErrConflict)
		}
		return nil, fmt.Errorf("register: create: %w", err)
	}

	l.Info("registered", "id", ident.ID)
	s.publish(ctx, events.TypeUserRegistered, ident.ID)
	return ident, nil
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	l := logging.FromContext(ctx).With("svc", s.Policy.Role+".login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("login: %w", invalid("Email and password are required"))
	}

	ident, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("login: unknown email: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("login: lookup: %w", err)
	}
	if !pkg_hash.CheckPassword(ident.PasswordHash, password) {
		return nil, fmt.Errorf("login: password mismatch: %w", ErrInvalidCredentials)
	}

	sess, err := s.mint(ident)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetRefreshToken(ctx, ident.ID, &sess.RefreshToken); err != nil {
		return nil, fmt.Errorf("login: store refresh: %w", err)
	}

	l.Info("logged_in", "id", ident.ID)
	s.publish(ctx, events.TypeUserLoggedIn, ident.ID)
	return sess, nil
}

// Refresh rotates the presented refresh token. The old token stops working
// the moment the new one is stored. The equality check and the write are
// separate statements, so two concurrent refreshes with the same token can
// both succeed and the last write wins.
func (s *SessionService) Refresh(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("refresh: %w", ErrMissingToken)
	}

	claims, err := s.Tokens.ParseRefresh(token)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w: %w", ErrInvalidToken, err)
	}
	if claims.Role != s.Policy.Role {
		return nil, fmt.Errorf("refresh: role %q: %w", claims.Role, ErrInvalidToken)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("refresh: subject: %w", ErrInvalidToken)
	}

	ident, err := s.Store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("refresh: unknown principal: %w", ErrInvalidToken)
		}
		return nil, fmt.Errorf("refresh: lookup: %w", err)
	}
	if ident.RefreshToken == nil || *ident.RefreshToken != token {
		return nil, fmt.Errorf("refresh: %w", ErrStaleToken)
	}

	sess, err := s.mint(ident)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetRefreshToken(ctx, ident.ID, &sess.RefreshToken); err != nil {
		return nil, fmt.Errorf("refresh: store: %w", err)
	}
	return sess, nil
}

func (s *SessionService) LogOut(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("logout: %w", ErrMissingToken)
	}

	ident, err := s.Store.FindByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("logout: %w", ErrInvalidToken)
		}
		return fmt.Errorf("logout: lookup: %w", err)
	}
	if err := s.Store.SetRefreshToken(ctx, ident.ID, nil); err != nil {
		return fmt.Errorf("logout: clear: %w", err)
	}
	logging.FromContext(ctx).Info("logged_out", "svc", s.Policy.Role+".logout", "id", ident.ID)
	return nil
}
