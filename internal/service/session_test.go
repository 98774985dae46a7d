package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fraud_reporting/internal/dbtest"
	"github.com/Skotchmaster/fraud_reporting/internal/events"
	"github.com/Skotchmaster/fraud_reporting/internal/repo"
	"github.com/Skotchmaster/fraud_reporting/pkg/tokens"
)

const goodPassword = "Passw0rd!"

func testIssuer() *tokens.Issuer {
	return tokens.NewIssuer([]byte("access-secret"), []byte("refresh-secret"))
}

func newSessions(db *gorm.DB, rec events.Publisher) (users, admins *SessionService) {
	iss := testIssuer()
	users = &SessionService{
		Store:  repo.NewUserIdentities(db),
		Tokens: iss,
		Policy: UserPolicy(time.Hour, 5*time.Hour),
		Events: rec,
	}
	admins = &SessionService{
		Store:  repo.NewAdminIdentities(db),
		Tokens: iss,
		Policy: AdminPolicy(time.Hour, 24*time.Hour),
		Events: rec,
	}
	return users, admins
}

func signup(email string) SignupInput {
	return SignupInput{FirstName: "Alice", LastName: "Smith", Email: email, Password: goodPassword}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	users, _ := newSessions(dbtest.New(t), &events.Recorder{})

	cases := []struct {
		name string
		in   SignupInput
	}{
		{"missing fields", SignupInput{Email: "a@x.io", Password: goodPassword}},
		{"short first name", SignupInput{FirstName: "Al", LastName: "Smith", Email: "a@x.io", Password: goodPassword}},
		{"long last name", SignupInput{FirstName: "Alice", LastName: "Abcdefghijabcdefghijabcdefghijk", Email: "a@x.io", Password: goodPassword}},
		{"bad email", SignupInput{FirstName: "Alice", LastName: "Smith", Email: "not-an-email", Password: goodPassword}},
		{"short password", SignupInput{FirstName: "Alice", LastName: "Smith", Email: "a@x.io", Password: "Pa0!"}},
		{"no symbol", SignupInput{FirstName: "Alice", LastName: "Smith", Email: "a@x.io", Password: "Passw0rdd"}},
		{"no upper", SignupInput{FirstName: "Alice", LastName: "Smith", Email: "a@x.io", Password: "passw0rd!"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := users.Register(context.Background(), tc.in)
			require.ErrorIs(t, err, ErrValidation)
			assert.NotEmpty(t, Reason(err, ""))
		})
	}
}

func TestRegister_ConflictAndNamespaces(t *testing.T) {
	t.Parallel()
	rec := &events.Recorder{}
	users, admins := newSessions(dbtest.New(t), rec)
	ctx := context.Background()

	ident, err := users.Register(ctx, signup("Alice@X.io"))
	require.NoError(t, err)
	assert.Equal(t, "alice@x.io", ident.Email)
	assert.NotEqual(t, goodPassword, ident.PasswordHash)

	_, err = users.Register(ctx, signup("alice@x.io"))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = admins.Register(ctx, signup("alice@x.io"))
	require.NoError(t, err, "admins are a separate namespace")

	assert.Equal(t, []string{events.TypeUserRegistered, events.TypeUserRegistered}, rec.Types())
}

func TestLogin(t *testing.T) {
	t.Parallel()
	rec := &events.Recorder{}
	users, admins := newSessions(dbtest.New(t), rec)
	ctx := context.Background()

	_, err := users.Register(ctx, signup("a@x.io"))
	require.NoError(t, err)

	_, err = users.Login(ctx, "", goodPassword)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.Login(ctx, "a@x.io", "Wrong0ne!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Login(ctx, "nobody@x.io", goodPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = admins.Login(ctx, "a@x.io", goodPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "user credentials do not open an admin session")

	sess, err := users.Login(ctx, " A@x.io ", goodPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(5*time.Hour), sess.RefreshExp, 5*time.Second)

	claims, err := testIssuer().ParseAccess(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleUser, claims.Role)
	assert.Equal(t, "a@x.io", claims.Email)
	assert.Equal(t, "Alice", claims.FirstName)
	assert.Equal(t, sess.Identity.ID.String(), claims.Subject)

	stored, err := users.Store.FindByID(ctx, sess.Identity.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, sess.RefreshToken, *stored.RefreshToken)

	assert.Contains(t, rec.Types(), events.TypeUserLoggedIn)
}

func TestRefresh_Rotation(t *testing.T) {
	t.Parallel()
	users, admins := newSessions(dbtest.New(t), &events.Recorder{})
	ctx := context.Background()

	_, err := users.Register(ctx, signup("a@x.io"))
	require.NoError(t, err)
	first, err := users.Login(ctx, "a@x.io", goodPassword)
	require.NoError(t, err)

	second, err := users.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = users.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrStaleToken, "rotated token is single use")

	third, err := users.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)

	_, err = admins.Refresh(ctx, third.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "user token is not an admin token")
}

// interleavedStore runs before once, right before the first refresh token
// write reaches the store.
type interleavedStore struct {
	IdentityStore
	once   sync.Once
	before func()
}

func (s *interleavedStore) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	if token != nil {
		s.once.Do(s.before)
	}
	return s.IdentityStore.SetRefreshToken(ctx, id, token)
}

func TestRefresh_ConcurrentRotationLastWriteWins(t *testing.T) {
	t.Parallel()
	db := dbtest.New(t)
	users, _ := newSessions(db, nil)
	ctx := context.Background()

	_, err := users.Register(ctx, signup("a@x.io"))
	require.NoError(t, err)
	login, err := users.Login(ctx, "a@x.io", goodPassword)
	require.NoError(t, err)

	store := &interleavedStore{IdentityStore: users.Store}
	racing := *users
	racing.Store = store

	var inner *Session
	store.before = func() {
		var innerErr error
		inner, innerErr = users.Refresh(ctx, login.RefreshToken)
		require.NoError(t, innerErr)
	}

	outer, err := racing.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err, "both refreshes passed the equality check")
	require.NotNil(t, inner)
	assert.NotEqual(t, inner.RefreshToken, outer.RefreshToken)

	stored, err := repo.NewUserIdentities(db).FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, outer.RefreshToken, *stored.RefreshToken, "last write wins")

	_, err = users.Refresh(ctx, inner.RefreshToken)
	assert.ErrorIs(t, err, ErrStaleToken)
}

func TestRefresh_BadInput(t *testing.T) {
	t.Parallel()
	users, _ := newSessions(dbtest.New(t), nil)
	ctx := context.Background()

	_, err := users.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = users.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, _, err := testIssuer().CreateAccessToken(tokens.Subject{ID: "x", Role: tokens.RoleUser}, time.Hour)
	require.NoError(t, err)
	_, err = users.Refresh(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken, "access token signed with the other secret")

	ghost, _, err := testIssuer().CreateRefreshToken(tokens.Subject{ID: "6f1c1a8e-3f4b-4a57-9a55-1d3f0c9f8b11", Role: tokens.RoleUser}, time.Hour)
	require.NoError(t, err)
	_, err = users.Refresh(ctx, ghost)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogOut(t *testing.T) {
	t.Parallel()
	users, admins := newSessions(dbtest.New(t), nil)
	ctx := context.Background()

	_, err := users.Register(ctx, signup("a@x.io"))
	require.NoError(t, err)
	_, err = admins.Register(ctx, signup("a@x.io"))
	require.NoError(t, err)

	userSess, err := users.Login(ctx, "a@x.io", goodPassword)
	require.NoError(t, err)
	adminSess, err := admins.Login(ctx, "a@x.io", goodPassword)
	require.NoError(t, err)

	assert.ErrorIs(t, users.LogOut(ctx, ""), ErrMissingToken)
	assert.ErrorIs(t, users.LogOut(ctx, "unknown"), ErrInvalidToken)
	assert.ErrorIs(t, users.LogOut(ctx, adminSess.RefreshToken), ErrInvalidToken)

	require.NoError(t, users.LogOut(ctx, userSess.RefreshToken))
	_, err = users.Refresh(ctx, userSess.RefreshToken)
	assert.ErrorIs(t, err, ErrStaleToken)
	assert.ErrorIs(t, users.LogOut(ctx, userSess.RefreshToken), ErrInvalidToken)

	_, err = admins.Refresh(ctx, adminSess.RefreshToken)
	assert.NoError(t, err, "admin session unaffected by user logout")
}
