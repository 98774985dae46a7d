package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fraud_reporting/internal/dbtest"
	"github.com/Skotchmaster/fraud_reporting/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, first, last, email string) models.User {
	t.Helper()
	u := models.User{Identity: models.Identity{FirstName: first, LastName: last, Email: email, PasswordHash: "x"}}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedTx(t *testing.T, db *gorm.DB, userID uuid.UUID, id, typ, city string, amount float64, fraud bool, at time.Time) models.Transaction {
	t.Helper()
	tx := models.Transaction{
		UserID:          userID,
		TransactionID:   id,
		TransactionTime: at.UTC(),
		CCNum:           "************1111",
		TransactionType: typ,
		Amount:          amount,
		City:            city,
		IsFraud:         fraud,
		FraudReason:     []string{},
	}
	require.NoError(t, db.Create(&tx).Error)
	return tx
}

func ptr[T any](v T) *T { return &v }

func TestIdentityRepo_SeparateTables(t *testing.T) {
	t.Parallel()
	db := dbtest.New(t)
	ctx := context.Background()
	users := NewUserIdentities(db)
	admins := NewAdminIdentities(db)

	ident := &models.Identity{FirstName: "Alice", LastName: "Smith", Email: "a@x.io", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, ident))
	require.NotEqual(t, uuid.Nil, ident.ID)

	got, err := users.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, ident.ID, got.ID)

	_, err = admins.FindByEmail(ctx, "a@x.io")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := users.EmailExists(ctx, "a@x.io")
	require.NoError(t, err)
	assert.True(t, exists)

	var u models.User
	require.NoError(t, db.Take(&u, "id = ?", ident.ID).Error)
	assert.False(t, u.IsBlocked)
}

func TestIdentityRepo_DuplicateEmail(t *testing.T) {
	t.Parallel()
	db := dbtest.New(t)
	ctx := context.Background()
	users := NewUserIdentities(db)

	require.NoError(t, users.Create(ctx, &models.Identity{FirstName: "Ann", LastName: "Lee", Email: "d@x.io", PasswordHash: "h"}))
	err := users.Create(ctx, &models.Identity{FirstName: "Bob", LastName: "Lee", Email: "d@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestIdentityRepo_RefreshToken(t *testing.T) {
	t.Parallel()
	db := dbtest.New(t)
	ctx := context.Background()
	admins := NewAdminIdentities(db)

	ident := &models.Identity{FirstName: "Root", LastName: "Admin", Email: "r@x.io", PasswordHash: "h"}
	require.NoError(t, admins.Create(ctx, ident))

	require.NoError(t, admins.SetRefreshToken(ctx, ident.ID, ptr("tok-1")))
	got, err := admins.FindByRefreshToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, ident.ID, got.ID)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "tok-1", *got.RefreshToken)

	require.NoError(t, admins.SetRefreshToken(ctx, ident.ID, nil))
	_, err = admins.FindByRefreshToken(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = admins.FindByID(ctx, ident.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)

	assert.ErrorIs(t, admins.SetRefreshToken(ctx, uuid.New(), ptr("x")), ErrNotFound)
}

func TestGormRepo_Users(t *testing.T) {
	t.Parallel()
	db := dbtest.New(t)
	ctx := context.Background()
	r := &GormRepo{DB: db}

	alice := seedUser(t, db, "Alice", "Johnson", "alice@x.io")
	seedUser(t, db, "Bob", "Johns_on", "bob@x.io")

	got, err := r.SearchUsers(ctx, UserSearch{FirstName: "ALI"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alice.ID, got[0].ID)

	got, err = r.SearchUsers(ctx, UserSearch{Email: " ALICE@X.io "})
	require.NoError(t, err)
	require.Len(t, got, 1, "email is matched in its stored lowercase form")
	assert.Equal(t, alice.ID, got[0].ID)

	got, err = r.SearchUsers(ctx, UserSearch{Email: "alice@x"})
	require.NoError(t, err)
	assert.Empty(t, got, "email match is exact")

	ids, err := r.MatchUserIDs(ctx, UserSearch{Email: "Bob@X.IO"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	assert.True(t, UserSearch{Email: "  ", FirstName: " "}.Empty())

	got, err = r.SearchUsers(ctx, UserSearch{LastName: "hn_o"})
	require.NoError(t, err)
	assert.Empty(t, got, "underscore is literal")

	ids, err = r.MatchUserIDs(ctx, UserSearch{LastName: "JOHNS"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	ids, err = r.MatchUserIDs(ctx, UserSearch{Email: "bob@x.io", LastName: "smith"})
	require.NoError(t, err)
	assert.Empty(t, ids)

	updated, err := r.UpdateUserNames(ctx, alice.ID, "", "Brown")
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "Brown", updated.LastName)

	require.NoError(t, r.BlockUser(ctx, alice.ID))
	u, err := r.FindUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, u.IsBlocked)

	_, err = r.FindUser(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepo_FilterTransactions(t *testing.T) {
	t.Parallel()
	db := dbtest.New(t)
	ctx := context.Background()
	r := &GormRepo{DB: db}

	u1 := seedUser(t, db, "Alice", "Smith", "a@x.io")
	u2 := seedUser(t, db, "Bob", "Stone", "b@x.io")
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	seedTx(t, db, u1.ID, "t1", "online", "New York", 50, false, day.Add(9*time.Hour))
	seedTx(t, db, u1.ID, "t2", "pos", "Boston", 100, true, day.Add(23*time.Hour+30*time.Minute))
	seedTx(t, db, u2.ID, "t3", "online", "new york", 200, true, day.Add(48*time.Hour))

	endOfDay := day.Add(24*time.Hour - time.Millisecond)

	cases := []struct {
		name string
		f    TransactionFilter
		want []string
	}{
		{"no filter newest first", TransactionFilter{}, []string{"t3", "t2", "t1"}},
		{"amount inclusive", TransactionFilter{MinAmount: ptr(50.0), MaxAmount: ptr(100.0)}, []string{"t2", "t1"}},
		{"fraud only", TransactionFilter{IsFraud: ptr(true)}, []string{"t3", "t2"}},
		{"city case insensitive", TransactionFilter{City: "YORK"}, []string{"t3", "t1"}},
		{"type", TransactionFilter{TransactionType: "pos"}, []string{"t2"}},
		{"end of day inclusive", TransactionFilter{Start: &day, End: &endOfDay}, []string{"t2", "t1"}},
		{"owner restricted", TransactionFilter{UserIDs: []uuid.UUID{u2.ID}}, []string{"t3"}},
		{"empty owner set", TransactionFilter{UserIDs: []uuid.UUID{}}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.FilterTransactions(ctx, tc.f)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, tx := range got {
				ids = append(ids, tx.TransactionID)
				require.NotNil(t, tx.User)
				assert.Equal(t, tx.UserID, tx.User.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestGormRepo_UserTransactions(t *testing.T) {
	t.Parallel()
	db := dbtest.New(t)
	ctx := context.Background()
	r := &GormRepo{DB: db}

	u := seedUser(t, db, "Alice", "Smith", "a@x.io")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	seedTx(t, db, u.ID, "old", "pos", "Paris", 1, true, base)
	seedTx(t, db, u.ID, "new", "pos", "Paris", 1, false, base.Add(time.Hour))
	seedTx(t, db, u.ID, "mid", "pos", "Paris", 1, true, base.Add(30*time.Minute))

	list, err := r.ListUserTransactions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].TransactionID)
	assert.Equal(t, "mid", list[1].TransactionID)
	assert.Equal(t, "old", list[2].TransactionID)

	recent, err := r.RecentUserTransactions(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "mid", recent[0].TransactionID, "recent is by creation order")

	frauds, err := r.CountUserFrauds(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, frauds)

	exists, err := r.TransactionIDExists(ctx, "mid")
	require.NoError(t, err)
	assert.True(t, exists)

	err = r.CreateTransaction(ctx, &models.Transaction{UserID: u.ID, TransactionID: "mid", TransactionTime: base, CCNum: "1", TransactionType: "pos", Amount: 1, City: "Paris"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGormRepo_Totals(t *testing.T) {
	t.Parallel()
	db := dbtest.New(t)
	ctx := context.Background()
	r := &GormRepo{DB: db}

	empty, err := r.Totals(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, empty.Transactions)
	assert.Zero(t, empty.AverageAmount)
	assert.Empty(t, empty.ByCity)

	u1 := seedUser(t, db, "Alice", "Smith", "a@x.io")
	u2 := seedUser(t, db, "Bob", "Stone", "b@x.io")
	seedUser(t, db, "Carl", "Idle", "c@x.io")
	require.NoError(t, r.BlockUser(ctx, u2.ID))

	now := time.Now().UTC()
	seedTx(t, db, u1.ID, "t1", "online", "Paris", 10, false, now)
	seedTx(t, db, u1.ID, "t2", "online", "Paris", 20, true, now)
	seedTx(t, db, u2.ID, "t3", "pos", "Rome", 30, false, now)

	tot, err := r.Totals(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, tot.Users)
	assert.EqualValues(t, 1, tot.BlockedUsers)
	assert.EqualValues(t, 3, tot.Transactions)
	assert.EqualValues(t, 1, tot.Frauds)
	assert.EqualValues(t, 3, tot.Since)
	assert.EqualValues(t, 2, tot.DistinctSpenders)
	assert.InDelta(t, 20.0, tot.AverageAmount, 1e-9)
	assert.Equal(t, []CityCount{{City: "Paris", Count: 2}, {City: "Rome", Count: 1}}, tot.ByCity)
	assert.Equal(t, []TypeCount{{Type: "online", Count: 2}, {Type: "pos", Count: 1}}, tot.ByType)
}
