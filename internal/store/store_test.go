package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/reconcile"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "banksync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func testAccount(userID int) *model.Account {
	return &model.Account{
		UserID:           userID,
		UID:              "acct-1",
		Name:             "Current Account",
		Alias:            "Current Account",
		AccountNumber:    "90123456",
		CurrentBalance:   dec("500.00"),
		AvailableBalance: dec("480.00"),
		LastSynced:       time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestEnsureUser_Idempotent(t *testing.T) {
	s := openTestStore(t)

	u1, err := s.EnsureUser("demo")
	require.NoError(t, err)
	require.NotZero(t, u1.ID)

	u2, err := s.EnsureUser("demo")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, u2.ID)
}

func TestSaveAndFetchAccount(t *testing.T) {
	s := openTestStore(t)
	u, err := s.EnsureUser("demo")
	require.NoError(t, err)

	acct := testAccount(u.ID)
	require.NoError(t, s.SaveAccount(acct))
	require.NotZero(t, acct.ID)

	got, err := s.FetchAccount(u.ID, "90123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, acct.ID, got.ID)
	assert.True(t, got.CurrentBalance.Equal(dec("500.00")))

	// Unknown account number resolves to nil, not an error.
	missing, err := s.FetchAccount(u.ID, "00000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestApplyBatch_InsertAndUpdate(t *testing.T) {
	s := openTestStore(t)
	u, err := s.EnsureUser("demo")
	require.NoError(t, err)
	acct := testAccount(u.ID)
	require.NoError(t, s.SaveAccount(acct))

	// Insert a pending transaction.
	pending := model.Transaction{
		UID:                 "p-1",
		DescriptionOriginal: "POS TESCO",
		Amount:              dec("-20.00"),
		DateAuthorization:   time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC),
		Status:              model.StatusPending,
		Flow:                model.FlowDebit,
	}
	rows, err := s.ApplyBatch(acct.ID, reconcile.Batch{Inserts: []model.Transaction{pending}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotZero(t, rows[0].ID)
	assert.False(t, rows[0].Balance.Valid)

	got, err := s.PendingForAccount(acct.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Settle it through an update batch.
	settledDay := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	up := rows[0]
	up.Status = model.StatusSettled
	up.DateSettled = &settledDay
	up.Balance = decimal.NullDecimal{Decimal: dec("480.00"), Valid: true}

	rows, err = s.ApplyBatch(acct.ID, reconcile.Batch{Updates: []model.Transaction{up}})
	require.NoError(t, err)
	require.Len(t, rows, 1, "update must not create a second row")
	assert.Equal(t, up.ID, rows[0].ID)
	assert.Equal(t, model.StatusSettled, rows[0].Status)
	assert.True(t, rows[0].Balance.Valid)
	assert.True(t, rows[0].Balance.Decimal.Equal(dec("480.00")))

	got, err = s.PendingForAccount(acct.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetAlias(t *testing.T) {
	s := openTestStore(t)
	u, err := s.EnsureUser("demo")
	require.NoError(t, err)
	acct := testAccount(u.ID)
	require.NoError(t, s.SaveAccount(acct))

	require.NoError(t, s.SetAlias(acct.ID, "Holidays"))

	got, err := s.FetchAccount(u.ID, acct.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, "Holidays", got.Alias)
}

func TestAccountsForUser_ScopedToUser(t *testing.T) {
	s := openTestStore(t)
	u1, err := s.EnsureUser("demo")
	require.NoError(t, err)
	u2, err := s.EnsureUser("other")
	require.NoError(t, err)

	a1 := testAccount(u1.ID)
	require.NoError(t, s.SaveAccount(a1))
	a2 := testAccount(u2.ID)
	a2.AccountNumber = "22222222"
	a2.UID = "acct-2"
	require.NoError(t, s.SaveAccount(a2))

	accts, err := s.AccountsForUser(u1.ID)
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, "90123456", accts[0].AccountNumber)
}
