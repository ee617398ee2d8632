// Package sync orchestrates one synchronization run: resolve the
// account, reconcile the snapshot against stored history, persist the
// resulting batch, and refresh the account's balances.
package sync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/banksync-dev/banksync/internal/dateutil"
	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/normalize"
	"github.com/banksync-dev/banksync/internal/reconcile"
)

// ErrNoCurrentUser means the identity collaborator knows no user; the
// whole sync run is aborted, nothing is retried.
var ErrNoCurrentUser = errors.New("no current user")

// AccountStore is the persistence collaborator for accounts.
type AccountStore interface {
	// FetchAccount returns the stored account, or nil when none exists.
	FetchAccount(userID int, accountNumber string) (*model.Account, error)
	SaveAccount(acct *model.Account) error
	AccountsForUser(userID int) ([]model.Account, error)
}

// TransactionStore is the persistence collaborator for transactions.
// ApplyBatch must be atomic per account: either the whole batch lands or
// none of it does.
type TransactionStore interface {
	PendingForAccount(accountID int) ([]model.Transaction, error)
	TransactionsForAccount(accountID int) ([]model.Transaction, error)
	ApplyBatch(accountID int, batch reconcile.Batch) ([]model.Transaction, error)
}

// UserService is the identity collaborator. Current returns nil (without
// error) when no user is configured.
type UserService interface {
	Current() (*model.User, error)
}

// Service wires the collaborators around the pending analyzer.
type Service struct {
	accounts AccountStore
	txns     TransactionStore
	users    UserService
	analyzer *reconcile.Analyzer
	chain    normalize.Chain
	log      zerolog.Logger

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewService creates a sync Service.
func NewService(accounts AccountStore, txns TransactionStore, users UserService, chain normalize.Chain, log zerolog.Logger) *Service {
	return &Service{
		accounts: accounts,
		txns:     txns,
		users:    users,
		analyzer: reconcile.NewAnalyzer(),
		chain:    chain,
		log:      log,
		Now:      time.Now,
	}
}

// Outcome is the per-account result of a multi-account run.
type Outcome struct {
	AccountNumber string
	Account       *model.Account
	Err           error
}

// SyncAccounts processes every snapshot independently. One account's
// failure never aborts the others; each result is reported in order.
// Only a missing current user fails the run as a whole.
func (s *Service) SyncAccounts(snapshots []model.AccountSnapshot) ([]Outcome, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(snapshots))
	for _, snap := range snapshots {
		acct, err := s.SyncAccount(snap)
		if err != nil {
			s.log.Error().Err(err).Str("account", snap.AccountNumber).Msg("account sync failed")
		} else {
			s.log.Info().Str("account", snap.AccountNumber).Msg("account synced")
		}
		outcomes = append(outcomes, Outcome{
			AccountNumber: snap.AccountNumber,
			Account:       acct,
			Err:           err,
		})
	}
	return outcomes, nil
}

// SyncAccount reconciles one snapshot and persists the result.
func (s *Service) SyncAccount(snap model.AccountSnapshot) (*model.Account, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}

	acct, err := s.getOrCreate(user.ID, snap)
	if err != nil {
		return nil, err
	}

	knownPending, err := s.txns.PendingForAccount(acct.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching pending transactions: %w", err)
	}
	known, err := s.txns.TransactionsForAccount(acct.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}

	info := s.accountInfo(acct, known)
	freshSettled, freshPending := s.normalized(snap)

	batch := s.analyzer.Reconcile(info, knownPending, freshSettled)
	batch.Inserts = append(batch.Inserts, s.analyzer.PendingAdditions(info, knownPending, freshPending)...)

	if verrs := reconcile.ValidateBatch(batch, known); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return nil, fmt.Errorf("invalid sync batch: %s", strings.Join(msgs, "; "))
	}

	if !batch.Empty() {
		stored, err := s.txns.ApplyBatch(acct.ID, batch)
		if err != nil {
			return nil, fmt.Errorf("applying sync batch: %w", err)
		}
		acct.Transactions = stored
	}

	acct.CurrentBalance = snap.CurrentBalance
	acct.AvailableBalance = snap.AvailableBalance
	acct.LastSynced = dateutil.Day(s.Now())
	if err := s.accounts.SaveAccount(acct); err != nil {
		return nil, fmt.Errorf("saving account: %w", err)
	}

	s.log.Debug().
		Str("account", acct.AccountNumber).
		Int("inserts", len(batch.Inserts)).
		Int("updates", len(batch.Updates)).
		Int("discards", len(batch.Discards)).
		Msg("batch applied")

	return acct, nil
}

func (s *Service) currentUser() (*model.User, error) {
	user, err := s.users.Current()
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	if user == nil {
		return nil, ErrNoCurrentUser
	}
	return user, nil
}

func (s *Service) getOrCreate(userID int, snap model.AccountSnapshot) (*model.Account, error) {
	acct, err := s.accounts.FetchAccount(userID, snap.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("fetching account %s: %w", snap.AccountNumber, err)
	}
	if acct != nil {
		return acct, nil
	}

	acct = &model.Account{
		UserID: userID,
		UID:    snap.UID,
		Name:   snap.Name,
		// By default the alias is the name.
		Alias:            snap.Name,
		AccountNumber:    snap.AccountNumber,
		CurrentBalance:   snap.CurrentBalance,
		AvailableBalance: snap.AvailableBalance,
		LastSynced:       dateutil.Day(s.Now()),
	}
	if err := s.accounts.SaveAccount(acct); err != nil {
		return nil, fmt.Errorf("creating account %s: %w", snap.AccountNumber, err)
	}
	return acct, nil
}

func (s *Service) accountInfo(acct *model.Account, known []model.Transaction) model.AccountInfo {
	return model.AccountInfo{
		ID:               acct.ID,
		UID:              acct.UID,
		Name:             acct.Name,
		Alias:            acct.Alias,
		AccountNumber:    acct.AccountNumber,
		CurrentBalance:   acct.CurrentBalance,
		AvailableBalance: acct.AvailableBalance,
		LastSynced:       acct.LastSynced,
		Known:            known,
	}
}

// normalized runs the institution transformers over the snapshot's raw
// transactions and splits them by status. Flow is derived from the
// amount sign when the source omitted it.
func (s *Service) normalized(snap model.AccountSnapshot) (settled, pending []model.Transaction) {
	for _, raw := range snap.Transactions {
		t := s.chain.Transform(raw)
		if t.Flow == "" {
			t.Flow = model.FlowFromAmount(t.Amount)
		}
		if t.Status == model.StatusSettled {
			settled = append(settled, t)
		} else {
			pending = append(pending, t)
		}
	}
	return settled, pending
}
