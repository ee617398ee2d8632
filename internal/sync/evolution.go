package sync

import (
	"fmt"

	"github.com/banksync-dev/banksync/internal/balance"
)

// BalanceEvolutions computes the daily balance series for every account
// the current user holds. Read-only; a run never mutates the store.
func (s *Service) BalanceEvolutions() ([]balance.Evolution, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}

	accts, err := s.accounts.AccountsForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}

	evolutions := make([]balance.Evolution, 0, len(accts))
	for _, acct := range accts {
		known, err := s.txns.TransactionsForAccount(acct.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching transactions for %s: %w", acct.AccountNumber, err)
		}
		ev, err := balance.Compute(s.accountInfo(&acct, known), known)
		if err != nil {
			return nil, fmt.Errorf("computing evolution for %s: %w", acct.AccountNumber, err)
		}
		evolutions = append(evolutions, ev)
	}
	return evolutions, nil
}
