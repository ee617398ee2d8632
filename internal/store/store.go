// Package store persists accounts and transactions in SQLite through
// gorm, implementing the sync collaborator contracts.
package store

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/reconcile"
)

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&userRow{}, &accountRow{}, &transactionRow{}).Error; err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureUser finds or creates the user with the given name.
func (s *Store) EnsureUser(name string) (*model.User, error) {
	var row userRow
	err := s.db.Where("name = ?", name).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		row = userRow{Name: name}
		if err := s.db.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("creating user: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &model.User{ID: row.ID, Name: row.Name}, nil
}

// FetchAccount returns the stored account for (userID, accountNumber),
// or nil when none exists.
func (s *Store) FetchAccount(userID int, accountNumber string) (*model.Account, error) {
	var row accountRow
	err := s.db.Where("user_id = ? AND account_number = ?", userID, accountNumber).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching account %s: %w", accountNumber, err)
	}

	acct, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// SaveAccount creates or updates an account and writes the assigned id
// back onto acct.
func (s *Store) SaveAccount(acct *model.Account) error {
	row, err := accountToRow(acct)
	if err != nil {
		return err
	}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("saving account %s: %w", acct.AccountNumber, err)
	}
	acct.ID = row.ID
	return nil
}

// AccountsForUser returns every account the user holds.
func (s *Store) AccountsForUser(userID int) ([]model.Account, error) {
	var rows []accountRow
	if err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}

	accts := make([]model.Account, 0, len(rows))
	for _, row := range rows {
		acct, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		accts = append(accts, acct)
	}
	return accts, nil
}

// PendingForAccount returns the account's transactions still pending.
func (s *Store) PendingForAccount(accountID int) ([]model.Transaction, error) {
	return s.transactions(accountID, string(model.StatusPending))
}

// TransactionsForAccount returns every stored transaction of an account.
func (s *Store) TransactionsForAccount(accountID int) ([]model.Transaction, error) {
	return s.transactions(accountID, "")
}

func (s *Store) transactions(accountID int, status string) ([]model.Transaction, error) {
	q := s.db.Where("account_id = ?", accountID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []transactionRow
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}

	txns := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// ApplyBatch applies a sync batch inside one database transaction, so a
// failure never leaves an account half-updated. Updates keep the row's
// persisted id; discards touch nothing. The full stored set is returned.
func (s *Store) ApplyBatch(accountID int, batch reconcile.Batch) ([]model.Transaction, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	for _, up := range batch.Updates {
		row, err := transactionToRow(up, accountID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Save(&row).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("updating transaction %d: %w", up.ID, err)
		}
	}

	for _, ins := range batch.Inserts {
		row, err := transactionToRow(ins, accountID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		row.ID = 0
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("inserting transaction %q: %w", ins.UID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing batch: %w", err)
	}

	return s.TransactionsForAccount(accountID)
}

// SetAlias updates an account's user-editable alias.
func (s *Store) SetAlias(accountID int, alias string) error {
	err := s.db.Model(&accountRow{}).Where("id = ?", accountID).Update("alias", alias).Error
	if err != nil {
		return fmt.Errorf("updating alias: %w", err)
	}
	return nil
}
