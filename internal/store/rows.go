package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banksync-dev/banksync/internal/model"
)

// Database rows are kept separate from the domain types; decimals are
// stored as strings so no precision is lost in SQLite's numeric affinity.

type userRow struct {
	ID   int    `gorm:"primary_key;auto_increment"`
	Name string `gorm:"size:100;unique_index;not null"`
}

func (userRow) TableName() string { return "users" }

type accountRow struct {
	ID               int    `gorm:"primary_key;auto_increment"`
	UserID           int    `gorm:"index;not null"`
	UID              string `gorm:"size:100"`
	Name             string `gorm:"size:100;not null"`
	Alias            string `gorm:"size:100;not null"`
	AccountNumber    string `gorm:"size:34;index;not null"`
	CurrentBalance   string `gorm:"size:32;not null"`
	AvailableBalance string `gorm:"size:32;not null"`
	LastSynced       time.Time
}

func (accountRow) TableName() string { return "accounts" }

type transactionRow struct {
	ID                   int    `gorm:"primary_key;auto_increment"`
	AccountID            int    `gorm:"index;not null"`
	UID                  string `gorm:"size:100;index"`
	DescriptionOriginal  string `gorm:"size:255"`
	DescriptionProcessed string `gorm:"size:255"`
	DateAuthorization    time.Time
	DateSettled          *time.Time
	Amount               string  `gorm:"size:32;not null"`
	Balance              *string `gorm:"size:32"`
	Status               string  `gorm:"size:16;not null"`
	Flow                 string  `gorm:"size:16;not null"`
	Note                 string  `gorm:"size:255"`
	CategoryID           int
}

func (transactionRow) TableName() string { return "transactions" }

func accountToRow(acct *model.Account) (accountRow, error) {
	return accountRow{
		ID:               acct.ID,
		UserID:           acct.UserID,
		UID:              acct.UID,
		Name:             acct.Name,
		Alias:            acct.Alias,
		AccountNumber:    acct.AccountNumber,
		CurrentBalance:   acct.CurrentBalance.String(),
		AvailableBalance: acct.AvailableBalance.String(),
		LastSynced:       acct.LastSynced,
	}, nil
}

func (r accountRow) toDomain() (model.Account, error) {
	current, err := decimal.NewFromString(r.CurrentBalance)
	if err != nil {
		return model.Account{}, fmt.Errorf("account %d: bad current balance %q: %w", r.ID, r.CurrentBalance, err)
	}
	available, err := decimal.NewFromString(r.AvailableBalance)
	if err != nil {
		return model.Account{}, fmt.Errorf("account %d: bad available balance %q: %w", r.ID, r.AvailableBalance, err)
	}
	return model.Account{
		ID:               r.ID,
		UserID:           r.UserID,
		UID:              r.UID,
		Name:             r.Name,
		Alias:            r.Alias,
		AccountNumber:    r.AccountNumber,
		CurrentBalance:   current,
		AvailableBalance: available,
		LastSynced:       r.LastSynced,
	}, nil
}

func transactionToRow(t model.Transaction, accountID int) (transactionRow, error) {
	row := transactionRow{
		ID:                   t.ID,
		AccountID:            accountID,
		UID:                  t.UID,
		DescriptionOriginal:  t.DescriptionOriginal,
		DescriptionProcessed: t.DescriptionProcessed,
		DateAuthorization:    t.DateAuthorization,
		DateSettled:          t.DateSettled,
		Amount:               t.Amount.String(),
		Status:               string(t.Status),
		Flow:                 string(t.Flow),
		Note:                 t.Note,
		CategoryID:           t.CategoryID,
	}
	if t.Balance.Valid {
		b := t.Balance.Decimal.String()
		row.Balance = &b
	}
	return row, nil
}

func (r transactionRow) toDomain() (model.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d: bad amount %q: %w", r.ID, r.Amount, err)
	}

	t := model.Transaction{
		ID:                   r.ID,
		AccountID:            r.AccountID,
		UID:                  r.UID,
		DescriptionOriginal:  r.DescriptionOriginal,
		DescriptionProcessed: r.DescriptionProcessed,
		DateAuthorization:    r.DateAuthorization,
		DateSettled:          r.DateSettled,
		Amount:               amount,
		Status:               model.TransactionStatus(r.Status),
		Flow:                 model.TransactionFlow(r.Flow),
		Note:                 r.Note,
		CategoryID:           r.CategoryID,
	}
	if r.Balance != nil {
		b, err := decimal.NewFromString(*r.Balance)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("transaction %d: bad balance %q: %w", r.ID, *r.Balance, err)
		}
		t.Balance = decimal.NullDecimal{Decimal: b, Valid: true}
	}
	return t, nil
}
