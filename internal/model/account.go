package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the durable record of one bank account.
type Account struct {
	ID               int
	UserID           int
	UID              string // stable external id reported by the source
	Name             string
	Alias            string // user editable, defaults to Name
	AccountNumber    string
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	LastSynced       time.Time
	Transactions     []Transaction
}

// AccountInfo is the resolved view of an account handed to the analyzer
// and the balance calculator: the persisted identity plus everything the
// store already knows about it.
type AccountInfo struct {
	ID               int
	UID              string
	Name             string
	Alias            string
	AccountNumber    string
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	LastSynced       time.Time
	Known            []Transaction // already-persisted transactions
}

// AccountSnapshot is what the bank source reports for one account in one
// fetch. Transient; built per sync call and discarded afterwards.
type AccountSnapshot struct {
	UID              string
	Name             string
	AccountNumber    string
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	Transactions     []Transaction // raw, in source order
}
