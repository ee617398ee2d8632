package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction at the bank.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSettled TransactionStatus = "SETTLED"
)

// TransactionFlow is the direction of money movement.
type TransactionFlow string

const (
	FlowCredit TransactionFlow = "CREDIT"
	FlowDebit  TransactionFlow = "DEBIT"
)

// Transaction is a single bank account transaction. Instances are treated
// as values during reconciliation; only the store mutates rows, and only
// through an applied sync batch.
type Transaction struct {
	ID                   int    // persisted id, 0 until stored
	UID                  string // external id; often empty while pending
	DescriptionOriginal  string
	DescriptionProcessed string
	DateAuthorization    time.Time
	DateSettled          *time.Time // nil until settled
	Amount               decimal.Decimal
	Balance              decimal.NullDecimal // balance after, unknown while pending
	Status               TransactionStatus
	Flow                 TransactionFlow
	Note                 string
	CategoryID           int // 0 = uncategorized
	AccountID            int
}

// HasUID reports whether the source assigned a stable external id.
func (t Transaction) HasUID() bool { return t.UID != "" }

// FlowFromAmount derives the flow direction from the amount sign.
func FlowFromAmount(amount decimal.Decimal) TransactionFlow {
	if amount.IsNegative() {
		return FlowDebit
	}
	return FlowCredit
}
