// Package balance derives a day-by-day balance timeline from an
// account's stored transaction history. Read-only; it never touches the
// store itself.
package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/banksync-dev/banksync/internal/dateutil"
	"github.com/banksync-dev/banksync/internal/model"
)

// Point is the balance at end of one calendar day.
type Point struct {
	Date    time.Time
	Balance decimal.Decimal
}

// Evolution is a gap-free daily balance series for one account, from the
// earliest to the latest authorization date in its history.
type Evolution struct {
	Account model.AccountInfo
	Points  []Point
}

// Compute builds the evolution for an account's transactions. An empty
// history yields an empty series, as does one with no balance-after on
// any transaction. Days without transactions carry the previous day's
// balance forward; leading days without a known balance are omitted.
//
// A day with several transactions takes the balance of the first one
// found in input order, not the last; this mirrors the upstream data
// source and callers must not assume end-of-day semantics.
func Compute(acct model.AccountInfo, txns []model.Transaction) (Evolution, error) {
	ev := Evolution{Account: acct}
	if len(txns) == 0 {
		return ev, nil
	}

	firstOfDay := make(map[time.Time]model.Transaction, len(txns))
	earliest := txns[0]
	latest := txns[0]
	for _, t := range txns {
		day := dateutil.Day(t.DateAuthorization)
		if _, ok := firstOfDay[day]; !ok {
			firstOfDay[day] = t
		}
		if t.DateAuthorization.Before(earliest.DateAuthorization) {
			earliest = t
		}
		if t.DateAuthorization.After(latest.DateAuthorization) {
			latest = t
		}
	}

	days, err := dateutil.Range(earliest.DateAuthorization, latest.DateAuthorization)
	if err != nil {
		return ev, err
	}

	// The series starts on the first day with a known balance-after.
	// Pending-only history has none, so it yields no points rather than
	// a fabricated zero run.
	start := -1
	for i, day := range days {
		if t, ok := firstOfDay[day]; ok && t.Balance.Valid {
			start = i
			break
		}
	}
	if start < 0 {
		return ev, nil
	}

	var balance decimal.Decimal
	ev.Points = make([]Point, 0, len(days)-start)
	for _, day := range days[start:] {
		if t, ok := firstOfDay[day]; ok && t.Balance.Valid {
			balance = t.Balance.Decimal
		}
		ev.Points = append(ev.Points, Point{Date: day, Balance: balance})
	}
	return ev, nil
}
