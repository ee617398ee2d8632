// Package reconcile matches a freshly fetched settled-transaction list
// against the transactions the store already knows, deciding per entry
// whether it is new, resolves a pending transaction, or is a duplicate.
package reconcile

import (
	"github.com/banksync-dev/banksync/internal/model"
)

// Batch is the outcome of one reconciliation pass. The three sets are
// disjoint; a transaction lands in exactly one of them.
type Batch struct {
	AccountID int

	// Inserts are transactions the store has never seen.
	Inserts []model.Transaction
	// Updates resolve a known pending transaction; the persisted id is
	// preserved and settled attributes are merged in.
	Updates []model.Transaction
	// Discards are duplicates already fully reconciled.
	Discards []model.Transaction
}

// Empty reports whether the batch changes nothing.
func (b Batch) Empty() bool {
	return len(b.Inserts) == 0 && len(b.Updates) == 0
}

// Size returns the number of decisions in the batch.
func (b Batch) Size() int {
	return len(b.Inserts) + len(b.Updates) + len(b.Discards)
}
