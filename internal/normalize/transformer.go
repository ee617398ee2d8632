// Package normalize turns raw source transactions into the form the
// reconciler works with. Each institution ships its own transformer
// variants; callers depend only on the InputTransformer capability.
package normalize

import (
	"fmt"

	"github.com/banksync-dev/banksync/internal/model"
)

// InputTransformer rewrites one field of a raw transaction. Transformers
// are pure: the input is a value and the result is a fresh copy.
type InputTransformer interface {
	Transform(txn model.Transaction) model.Transaction
}

// Chain applies a sequence of transformers in order.
type Chain []InputTransformer

// Transform runs every transformer in the chain over the transaction.
func (c Chain) Transform(txn model.Transaction) model.Transaction {
	for _, t := range c {
		txn = t.Transform(txn)
	}
	return txn
}

// ForInstitution returns the transformer chain for a source institution,
// or an error when no chain is registered for it.
func ForInstitution(institution string, lookbackDays int) (Chain, error) {
	switch institution {
	case "ptsb":
		return Chain{
			NewDateTransformer(lookbackDays),
			DescriptionTransformer{},
		}, nil
	default:
		return nil, fmt.Errorf("no transformer chain for institution %q", institution)
	}
}
