package reconcile

import (
	"fmt"

	"github.com/banksync-dev/banksync/internal/dateutil"
	"github.com/banksync-dev/banksync/internal/model"
)

// ValidationError describes a single batch invariant violation.
type ValidationError struct {
	Invariant   int
	UID         string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.UID, e.Description)
}

// ValidateBatch enforces the batch invariants against the transactions
// already persisted for the account. A non-empty result means the
// analyzer produced something the store must refuse to apply.
func ValidateBatch(batch Batch, known []model.Transaction) []ValidationError {
	var errs []ValidationError

	knownUIDs := make(map[string]bool, len(known))
	knownIDs := make(map[int]bool, len(known))
	for _, t := range known {
		if t.HasUID() {
			knownUIDs[t.UID] = true
		}
		knownIDs[t.ID] = true
	}

	updateIDs := make(map[int]bool, len(batch.Updates))
	for _, t := range batch.Updates {
		updateIDs[t.ID] = true
	}

	// Invariant 1: inserts and updates are disjoint. Discards may share
	// an identity with either set; sharing one is what got them discarded.
	for _, ins := range batch.Inserts {
		for _, up := range batch.Updates {
			if sameIdentity(ins, up) {
				errs = append(errs, ValidationError{
					Invariant:   1,
					UID:         ins.UID,
					Description: "appears in both inserts and updates",
				})
			}
		}
	}

	// Invariant 2: insert uids are unique within the batch.
	insertUIDs := make(map[string]bool, len(batch.Inserts))
	for _, t := range batch.Inserts {
		if !t.HasUID() {
			continue
		}
		if insertUIDs[t.UID] {
			errs = append(errs, ValidationError{
				Invariant:   2,
				UID:         t.UID,
				Description: "duplicate insert uid",
			})
		}
		insertUIDs[t.UID] = true
	}

	// Invariant 3: an insert must not collide with a persisted uid.
	for _, t := range batch.Inserts {
		if t.HasUID() && knownUIDs[t.UID] {
			errs = append(errs, ValidationError{
				Invariant:   3,
				UID:         t.UID,
				Description: "insert collides with a persisted transaction",
			})
		}
	}

	// Invariant 4: every update references a transaction the store holds.
	for _, t := range batch.Updates {
		if t.ID == 0 || !knownIDs[t.ID] {
			errs = append(errs, ValidationError{
				Invariant:   4,
				UID:         t.UID,
				Description: fmt.Sprintf("update references unknown id %d", t.ID),
			})
		}
	}

	return errs
}

// sameIdentity is the strict form of transaction identity used for
// validation: equal uids when both carry one, otherwise equal amount
// and normalized description on the same calendar day. Distinct uids
// keep the pair distinct regardless of the rest.
func sameIdentity(x, y model.Transaction) bool {
	if x.HasUID() && y.HasUID() {
		return x.UID == y.UID
	}
	return x.Amount.Equal(y.Amount) &&
		normalizeDesc(x.DescriptionOriginal) == normalizeDesc(y.DescriptionOriginal) &&
		dateutil.SameDay(eventDate(x), eventDate(y))
}
