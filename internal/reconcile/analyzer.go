package reconcile

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/banksync-dev/banksync/internal/dateutil"
	"github.com/banksync-dev/banksync/internal/model"
)

// defaultMaxDistanceRatio is the levenshtein-distance-over-length cutoff
// below which two normalized descriptions count as the same transaction.
const defaultMaxDistanceRatio = 0.4

// defaultMatchWindowDays bounds how far apart two transactions' dates
// may sit and still count as the same event under the fuzzy identity.
// Recurring payments repeat the description and amount exactly, so
// without this bound every month's instance would collapse into the
// first.
const defaultMatchWindowDays = 15

// Analyzer reconciles fresh settled transactions against known pending
// ones. It is a best-effort heuristic matcher: ambiguity is resolved by
// a deterministic tie-break, never by an error.
type Analyzer struct {
	// MaxDistanceRatio controls the fuzzy description match; 0 selects
	// the default.
	MaxDistanceRatio float64
	// MatchWindowDays bounds the fuzzy identity in time; 0 selects the
	// default.
	MatchWindowDays int
}

// NewAnalyzer returns an Analyzer with default matching thresholds.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		MaxDistanceRatio: defaultMaxDistanceRatio,
		MatchWindowDays:  defaultMatchWindowDays,
	}
}

// Reconcile classifies every transaction in freshSettled:
//
//   - matches a known pending entry  -> update (pending resolves)
//   - matches a transaction acct already holds -> discard (seen before)
//   - matches an earlier entry of this same batch -> discard (source
//     reported it twice in one fetch)
//   - otherwise -> insert (settled without a pending phase)
//
// Pending entries nobody matched stay out of the batch entirely; they
// remain pending until a later sync resolves them.
func (a *Analyzer) Reconcile(acct model.AccountInfo, knownPending, freshSettled []model.Transaction) Batch {
	batch := Batch{AccountID: acct.ID}

	seen := make([]model.Transaction, 0, len(acct.Known)+len(freshSettled))
	for _, t := range acct.Known {
		if t.Status == model.StatusSettled {
			seen = append(seen, t)
		}
	}

	resolved := make(map[int]bool, len(knownPending))

	for _, settled := range freshSettled {
		if a.seenBefore(seen, settled) {
			batch.Discards = append(batch.Discards, settled)
			continue
		}
		seen = append(seen, settled)

		if pending, ok := a.claim(settled, knownPending, resolved); ok {
			resolved[pending.ID] = true
			batch.Updates = append(batch.Updates, mergeSettled(pending, settled))
			continue
		}

		ins := settled
		ins.AccountID = acct.ID
		ins.Status = model.StatusSettled
		if !ins.HasUID() {
			ins.UID = uuid.NewString()
		}
		batch.Inserts = append(batch.Inserts, ins)
	}

	return batch
}

// PendingAdditions returns the fresh pending transactions the store does
// not know yet. Known pending entries and already-settled history both
// suppress re-insertion, so repeated syncs of the same snapshot are
// no-ops.
func (a *Analyzer) PendingAdditions(acct model.AccountInfo, knownPending, freshPending []model.Transaction) []model.Transaction {
	known := append(append([]model.Transaction(nil), acct.Known...), knownPending...)

	var additions []model.Transaction
	for _, fresh := range freshPending {
		matched := false
		for _, k := range known {
			if a.matches(k, fresh) {
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		ins := fresh
		ins.AccountID = acct.ID
		ins.Status = model.StatusPending
		additions = append(additions, ins)
		known = append(known, ins)
	}
	return additions
}

// claim finds the known pending transaction resolved by settled, if any.
// When several candidates match under the fuzzy key, the one whose
// authorization date sits closest to the settlement date wins; remaining
// ties go to the smallest persisted id.
func (a *Analyzer) claim(settled model.Transaction, knownPending []model.Transaction, resolved map[int]bool) (model.Transaction, bool) {
	var candidates []model.Transaction
	for _, p := range knownPending {
		if resolved[p.ID] {
			continue
		}
		if a.matches(p, settled) {
			candidates = append(candidates, p)
		}
	}

	switch len(candidates) {
	case 0:
		return model.Transaction{}, false
	case 1:
		return candidates[0], true
	}

	ref := settled.DateAuthorization
	if settled.DateSettled != nil {
		ref = *settled.DateSettled
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di := dateutil.DaysApart(candidates[i].DateAuthorization, ref)
		dj := dateutil.DaysApart(candidates[j].DateAuthorization, ref)
		if di != dj {
			return di < dj
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], true
}

// seenBefore reports whether the account already holds this settled
// transaction. A matching uid decides either way, so two entries with
// distinct uids stay distinct even when description and amount collide;
// the fuzzy identity only applies when a uid is missing on a side, and
// only within the match window.
func (a *Analyzer) seenBefore(seen []model.Transaction, fresh model.Transaction) bool {
	for _, t := range seen {
		if a.matches(t, fresh) {
			return true
		}
	}
	return false
}

// matches reports whether two transactions describe the same real-world
// event. A uid on both sides decides outright; otherwise the amount must
// be equal, the dates within the match window, and the normalized
// descriptions equal or near-equal.
func (a *Analyzer) matches(known, fresh model.Transaction) bool {
	if known.HasUID() && fresh.HasUID() {
		return known.UID == fresh.UID
	}
	if !known.Amount.Equal(fresh.Amount) {
		return false
	}
	if !a.withinWindow(known, fresh) {
		return false
	}

	kd := normalizeDesc(known.DescriptionOriginal)
	fd := normalizeDesc(fresh.DescriptionOriginal)
	if kd == fd {
		return true
	}
	return a.distanceRatio(kd, fd) < a.maxDistanceRatio()
}

func (a *Analyzer) withinWindow(known, fresh model.Transaction) bool {
	kd := eventDate(known)
	fd := eventDate(fresh)
	if kd.IsZero() || fd.IsZero() {
		return true
	}
	return dateutil.DaysApart(kd, fd) <= a.matchWindowDays()
}

func (a *Analyzer) maxDistanceRatio() float64 {
	if a.MaxDistanceRatio > 0 {
		return a.MaxDistanceRatio
	}
	return defaultMaxDistanceRatio
}

func (a *Analyzer) matchWindowDays() int {
	if a.MatchWindowDays > 0 {
		return a.MatchWindowDays
	}
	return defaultMatchWindowDays
}

// eventDate is the date a transaction is anchored to for matching:
// settlement when it has happened, authorization otherwise.
func eventDate(t model.Transaction) time.Time {
	if t.DateSettled != nil {
		return *t.DateSettled
	}
	return t.DateAuthorization
}

func (a *Analyzer) distanceRatio(x, y string) float64 {
	longest := len(x)
	if len(y) > longest {
		longest = len(y)
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(x, y)) / float64(longest)
}

// mergeSettled copies the settled transaction's final attributes onto the
// persisted pending entity, keeping its id.
func mergeSettled(pending, settled model.Transaction) model.Transaction {
	out := pending
	out.DateSettled = settled.DateSettled
	out.Balance = settled.Balance
	out.Status = model.StatusSettled
	if settled.DescriptionProcessed != "" {
		out.DescriptionProcessed = settled.DescriptionProcessed
	}
	if settled.HasUID() {
		out.UID = settled.UID
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

func normalizeDesc(desc string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToUpper(desc), " "), " ")
}
