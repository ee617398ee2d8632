package normalize

import (
	"regexp"
	"strconv"
	"time"

	"github.com/banksync-dev/banksync/internal/dateutil"
	"github.com/banksync-dev/banksync/internal/model"
)

// DefaultLookbackDays bounds how far behind the settlement date an
// embedded description date may fall before it is ignored.
const DefaultLookbackDays = 15

// datePattern matches a "dd/mm" token embedded in a description.
// The source never includes a year.
var datePattern = regexp.MustCompile(`\b(\d{2})/(\d{2})\b`)

// DateTransformer recovers the authorization date of a transaction.
//
// PTSB settles card transactions days after they happen but often embeds
// the real date in the description ("POS TESCO 14/03"). When a valid
// embedded date falls inside (settled − lookback, settled] and is not in
// the future, it becomes the authorization date; otherwise the settlement
// date (or today, when the transaction is still pending) is used.
type DateTransformer struct {
	LookbackDays int

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewDateTransformer creates a DateTransformer with the given lookback
// window. A lookback <= 0 selects DefaultLookbackDays.
func NewDateTransformer(lookbackDays int) *DateTransformer {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &DateTransformer{LookbackDays: lookbackDays, Now: time.Now}
}

// Transform returns a copy of txn with DateAuthorization set.
func (dt *DateTransformer) Transform(txn model.Transaction) model.Transaction {
	txn.DateAuthorization = dt.authorizationDate(txn)
	return txn
}

func (dt *DateTransformer) authorizationDate(txn model.Transaction) time.Time {
	now := dateutil.Day(dt.now())

	fallback := now
	if txn.DateSettled != nil {
		fallback = dateutil.Day(*txn.DateSettled)
	}

	m := datePattern.FindStringSubmatch(txn.DescriptionOriginal)
	if m == nil {
		return fallback
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return fallback
	}

	candidate := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
	if candidate.Day() != day {
		// 31/02 and friends roll over in time.Date; treat as not found.
		return fallback
	}

	if candidate.After(now) || candidate.After(fallback) {
		return fallback
	}
	windowStart := fallback.AddDate(0, 0, -dt.LookbackDays)
	if !candidate.After(windowStart) {
		return fallback
	}
	return candidate
}

func (dt *DateTransformer) now() time.Time {
	if dt.Now != nil {
		return dt.Now()
	}
	return time.Now()
}
