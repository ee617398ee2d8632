package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banksync-dev/banksync/internal/model"
)

// PTSBParser parses PTSB statement exports. One file may carry several
// accounts; rows are grouped by account number in file order.
type PTSBParser struct{}

const (
	ptsbDateFormat = "02/01/2006"
	ptsbNumFields  = 10

	ptsbColAccountNumber = 0
	ptsbColAccountName   = 1
	ptsbColCurrent       = 2
	ptsbColAvailable     = 3
	ptsbColUID           = 4
	ptsbColDateSettled   = 5
	ptsbColDescription   = 6
	ptsbColAmount        = 7
	ptsbColBalance       = 8
	ptsbColStatus        = 9
)

// Institution returns the parser name.
func (p *PTSBParser) Institution() string { return "ptsb" }

// Parse reads a PTSB export and returns one snapshot per account.
func (p *PTSBParser) Parse(r io.Reader) ([]model.AccountSnapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = ptsbNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ptsb CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	byNumber := make(map[string]*model.AccountSnapshot)
	var order []string
	for i, rec := range records[1:] {
		number := strings.TrimSpace(rec[ptsbColAccountNumber])
		snap, ok := byNumber[number]
		if !ok {
			snap, err = newSnapshot(rec)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			byNumber[number] = snap
			order = append(order, number)
		}

		txn, err := parsePTSBRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		snap.Transactions = append(snap.Transactions, txn)
	}

	snaps := make([]model.AccountSnapshot, 0, len(order))
	for _, number := range order {
		snaps = append(snaps, *byNumber[number])
	}
	return snaps, nil
}

func newSnapshot(rec []string) (*model.AccountSnapshot, error) {
	current, err := decimal.NewFromString(rec[ptsbColCurrent])
	if err != nil {
		return nil, fmt.Errorf("parsing current balance %q: %w", rec[ptsbColCurrent], err)
	}
	available, err := decimal.NewFromString(rec[ptsbColAvailable])
	if err != nil {
		return nil, fmt.Errorf("parsing available balance %q: %w", rec[ptsbColAvailable], err)
	}

	number := strings.TrimSpace(rec[ptsbColAccountNumber])
	return &model.AccountSnapshot{
		UID:              "ptsb-" + number,
		Name:             strings.TrimSpace(rec[ptsbColAccountName]),
		AccountNumber:    number,
		CurrentBalance:   current,
		AvailableBalance: available,
	}, nil
}

func parsePTSBRow(rec []string) (model.Transaction, error) {
	amount, err := decimal.NewFromString(rec[ptsbColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[ptsbColAmount], err)
	}

	txn := model.Transaction{
		UID:                 strings.TrimSpace(rec[ptsbColUID]),
		DescriptionOriginal: strings.TrimSpace(rec[ptsbColDescription]),
		Amount:              amount,
		Flow:                model.FlowFromAmount(amount),
	}

	status := strings.ToUpper(strings.TrimSpace(rec[ptsbColStatus]))
	switch status {
	case string(model.StatusSettled):
		txn.Status = model.StatusSettled
	case string(model.StatusPending), "":
		// Blank status means the row has not cleared yet.
		txn.Status = model.StatusPending
	default:
		return model.Transaction{}, fmt.Errorf("unknown status %q", rec[ptsbColStatus])
	}

	if raw := strings.TrimSpace(rec[ptsbColDateSettled]); raw != "" {
		settled, err := time.Parse(ptsbDateFormat, raw)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing settled date %q: %w", raw, err)
		}
		txn.DateSettled = &settled
	} else if txn.Status == model.StatusSettled {
		return model.Transaction{}, fmt.Errorf("settled row without a settled date")
	}

	if raw := strings.TrimSpace(rec[ptsbColBalance]); raw != "" {
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing balance %q: %w", raw, err)
		}
		txn.Balance = decimal.NullDecimal{Decimal: balance, Valid: true}
	}

	return txn, nil
}
