package normalize

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/banksync-dev/banksync/internal/model"
)

// fixedNow keeps the tests stable across year boundaries.
var fixedNow = time.Date(2025, 6, 20, 14, 30, 0, 0, time.UTC)

func today() time.Time {
	return time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
}

func newTestDateTransformer() *DateTransformer {
	dt := NewDateTransformer(0)
	dt.Now = func() time.Time { return fixedNow }
	return dt
}

func ddmm(t time.Time) string {
	return fmt.Sprintf("%02d/%02d", t.Day(), int(t.Month()))
}

func settledTxn(desc string, settled time.Time) model.Transaction {
	s := settled
	return model.Transaction{
		UID:                 "ozu",
		DescriptionOriginal: desc,
		DateSettled:         &s,
		Status:              model.StatusSettled,
	}
}

func TestTransform_NoDateInDescription(t *testing.T) {
	dt := newTestDateTransformer()
	out := dt.Transform(settledTxn("Random", today()))
	assert.Equal(t, today(), out.DateAuthorization)
}

func TestTransform_EmptyDescription(t *testing.T) {
	dt := newTestDateTransformer()
	out := dt.Transform(settledTxn("", today()))
	assert.Equal(t, today(), out.DateAuthorization)
}

func TestTransform_InvalidDayMonthPair(t *testing.T) {
	dt := newTestDateTransformer()
	out := dt.Transform(settledTxn("Random 19/19", today()))
	assert.Equal(t, today(), out.DateAuthorization)
}

func TestTransform_DateInDescription(t *testing.T) {
	dt := newTestDateTransformer()
	threeDaysAgo := today().AddDate(0, 0, -3)
	out := dt.Transform(settledTxn("Random "+ddmm(threeDaysAgo), today()))
	assert.Equal(t, threeDaysAgo, out.DateAuthorization)
}

func TestTransform_FutureDateRejected(t *testing.T) {
	dt := newTestDateTransformer()
	threeDaysAhead := today().AddDate(0, 0, 3)
	out := dt.Transform(settledTxn("Random "+ddmm(threeDaysAhead), today()))
	assert.Equal(t, today(), out.DateAuthorization)
}

func TestTransform_DateOlderThanLookbackRejected(t *testing.T) {
	dt := newTestDateTransformer()
	oneMonthAgo := today().AddDate(0, -1, 0)
	out := dt.Transform(settledTxn("Random "+ddmm(oneMonthAgo), today()))
	assert.Equal(t, today(), out.DateAuthorization)
}

func TestTransform_NonExistentCalendarDayRejected(t *testing.T) {
	dt := newTestDateTransformer()
	out := dt.Transform(settledTxn("Random 31/02", today()))
	assert.Equal(t, today(), out.DateAuthorization)
}

func TestTransform_NoSettledDateFallsBackToToday(t *testing.T) {
	dt := newTestDateTransformer()
	out := dt.Transform(model.Transaction{
		DescriptionOriginal: "Random",
		Status:              model.StatusPending,
	})
	assert.Equal(t, today(), out.DateAuthorization)
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	dt := newTestDateTransformer()
	in := settledTxn("Random", today())
	_ = dt.Transform(in)
	assert.True(t, in.DateAuthorization.IsZero(), "input value must stay untouched")
}

func TestTransform_CustomLookback(t *testing.T) {
	dt := newTestDateTransformer()
	dt.LookbackDays = 2

	threeDaysAgo := today().AddDate(0, 0, -3)
	out := dt.Transform(settledTxn("Random "+ddmm(threeDaysAgo), today()))
	assert.Equal(t, today(), out.DateAuthorization, "outside a 2-day window")
}
