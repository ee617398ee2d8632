package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banksync-dev/banksync/internal/importer"
	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/store"
	syncsvc "github.com/banksync-dev/banksync/internal/sync"
)

const exportCSV = `account_number,account_name,current_balance,available_balance,txn_uid,date_settled,description,amount,balance,status
90123456,Current Account,500.00,480.00,s-1,18/06/2025,POS TESCO STORES,-20.00,500.00,SETTLED
90123456,Current Account,500.00,480.00,,,POS CAFE NERO,-4.50,,PENDING
22223333,Savings,1200.00,1200.00,s-9,15/06/2025,LODGEMENT,300.00,1200.00,SETTLED
`

func writeExport(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, "import", "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportCSV), 0o644))
}

func TestSync_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "init", dir, "--user", "demo")
	require.NoError(t, err)

	writeExport(t, dir)

	out, err := runCommand(t, "sync", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "account 90123456 synced")
	assert.Contains(t, out, "account 22223333 synced")

	// The export moved to processed.
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "export.csv"))
	require.NoError(t, err)

	// Stored state matches the snapshot.
	st, err := store.Open(filepath.Join(dir, "banksync.db"))
	require.NoError(t, err)
	defer st.Close()

	user, err := st.EnsureUser("demo")
	require.NoError(t, err)
	accts, err := st.AccountsForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, accts, 2)

	current := accts[0]
	assert.Equal(t, "90123456", current.AccountNumber)
	assert.Equal(t, "Current Account", current.Alias)

	rows, err := st.TransactionsForAccount(current.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	pending, err := st.PendingForAccount(current.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "POS CAFE NERO", pending[0].DescriptionOriginal)
	assert.Equal(t, "CAFE NERO", pending[0].DescriptionProcessed)
}

func TestSync_RerunReachesFixedPoint(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "init", dir, "--user", "demo")
	require.NoError(t, err)

	writeExport(t, dir)
	_, err = runCommand(t, "sync", "-C", dir)
	require.NoError(t, err)

	// The same export arrives again.
	writeExport(t, dir)
	_, err = runCommand(t, "sync", "-C", dir)
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(dir, "banksync.db"))
	require.NoError(t, err)
	defer st.Close()

	user, err := st.EnsureUser("demo")
	require.NoError(t, err)
	accts, err := st.AccountsForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, accts, 2, "no duplicate accounts")

	rows, err := st.TransactionsForAccount(accts[0].ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "no duplicate transactions")
}

// flakySyncer fails the accounts named in failing and succeeds for the
// rest.
type flakySyncer struct {
	failing map[string]bool
}

func (s flakySyncer) SyncAccounts(snaps []model.AccountSnapshot) ([]syncsvc.Outcome, error) {
	outcomes := make([]syncsvc.Outcome, 0, len(snaps))
	for _, snap := range snaps {
		o := syncsvc.Outcome{AccountNumber: snap.AccountNumber}
		if s.failing[snap.AccountNumber] {
			o.Err = errors.New("applying batch: disk full")
		} else {
			o.Account = &model.Account{
				AccountNumber:  snap.AccountNumber,
				CurrentBalance: snap.CurrentBalance,
			}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func TestSyncFiles_FailedAccountKeepsFileForRetry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "import", "processed"), 0o755))
	writeExport(t, dir)

	files, err := importer.Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	parser := importer.DefaultRegistry().Get("ptsb")
	require.NotNil(t, parser)

	svc := flakySyncer{failing: map[string]bool{"22223333": true}}
	err = syncFiles(cmd, dir, parser, svc, files, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 account(s) failed")

	// The file stays put so the failed account can be retried.
	_, err = os.Stat(filepath.Join(dir, "import", "export.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "export.csv"))
	require.True(t, os.IsNotExist(err))
	assert.Contains(t, out.String(), "kept in import directory")

	// Once every account succeeds the same file is archived.
	err = syncFiles(cmd, dir, parser, flakySyncer{}, files, false)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "export.csv"))
	require.NoError(t, err)
}

func TestSync_EmptyImportDir(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "init", dir, "--user", "demo")
	require.NoError(t, err)

	out, err := runCommand(t, "sync", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to sync")
}

func TestAccountsAndEvolution(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "init", dir, "--user", "demo")
	require.NoError(t, err)

	writeExport(t, dir)
	_, err = runCommand(t, "sync", "-C", dir)
	require.NoError(t, err)

	out, err := runCommand(t, "accounts", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "90123456")
	assert.Contains(t, out, "22223333")

	out, err = runCommand(t, "accounts", "-C", dir, "alias", "90123456", "Household")
	require.NoError(t, err)
	assert.Contains(t, out, "Household")

	out, err = runCommand(t, "evolution", "-C", dir, "--account", "22223333")
	require.NoError(t, err)
	assert.Contains(t, out, "Savings (22223333)")
	assert.Contains(t, out, "1200.00")

	_, err = runCommand(t, "evolution", "-C", dir, "--account", "00000000")
	require.Error(t, err)
}
