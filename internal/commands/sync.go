package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/banksync-dev/banksync/internal/importer"
	"github.com/banksync-dev/banksync/internal/logger"
	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/normalize"
	"github.com/banksync-dev/banksync/internal/store"
	syncsvc "github.com/banksync-dev/banksync/internal/sync"
)

func newSyncCommand() *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile statement exports from the import directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return runSync(cmd, e, keep)
		},
	}

	cmd.Flags().BoolVar(&keep, "keep", false, "leave processed files in the import directory")

	return cmd
}

func runSync(cmd *cobra.Command, e *env, keep bool) error {
	log := logger.New()

	parser := importer.DefaultRegistry().Get(e.cfg.Sync.Institution)
	if parser == nil {
		return fmt.Errorf("no parser for institution %q", e.cfg.Sync.Institution)
	}

	files, err := importer.Scan(e.root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to sync: import directory is empty")
		return nil
	}

	chain, err := normalize.ForInstitution(e.cfg.Sync.Institution, e.cfg.Sync.LookbackDays)
	if err != nil {
		return err
	}
	svc := syncsvc.NewService(e.store, e.store, store.NewIdentity(e.store, e.cfg.User.Name), chain, log)

	return syncFiles(cmd, e.root, parser, svc, files, keep)
}

// accountSyncer is the slice of the sync service the command depends on.
type accountSyncer interface {
	SyncAccounts(snapshots []model.AccountSnapshot) ([]syncsvc.Outcome, error)
}

// syncFiles runs every import file through the service. A file is moved
// to processed only when all of its accounts synced cleanly; otherwise
// it stays in the import directory so the next run retries it.
func syncFiles(cmd *cobra.Command, root string, parser importer.Parser, svc accountSyncer, files []importer.FileInfo, keep bool) error {
	failures := 0
	for _, file := range files {
		snaps, err := parseFile(parser, file)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", file.Name, err)
		}

		outcomes, err := svc.SyncAccounts(snaps)
		if err != nil {
			return err
		}

		failed := reportOutcomes(cmd, file.Name, outcomes)
		failures += failed
		if failed > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: kept in import directory for retry\n", file.Name)
			continue
		}
		if !keep {
			if err := importer.MarkProcessed(root, file.Name); err != nil {
				return err
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d account(s) failed to sync", failures)
	}
	return nil
}

func parseFile(parser importer.Parser, file importer.FileInfo) ([]model.AccountSnapshot, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file.Name, err)
	}
	defer f.Close()
	return parser.Parse(f)
}

func reportOutcomes(cmd *cobra.Command, fileName string, outcomes []syncsvc.Outcome) int {
	failures := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failures++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: account %s FAILED: %v\n", fileName, o.AccountNumber, o.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: account %s synced (balance %s)\n",
			fileName, o.AccountNumber, o.Account.CurrentBalance.StringFixed(2))
	}
	return failures
}
