package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banksync-dev/banksync/internal/logger"
	"github.com/banksync-dev/banksync/internal/normalize"
	"github.com/banksync-dev/banksync/internal/store"
	syncsvc "github.com/banksync-dev/banksync/internal/sync"
)

func newEvolutionCommand() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "evolution",
		Short: "Print the daily balance series per account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return runEvolution(cmd, e, account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "restrict to one account number")

	return cmd
}

func runEvolution(cmd *cobra.Command, e *env, account string) error {
	chain, err := normalize.ForInstitution(e.cfg.Sync.Institution, e.cfg.Sync.LookbackDays)
	if err != nil {
		return err
	}
	svc := syncsvc.NewService(e.store, e.store, store.NewIdentity(e.store, e.cfg.User.Name), chain, logger.New())

	evolutions, err := svc.BalanceEvolutions()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	printed := false
	for _, ev := range evolutions {
		if account != "" && ev.Account.AccountNumber != account {
			continue
		}
		printed = true
		fmt.Fprintf(w, "%s (%s)\n", ev.Account.Alias, ev.Account.AccountNumber)
		for _, p := range ev.Points {
			fmt.Fprintf(w, "  %s\t%s\n", p.Date.Format("2006-01-02"), p.Balance.StringFixed(2))
		}
	}

	if !printed {
		if account != "" {
			return fmt.Errorf("unknown account %s", account)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts synced yet")
	}
	return nil
}
