package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List synced accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return runAccountsList(cmd, e)
		},
	}

	cmd.AddCommand(newAliasCommand())

	return cmd
}

func runAccountsList(cmd *cobra.Command, e *env) error {
	user, err := e.store.EnsureUser(e.cfg.User.Name)
	if err != nil {
		return err
	}

	accts, err := e.store.AccountsForUser(user.ID)
	if err != nil {
		return err
	}
	if len(accts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts synced yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tALIAS\tCURRENT\tAVAILABLE\tLAST SYNCED")
	for _, a := range accts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.AccountNumber,
			a.Alias,
			a.CurrentBalance.StringFixed(2),
			a.AvailableBalance.StringFixed(2),
			a.LastSynced.Format("2006-01-02"))
	}
	return w.Flush()
}

func newAliasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "alias <account-number> <alias>",
		Short: "Rename an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			user, err := e.store.EnsureUser(e.cfg.User.Name)
			if err != nil {
				return err
			}
			acct, err := e.store.FetchAccount(user.ID, args[0])
			if err != nil {
				return err
			}
			if acct == nil {
				return fmt.Errorf("unknown account %s", args[0])
			}
			if err := e.store.SetAlias(acct.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s is now %q\n", args[0], args[1])
			return nil
		},
	}
}
