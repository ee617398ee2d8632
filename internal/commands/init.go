package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banksync-dev/banksync/internal/config"
	"github.com/banksync-dev/banksync/internal/store"
)

func newInitCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new banksync project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, user)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "name of the account owner (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runInit(cmd *cobra.Command, dir, user string) error {
	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(user)
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the database schema and the configured user up front.
	st, err := store.Open(filepath.Join(dir, cfg.Database.Path))
	if err != nil {
		return err
	}
	defer st.Close()
	if _, err := st.EnsureUser(user); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized banksync project at %s\n", dir)
	return nil
}
