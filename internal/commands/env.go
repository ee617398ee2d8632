package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banksync-dev/banksync/internal/config"
	"github.com/banksync-dev/banksync/internal/store"
)

// env is the opened project environment shared by the data commands.
type env struct {
	root  string
	cfg   *config.Config
	store *store.Store
}

func openEnv(cmd *cobra.Command) (*env, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Database.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return &env{root: root, cfg: cfg, store: st}, nil
}

func (e *env) close() {
	_ = e.store.Close()
}
