package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"autohide/internal/config"
	"autohide/internal/journal"
	"autohide/internal/util/logger"
)

// AppContext holds what the commands share. Config and Log are set once
// the root command has parsed its flags.
type AppContext struct {
	Version string
	Config  *config.Config
	Log     *slog.Logger

	configPath string
	verbose    bool
}

func NewAppContext(version string) *AppContext {
	return &AppContext{Version: version}
}

func (a *AppContext) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.Config = cfg
	a.Log = logger.Setup(cfg.Env, a.verbose, cmd.OutOrStdout())
	return nil
}

// OpenJournal opens the configured journal, or the default one.
func (a *AppContext) OpenJournal() (*journal.Journal, error) {
	path := a.Config.Journal.Path
	if path == "" {
		var err error
		if path, err = journal.DefaultPath(); err != nil {
			return nil, err
		}
	}

	j, err := journal.Open(journal.Config{Path: path, Logger: a.Log})
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return j, nil
}
