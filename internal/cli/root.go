package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"autohide/internal/config"
	"autohide/internal/hider"
	"autohide/internal/journal"
	"autohide/internal/outcome"
	"autohide/internal/rules"
	"autohide/internal/runner"
	"autohide/internal/sweeper"
	"autohide/internal/util/logger/sl"
	"autohide/internal/watcher"
	pkgcli "autohide/pkg/cli"
)

type hideFlags struct {
	names         []string
	extensions    []string
	types         []string
	recursive     bool
	caseSensitive bool
	dryRun        bool
	watch         bool
	immediate     bool
	noJournal     bool
}

// New builds the autohide command tree.
func New(app *AppContext) *pkgcli.CLI {
	c := pkgcli.NewCLI(NewRootCommand(app))
	c.RegisterPlugin(NewHistoryCommand(app))
	return c
}

func NewRootCommand(app *AppContext) *cobra.Command {
	var f hideFlags

	cmd := &cobra.Command{
		Use:   "autohide [flags] DIR...",
		Short: "Hide files and directories by name or extension",
		Long: `Hide files and directories whose name or extension matches, either once
(--immediate, the default) or continuously as they appear (--watch). Both
flags together sweep once and then keep watching.

On Windows entries get the hidden attribute; elsewhere they are renamed
with a leading dot.`,
		Version:       app.Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHide(cmd.Context(), app, f, args)
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&f.names, "file-names", "n", nil, "entry names to hide (repeatable or comma separated)")
	flags.StringSliceVarP(&f.extensions, "file-extensions", "x", nil, "extensions to hide, with or without the dot")
	flags.StringSliceVarP(&f.types, "file-types", "t", []string{"file", "directory"}, "kinds of entries to hide: file, directory")
	flags.BoolVarP(&f.recursive, "recursive", "r", false, "descend into subdirectories")
	flags.BoolVarP(&f.caseSensitive, "case-sensitive", "c", false, "match names and extensions case-sensitively")
	flags.BoolVar(&f.dryRun, "dry-run", false, "report what would be hidden without changing anything (alias --test)")
	flags.BoolVarP(&f.watch, "watch", "w", false, "keep hiding new entries until interrupted")
	flags.BoolVarP(&f.immediate, "immediate", "i", false, "hide existing entries now")
	flags.BoolVar(&f.noJournal, "no-journal", false, "do not record this run in the journal")

	_ = cmd.RegisterFlagCompletionFunc("file-types", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"file", "directory"}, cobra.ShellCompDirectiveNoFileComp
	})

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&app.configPath, "config", "", "path to config file (or AUTOHIDE_CONFIG)")
	persistent.BoolVarP(&app.verbose, "verbose", "v", false, "log every entry examined")

	cmd.SetGlobalNormalizationFunc(aliasFlags)

	if env, err := config.Usage(); err == nil {
		cmd.SetUsageTemplate(cmd.UsageTemplate() + "\n" + env + "\n")
	}

	return cmd
}

// aliasFlags accepts --test as the older spelling of --dry-run.
func aliasFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "test" {
		name = "dry-run"
	}
	return pflag.NormalizedName(name)
}

func parseKinds(values []string) ([]rules.Kind, error) {
	kinds := make([]rules.Kind, 0, len(values))
	for _, v := range values {
		k, err := rules.ParseKind(v)
		if err != nil {
			return nil, fmt.Errorf("--file-types: %w", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func runHide(ctx context.Context, app *AppContext, f hideFlags, dirs []string) error {
	kinds, err := parseKinds(f.types)
	if err != nil {
		return err
	}

	cfg, err := rules.NewHideConfig(rules.Options{
		Roots:          dirs,
		FileNames:      f.names,
		FileExtensions: f.extensions,
		Kinds:          kinds,
		Recursive:      f.recursive,
		CaseSensitive:  f.caseSensitive,
		DryRun:         f.dryRun,
	})
	if err != nil {
		return err
	}

	mode := runner.ModeFromFlags(f.immediate, f.watch)
	log := app.Log

	recorders := []outcome.Recorder{runner.NewLogRecorder(log)}

	var run *journal.RunRecorder
	if !cfg.DryRun() && !f.noJournal && !app.Config.Journal.Disabled {
		j, err := app.OpenJournal()
		if err != nil {
			log.Warn("journal unavailable, run is not recorded", sl.Err(err))
		} else {
			defer func() {
				if err := j.Close(); err != nil {
					log.Warn("failed to close journal", sl.Err(err))
				}
			}()

			run, err = j.BeginRun(mode.String(), cfg.Roots(), cfg.DryRun())
			if err != nil {
				log.Warn("failed to record run", sl.Err(err))
			} else {
				recorders = append(recorders, run)
			}
		}
	}

	deps := runner.Deps{
		Hider:    hider.New(),
		Recorder: outcome.Tee(recorders...),
		Logger:   log,
		Sweep: sweeper.Config{
			Workers: app.Config.Sweep.Workers,
		},
		Watch: watcher.Config{
			Debounce:       app.Config.Watch.Debounce,
			QueueSize:      app.Config.Watch.QueueSize,
			IgnorePatterns: app.Config.Watch.IgnorePatterns,
		},
	}

	summary, err := runner.Run(ctx, deps, cfg, mode)

	if run != nil {
		if ferr := run.Finish(summary); ferr != nil {
			log.Warn("failed to finish journal run", sl.Err(ferr))
		}
	}
	if err != nil {
		return err
	}

	attrs := []any{slog.String("summary", summary.String())}
	if run != nil {
		attrs = append(attrs, slog.String("run", run.ID().String()))
	}
	log.Info("done", attrs...)
	return nil
}
