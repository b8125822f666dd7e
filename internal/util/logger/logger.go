// Package logger builds the process logger for an environment.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"autohide/internal/util/logger/handlers/slogpretty"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Setup returns the logger for env: colored lines for local, JSON for dev
// and prod. verbose lowers the local and prod level to debug.
func Setup(env string, verbose bool, out io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envDev:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level(verbose)}))
	default:
		log = setupPrettySlog(out, level(verbose))
	}
	return log
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func setupPrettySlog(out io.Writer, lvl slog.Level) *slog.Logger {
	color.NoColor = !isTerminal(out)

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: lvl,
		},
	}

	handler := opts.NewPrettyHandler(out)

	return slog.New(handler)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
