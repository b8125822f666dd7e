package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"autohide/internal/journal"
	"autohide/internal/outcome"
)

var (
	mutedColor   = lipgloss.Color("#9CA3AF")
	headerColor  = lipgloss.Color("#6B7280")
	successColor = lipgloss.Color("#059669")
	warningColor = lipgloss.Color("#D97706")
)

type HistoryCommand struct {
	cmd *cobra.Command
	app *AppContext
}

func NewHistoryCommand(app *AppContext) *HistoryCommand {
	return &HistoryCommand{app: app}
}

func (h *HistoryCommand) Meta() *cobra.Command {
	if h.cmd != nil {
		return h.cmd
	}
	h.cmd = &cobra.Command{
		Use:   "history",
		Short: "Show past runs from the journal",
		Long: `List recorded runs, newest first. With --run, list the outcomes of one run;
with --delete, remove a run and its outcomes from the journal.
To hide a directory literally named "history", pass it as ./history.`,
		Args: cobra.NoArgs,
	}
	h.cmd.Flags().IntP("limit", "l", 10, "maximum number of rows, 0 for all")
	h.cmd.Flags().String("run", "", "run id to show outcomes for")
	h.cmd.Flags().String("delete", "", "run id to remove from the journal")
	h.cmd.MarkFlagsMutuallyExclusive("run", "delete")
	return h.cmd
}

func (h *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("flag --limit failed: %w", err)
	}
	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return fmt.Errorf("flag --run failed: %w", err)
	}
	deleteID, err := cmd.Flags().GetString("delete")
	if err != nil {
		return fmt.Errorf("flag --delete failed: %w", err)
	}

	j, err := h.app.OpenJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	out := cmd.OutOrStdout()
	if deleteID != "" {
		id, err := uuid.Parse(deleteID)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", deleteID, err)
		}
		if err := j.DeleteRun(id); err != nil {
			return err
		}
		fmt.Fprintf(out, "run %s deleted\n", id)
		return nil
	}

	if runID == "" {
		runs, err := j.Runs(limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		renderRuns(out, runs)
		return nil
	}

	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	run, err := j.Run(id)
	if err != nil {
		return err
	}
	records, err := j.Outcomes(id, limit)
	if err != nil {
		return fmt.Errorf("list outcomes: %w", err)
	}
	renderRun(out, run, records)
	return nil
}

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(headerColor)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func renderRuns(out io.Writer, runs []journal.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Render("No runs recorded"))
		return
	}

	t := newTable("RUN", "STARTED", "MODE", "ROOTS", "RESULT")
	for _, r := range runs {
		t.Row(r.ID.String(), humanize.Time(r.Started), r.Mode, strings.Join(r.Roots, "\n"), result(r))
	}
	fmt.Fprintln(out, t)
}

func renderRun(out io.Writer, run journal.Run, records []journal.Record) {
	fmt.Fprintf(out, "run %s (%s, started %s)\n%s\n", run.ID, run.Mode, humanize.Time(run.Started), result(run))

	if len(records) == 0 {
		fmt.Fprintln(out, lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Render("No outcomes recorded"))
		return
	}

	t := newTable("ACTION", "KIND", "PATH", "DETAIL")
	for _, r := range records {
		detail := r.Error
		if detail == "" && r.Target != r.Path {
			detail = r.Target
		}
		t.Row(action(r.Action), r.Kind, r.Path, detail)
	}
	fmt.Fprintln(out, t)
}

func result(r journal.Run) string {
	if !r.Done() {
		return lipgloss.NewStyle().Foreground(warningColor).Render("unfinished")
	}
	return r.Summary.String()
}

func action(a string) string {
	switch a {
	case outcome.ActionHidden.String():
		return lipgloss.NewStyle().Foreground(successColor).Render(a)
	case outcome.ActionFailed.String():
		return lipgloss.NewStyle().Foreground(warningColor).Render(a)
	default:
		return a
	}
}
