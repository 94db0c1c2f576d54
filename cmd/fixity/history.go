package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/fixity/pkg/fixity/config"
	"github.com/jamesainslie/fixity/pkg/fixity/history"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
	"github.com/spf13/cobra"
)

// maxShownChanges caps the change list printed by history show.
const maxShownChanges = 50

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "View past baseline and verify runs",
		Long: `List recorded baseline and verify runs, newest first.

History is kept separately from the baseline and never affects verification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of entries to show (0 = all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show details of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistoryShow(args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove runs older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistoryClean()
		},
	})
	return cmd
}

// openHistory opens the configured history store.
func (a *app) openHistory() (*history.Store, error) {
	h, err := history.Open(a.cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return h, nil
}

func (a *app) runHistory(limit int) error {
	h, err := a.openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	entries, err := h.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		a.printInfo("No history entries found.")
		a.printInfo("Run 'fixity baseline [dir]' to record a baseline.")
		return nil
	}

	w := a.stdout
	fmt.Fprintf(w, "%-36s  %-8s  %-14s  %7s  %-s\n", "ID", "TYPE", "WHEN", "FILES", "RESULT")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, e := range entries {
		fmt.Fprintf(w, "%-36s  %-8s  %-14s  %7d  %s\n",
			e.ID, e.Operation, humanize.Time(e.Timestamp), e.Files, summarize(&e))
	}
	fmt.Fprintln(w, strings.Repeat("-", 90))
	a.printInfo("Use 'fixity history show <id>' for details on a specific entry.")
	return nil
}

// summarize renders the outcome column of a history row.
func summarize(e *history.Entry) string {
	switch {
	case e.Operation == history.OpBaseline:
		return "recorded"
	case e.Matches:
		return "match"
	default:
		return fmt.Sprintf("+%d ~%d -%d", e.Added, e.Modified, e.Deleted)
	}
}

func (a *app) runHistoryShow(id string) error {
	h, err := a.openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	e, err := h.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	w := a.stdout
	fmt.Fprintln(w, "Run Details")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "ID:         %s\n", e.ID)
	fmt.Fprintf(w, "Timestamp:  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Operation:  %s\n", e.Operation)
	fmt.Fprintf(w, "Directory:  %s\n", e.Root)
	fmt.Fprintf(w, "Baseline:   %s\n", e.Baseline)
	fmt.Fprintf(w, "Files:      %d\n", e.Files)
	fmt.Fprintf(w, "Hashed:     %s in %s\n", types.FormatSize(e.BytesHashed), e.Elapsed)
	if e.Skipped > 0 {
		fmt.Fprintf(w, "Skipped:    %d\n", e.Skipped)
	}
	if e.Operation == history.OpVerify {
		fmt.Fprintf(w, "Result:     %s\n", summarize(e))
	}

	if len(e.Changes) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nChanges:")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	shown := e.Changes
	if len(shown) > maxShownChanges {
		shown = shown[:maxShownChanges]
	}
	for _, c := range shown {
		fmt.Fprintf(w, "%-9s  %s\n", c.Kind, c.Path)
	}
	if rest := len(e.Changes) - len(shown); rest > 0 {
		fmt.Fprintf(w, "\n... and %d more\n", rest)
	}
	return nil
}

func (a *app) runHistoryClean() error {
	h, err := a.openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	days := a.cfg.History.RetentionDays
	if days <= 0 {
		days = config.DefaultRetentionDays
	}

	a.printInfo("Cleaning history entries older than %d days...", days)
	removed, err := h.Cleanup(days)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}
	a.printInfo("Removed %d entries.", removed)
	return nil
}
