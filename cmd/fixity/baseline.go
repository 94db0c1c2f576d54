package main

import (
	"fmt"

	"github.com/jamesainslie/fixity/pkg/fixity/engine"
	"github.com/jamesainslie/fixity/pkg/fixity/history"
	"github.com/jamesainslie/fixity/pkg/fixity/snapshot"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
	"github.com/jamesainslie/fixity/pkg/fixity/walker"
	"github.com/spf13/cobra"
)

func newBaselineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "baseline [dir]",
		Short: "Record the current state of a directory",
		Long: `Hash every file under dir (default: current directory) and store the
result as the new baseline. Any previous baseline is replaced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runBaseline,
	}
}

func (a *app) runBaseline(cmd *cobra.Command, args []string) error {
	dir, err := targetDir(args)
	if err != nil {
		return err
	}

	eng, store, err := a.newEngine()
	if err != nil {
		return err
	}

	a.printVerbose("hashing files under %s", dir)
	res, err := eng.EstablishBaseline(cmd.Context(), dir)
	if err != nil {
		return err
	}

	for _, s := range res.Skipped {
		a.printInfo("Skipped unreadable file: %s (%s)", s.Path, s.Error)
	}
	a.printInfo("Baseline established for %d files", res.Count)
	a.printVerbose("hashed %s in %s", types.FormatSize(res.BytesHashed), res.Elapsed)

	a.record(history.FromBaseline(res, store.Path()))
	return nil
}

// targetDir resolves the directory argument and checks that it exists.
func targetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := walker.CheckDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// newEngine opens the configured baseline and builds an engine around it.
func (a *app) newEngine() (*engine.Engine, *snapshot.Store, error) {
	store, err := snapshot.New(a.cfg.Baseline.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening baseline: %w", err)
	}
	eng := engine.New(store,
		engine.WithExclude(a.cfg.Exclude),
		engine.WithWorkers(a.cfg.Workers),
	)
	return eng, store, nil
}

// record appends a run to history. History is an audit aid, so failures
// are reported but never fail the command.
func (a *app) record(e *history.Entry) {
	if !a.historyEnabled() {
		return
	}

	h, err := history.Open(a.cfg.History.Path)
	if err != nil {
		a.printVerbose("history unavailable: %v", err)
		return
	}
	defer func() {
		if err := h.Close(); err != nil {
			a.printVerbose("closing history: %v", err)
		}
	}()

	if err := h.Record(e); err != nil {
		a.printVerbose("recording history: %v", err)
		return
	}
	a.printVerbose("recorded run %s", e.ID)
}
