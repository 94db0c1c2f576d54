package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/fixity/pkg/fixity/history"
	"github.com/jamesainslie/fixity/pkg/fixity/output"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "verify [dir]",
		Short: "Compare a directory against the baseline",
		Long: `Hash every file under dir (default: current directory) and report files
added, modified, or deleted since the baseline was recorded.

Exit status is 0 when everything matches, 1 when changes were found, and 2
on error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(cmd, args, format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "pretty",
		"output format ("+strings.Join(output.Available(), ", ")+")")
	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, args []string, format string) error {
	formatter, err := output.Get(format)
	if err != nil {
		return err
	}

	dir, err := targetDir(args)
	if err != nil {
		return err
	}

	eng, store, err := a.newEngine()
	if err != nil {
		return err
	}

	recorded := len(eng.Snapshot())
	if recorded == 0 && !a.quiet() {
		fmt.Fprintf(a.stderr, "Warning: no baseline at %s; every file will be reported as new\n", store.Path())
	}

	report, err := eng.VerifyIntegrity(cmd.Context(), dir)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, &output.Result{
		Report:        report,
		Baseline:      store.Path(),
		BaselineFiles: recorded,
	}); err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	if _, err := a.stdout.Write(buf.Bytes()); err != nil {
		return err
	}

	a.record(history.FromReport(report, store.Path()))

	if !report.Matches {
		return errChangesDetected
	}
	return nil
}
