package main

import (
	"fmt"
	"io"

	"github.com/jamesainslie/fixity/pkg/fixity/config"
	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config

	stdout io.Writer
	stderr io.Writer
}

// newRootCmd builds the command tree. Each call returns an independent tree
// with its own viper instance.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: config.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "fixity",
		Short: "Detect changes to files against a recorded baseline",
		Long: `Fixity records a SHA-256 digest of every file under a directory and
later reports which files were added, modified, or deleted since.

Examples:
  fixity baseline ~/docs          # Record the current state
  fixity verify ~/docs            # Compare against the recorded state
  fixity verify -o json ~/docs    # Machine-readable report
  fixity history                  # Past baseline and verify runs
  fixity config show              # Effective configuration`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: "+config.ConfigFile()+")")
	flags.StringP("baseline", "b", "", "baseline file (default: "+config.DefaultBaselinePath()+")")
	flags.StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	flags.IntP("workers", "w", 0, "override walker worker count (0=auto)")
	flags.BoolP("quiet", "q", false, "only print errors and the report")
	flags.BoolP("verbose", "v", false, "debug output on stderr")
	flags.Bool("no-history", false, "do not record this run in history")

	_ = a.v.BindPFlag("baseline.path", flags.Lookup("baseline"))
	_ = a.v.BindPFlag("exclude", flags.Lookup("exclude"))
	_ = a.v.BindPFlag("workers", flags.Lookup("workers"))
	_ = a.v.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("no_history", flags.Lookup("no-history"))

	root.AddCommand(
		newBaselineCmd(a),
		newVerifyCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads configuration and starts logging before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFrom(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg, err := cfg.LoggingConfig()
	if err != nil {
		return err
	}
	switch {
	case a.quiet():
		logCfg.ConsoleLevel = "error"
	case a.verbose():
		logCfg.ConsoleLevel = "debug"
	default:
		logCfg.ConsoleLevel = "warn"
	}
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	a.printVerbose("config file: %s", a.v.ConfigFileUsed())
	a.printVerbose("baseline: %s", cfg.Baseline.Path)
	return nil
}

func (a *app) verbose() bool {
	return a.v.GetBool("verbose")
}

func (a *app) quiet() bool {
	return a.v.GetBool("quiet")
}

func (a *app) historyEnabled() bool {
	return a.cfg.History.Enabled && !a.v.GetBool("no_history")
}

// printVerbose prints a message if verbose mode is enabled.
func (a *app) printVerbose(format string, args ...interface{}) {
	if a.verbose() && !a.quiet() {
		fmt.Fprintf(a.stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func (a *app) printInfo(format string, args ...interface{}) {
	if !a.quiet() {
		fmt.Fprintf(a.stdout, format+"\n", args...)
	}
}
