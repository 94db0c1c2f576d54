package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/jamesainslie/fixity/pkg/fixity/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage fixity configuration settings.

Configuration is loaded from ` + config.ConfigFile() + `
unless --config names another file.

Environment variables override config file settings using the FIXITY_ prefix:
  FIXITY_BASELINE_PATH=/srv/fixity/baseline.json
  FIXITY_WORKERS=8
  FIXITY_HISTORY_ENABLED=false`,
		PersistentPreRunE: a.setupLenient,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return a.runConfigShow() },
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create default configuration file",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return a.runConfigInit() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return a.runConfigPath() },
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit configuration file",
			Long: `Open the configuration file in $VISUAL, $EDITOR, or vi.
A default file is created first if none exists.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error { return a.runConfigEdit() },
		},
	)
	return cmd
}

// setupLenient loads configuration for the config subcommands, falling back
// to defaults so a missing or broken file can still be created or inspected.
func (a *app) setupLenient(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFrom(a.v, a.cfgFile)
	if err != nil {
		if _, statErr := os.Stat(a.configPath()); statErr == nil {
			printError(a.stderr, fmt.Errorf("failed to load configuration: %w", err))
		}
		cfg = config.Defaults()
	}
	a.cfg = cfg
	return nil
}

// configPath is the file config init/edit/path operate on.
func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return config.ConfigFile()
}

func (a *app) runConfigShow() error {
	w := a.stdout
	cfg := a.cfg

	used := a.v.ConfigFileUsed()
	if _, err := os.Stat(used); used == "" || err != nil {
		fmt.Fprintf(w, "Config file: (using defaults, no file found)\n\n")
	} else {
		fmt.Fprintf(w, "Config file: %s\n\n", used)
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "baseline.path:          %s\n", cfg.Baseline.Path)
	fmt.Fprintf(w, "exclude:                %v\n", cfg.Exclude)
	fmt.Fprintf(w, "workers:                %d\n", cfg.Workers)
	fmt.Fprintf(w, "history.enabled:        %t\n", cfg.History.Enabled)
	fmt.Fprintf(w, "history.path:           %s\n", cfg.History.Path)
	fmt.Fprintf(w, "history.retention_days: %d\n", cfg.History.RetentionDays)
	fmt.Fprintf(w, "logging.level:          %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.path:           %s\n", cfg.Logging.Path)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	envVars := []string{
		"FIXITY_BASELINE_PATH",
		"FIXITY_EXCLUDE",
		"FIXITY_WORKERS",
		"FIXITY_HISTORY_ENABLED",
		"FIXITY_HISTORY_PATH",
		"FIXITY_HISTORY_RETENTION_DAYS",
		"FIXITY_LOGGING_LEVEL",
		"FIXITY_LOGGING_PATH",
	}
	overridden := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(w, "%s=%s\n", name, val)
			overridden = true
		}
	}
	if !overridden {
		fmt.Fprintln(w, "(none)")
	}
	return nil
}

func (a *app) runConfigInit() error {
	path := a.configPath()
	wrote, err := config.WriteDefault(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !wrote {
		a.printInfo("Config file already exists: %s", path)
		a.printInfo("Use 'fixity config edit' to modify it.")
		return nil
	}
	a.printInfo("Created default config file: %s", path)
	return nil
}

func (a *app) runConfigPath() error {
	path := a.configPath()
	fmt.Fprintln(a.stdout, path)

	if _, err := os.Stat(path); err == nil {
		a.printVerbose("File exists")
	} else if os.IsNotExist(err) {
		a.printVerbose("File does not exist (will use defaults)")
	}
	return nil
}

func (a *app) runConfigEdit() error {
	path := a.configPath()
	if _, err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	a.printVerbose("Opening %s with %s", path, editor)

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = a.stdout
	editorCmd.Stderr = a.stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}
