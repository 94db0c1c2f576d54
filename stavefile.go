//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"i": Install,
	"c": Clean,
	"s": Smoke,
}

const (
	binaryName = "fixity"
	mainPkg    = "./cmd/fixity"
	binDir     = "bin"
)

// All lints, tests, builds, and smoke-tests the binary.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build)
	st.Deps(Smoke)
	return nil
}

// Build compiles the fixity binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}
	return sh.RunV(st.GoCmd(), "build", "-ldflags", buildLdflags(), "-o", binaryPath(), mainPkg)
}

// Install installs fixity into GOBIN with version information.
func Install() error {
	return sh.RunV(st.GoCmd(), "install", "-ldflags", buildLdflags(), mainPkg)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	return sh.RunV(st.GoCmd(), "test", "-race", "-cover", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Smoke baselines and verifies a scratch directory with the built binary,
// then checks that a modification is reported with exit status 1.
func Smoke() error {
	st.Deps(Build)

	work, err := os.MkdirTemp("", "fixity-smoke-")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(work)

	data := filepath.Join(work, "data")
	if err := os.MkdirAll(data, 0o755); err != nil {
		return err
	}
	target := filepath.Join(data, "file.txt")
	if err := os.WriteFile(target, []byte("original\n"), 0o644); err != nil {
		return err
	}

	bin, err := filepath.Abs(binaryPath())
	if err != nil {
		return err
	}
	env := map[string]string{
		"FIXITY_BASELINE_PATH":   filepath.Join(work, "baseline.json"),
		"FIXITY_HISTORY_ENABLED": "false",
		"FIXITY_LOGGING_PATH":    filepath.Join(work, "fixity.log"),
	}

	if err := sh.RunWithV(env, bin, "baseline", data); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	if err := sh.RunWithV(env, bin, "verify", "-o", "plain", data); err != nil {
		return fmt.Errorf("verify of unchanged tree: %w", err)
	}

	if err := os.WriteFile(target, []byte("tampered\n"), 0o644); err != nil {
		return err
	}
	ran, err := sh.Exec(env, os.Stdout, os.Stderr, bin, "verify", "-o", "plain", data)
	if !ran {
		return fmt.Errorf("verify did not run: %w", err)
	}
	if code := sh.ExitStatus(err); code != 1 {
		return fmt.Errorf("verify of modified tree exited %d, want 1", code)
	}

	fmt.Println("smoke test passed")
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	if st.Verbose() {
		fmt.Printf("Removing %s/\n", binDir)
	}
	return sh.Rm(binDir + "/")
}

// Fmt formats all Go code.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("running gofmt: %w", err)
	}
	return sh.Run("goimports", "-w", ".")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV(st.GoCmd(), "mod", "tidy")
}

func binaryPath() string {
	out := filepath.Join(binDir, binaryName)
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	return out
}

// buildLdflags returns ldflags that stamp version, commit and build date
// into package main.
func buildLdflags() string {
	version := "dev"
	commit := "unknown"
	date := time.Now().UTC().Format(time.RFC3339)

	if v, err := sh.Output("git", "describe", "--tags", "--always"); err == nil && v != "" {
		version = strings.TrimSpace(v)
	}
	if c, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && c != "" {
		commit = strings.TrimSpace(c)
	}

	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
