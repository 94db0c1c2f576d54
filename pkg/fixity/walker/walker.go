// Package walker enumerates the regular files under a directory tree.
//
// Paths are reported with the root exactly as the caller spelled it, so a
// walk of "./data" yields "./data/a.txt" and a walk of "data/" yields
// "data/a.txt". Symlinks to regular files are reported like files; symlinked
// directories are never descended into.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// ErrNotDirectory is returned when the walk root is missing or not a directory.
var ErrNotDirectory = errors.New("not a directory")

var logger = logging.Get("walker")

// Options configures a walk.
type Options struct {
	// Exclude contains patterns for paths to skip. A pattern matches a path
	// equal to it, any path beneath it, or (as a glob) the basename or full path.
	Exclude []string

	// SkipFiles lists files that are never reported, compared by absolute path.
	SkipFiles []string

	// Workers is the number of directory-reading goroutines. Zero uses
	// fastwalk's default.
	Workers int
}

// Result is the outcome of a walk.
type Result struct {
	// Root is the root path as passed to Walk.
	Root string

	// Files holds every regular file found, sorted by path.
	Files []string

	// DirsScanned is the number of directories traversed.
	DirsScanned int64

	// Errors holds entries that could not be read; the walk continues past them.
	Errors []types.SkippedFile
}

// walk holds per-walk state shared by fastwalk's goroutines.
type walk struct {
	opts     Options
	root     string // as given; prefixes every reported path
	walkRoot string // cleaned root handed to fastwalk
	absRoot  string
	skip     map[string]struct{}

	dirs atomic.Int64

	mu     sync.Mutex
	files  []string
	errors []types.SkippedFile
}

// CheckDir verifies that path exists and is a directory.
func CheckDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", ErrNotDirectory, path)
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return nil
}

// Walk recursively collects every regular file under root, including
// symlinks that resolve to regular files. Symlinked directories are not
// followed. Unreadable entries are recorded in Result.Errors rather than
// failing the walk.
func Walk(ctx context.Context, root string, opts Options) (*Result, error) {
	if root == "" {
		root = "."
	}
	if err := CheckDir(root); err != nil {
		return nil, err
	}

	walkRoot := filepath.Clean(root)
	absRoot, err := filepath.Abs(walkRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	w := &walk{
		opts:     opts,
		root:     root,
		walkRoot: walkRoot,
		absRoot:  absRoot,
		skip:     make(map[string]struct{}, len(opts.SkipFiles)),
	}
	for _, p := range opts.SkipFiles {
		if abs, err := filepath.Abs(p); err == nil {
			w.skip[abs] = struct{}{}
		}
	}

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: opts.Workers,
	}

	logger.Debug("walk started", "root", root, "workers", opts.Workers)

	walkErr := fastwalk.Walk(&conf, walkRoot, w.callback(ctx))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}

	sort.Strings(w.files)
	sort.Slice(w.errors, func(i, j int) bool {
		return w.errors[i].Path < w.errors[j].Path
	})

	logger.Debug("walk finished", "root", root, "files", len(w.files), "dirs", w.dirs.Load(), "errors", len(w.errors))

	return &Result{
		Root:        root,
		Files:       w.files,
		DirsScanned: w.dirs.Load(),
		Errors:      w.errors,
	}, nil
}

// callback returns the fastwalk callback. It is invoked concurrently.
func (w *walk) callback(ctx context.Context) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == w.walkRoot {
				return err
			}
			w.addError(w.key(w.rel(path)), err)
			return nil
		}

		rel := w.rel(path)
		key := w.key(rel)

		if w.isExcluded(key) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			w.dirs.Add(1)
			return nil
		}

		switch {
		case d.Type().IsRegular():
		case d.Type()&fs.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil {
				w.addError(key, err)
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
		default:
			return nil
		}

		if _, ok := w.skip[filepath.Join(w.absRoot, rel)]; ok {
			return nil
		}

		w.mu.Lock()
		w.files = append(w.files, key)
		w.mu.Unlock()
		return nil
	}
}

// rel returns path relative to the walk root, or "." for the root itself.
func (w *walk) rel(path string) string {
	rel, err := filepath.Rel(w.walkRoot, path)
	if err != nil {
		return path
	}
	return rel
}

// key joins rel onto the root as given, adding a separator only when the
// root does not already end in one.
func (w *walk) key(rel string) string {
	if rel == "." {
		return w.root
	}
	if os.IsPathSeparator(w.root[len(w.root)-1]) {
		return w.root + rel
	}
	return w.root + string(filepath.Separator) + rel
}

func (w *walk) addError(path string, err error) {
	logger.Warn("cannot read entry", "path", path, "error", err)

	w.mu.Lock()
	w.errors = append(w.errors, types.SkippedFile{
		Path:  path,
		Error: err.Error(),
	})
	w.mu.Unlock()
}

// isExcluded checks if a path matches any exclusion pattern.
func (w *walk) isExcluded(path string) bool {
	if path == w.root {
		return false
	}
	for _, pattern := range w.opts.Exclude {
		if MatchesPattern(path, pattern) {
			return true
		}
	}
	return false
}

// MatchesPattern reports whether path matches a single exclusion pattern.
func MatchesPattern(path, pattern string) bool {
	if pattern == "" {
		return false
	}

	if path == pattern || strings.HasPrefix(path, pattern+string(filepath.Separator)) {
		return true
	}

	if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
		return true
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	return false
}
