// Package engine reconciles a directory tree against its recorded baseline.
//
// An Engine loads the baseline once when it is created. EstablishBaseline
// replaces it with a fresh walk of a directory and persists the result;
// VerifyIntegrity compares a fresh walk against it and classifies every
// difference as added, modified, or deleted without changing it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jamesainslie/fixity/pkg/fixity/digest"
	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
	"github.com/jamesainslie/fixity/pkg/fixity/walker"
)

var logger = logging.Get("engine")

// Store is the persistence the engine needs for its snapshot.
type Store interface {
	Load() types.Snapshot
	Save(types.Snapshot) error
	Path() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithExclude sets path patterns skipped during walks.
func WithExclude(patterns []string) Option {
	return func(e *Engine) { e.exclude = patterns }
}

// WithWorkers sets the number of directory-reading goroutines.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithClock overrides the wall clock used for recorded timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine owns the in-memory snapshot for one baseline file.
// It is not safe for concurrent use.
type Engine struct {
	store    Store
	snapshot types.Snapshot
	exclude  []string
	workers  int
	now      func() time.Time
}

// New creates an Engine and loads the current baseline from store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snapshot = store.Load()
	return e
}

// Snapshot returns a copy of the in-memory baseline.
func (e *Engine) Snapshot() types.Snapshot {
	return e.snapshot.Clone()
}

// hashed is the outcome of digesting one walked file.
type hashed struct {
	path   string
	digest string
	size   int64
	err    error
}

// scan walks dir and digests every file found. All files are hashed before
// scan returns, so callers classify against a complete picture.
func (e *Engine) scan(ctx context.Context, dir string) (*walker.Result, []hashed, error) {
	res, err := walker.Walk(ctx, dir, walker.Options{
		Exclude:   e.exclude,
		SkipFiles: e.ownFiles(),
		Workers:   e.workers,
	})
	if err != nil {
		return nil, nil, err
	}

	out := make([]hashed, 0, len(res.Files))
	for _, path := range res.Files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		sum, n, err := digest.HashFileSize(path)
		if err != nil {
			if errors.Is(err, digest.ErrNotFound) {
				logger.Warn("file vanished before hashing", "path", path)
			} else {
				logger.Warn("cannot hash file", "path", path, "error", err)
			}
		}
		out = append(out, hashed{path: path, digest: sum, size: n, err: err})
	}
	return res, out, nil
}

// ownFiles lists the files the engine writes, which must never be
// baselined themselves.
func (e *Engine) ownFiles() []string {
	p := e.store.Path()
	return []string{p, p + ".tmp"}
}

// EstablishBaseline records every readable file under dir as the new
// baseline, discarding the previous one, and persists it. Files that cannot
// be read are left out and listed in the result. A persistence failure is
// returned as an error.
func (e *Engine) EstablishBaseline(ctx context.Context, dir string) (*types.BaselineResult, error) {
	start := time.Now()

	res, files, err := e.scan(ctx, dir)
	if err != nil {
		return nil, err
	}

	result := &types.BaselineResult{
		Root:    res.Root,
		Skipped: append([]types.SkippedFile(nil), res.Errors...),
	}

	snap := make(types.Snapshot, len(files))
	for _, f := range files {
		if f.err != nil {
			result.Skipped = append(result.Skipped, types.SkippedFile{Path: f.path, Error: f.err.Error()})
			continue
		}

		info, err := os.Stat(f.path)
		if err != nil {
			logger.Warn("cannot stat file", "path", f.path, "error", err)
			result.Skipped = append(result.Skipped, types.SkippedFile{Path: f.path, Error: err.Error()})
			continue
		}

		snap[f.path] = types.FileRecord{
			Digest:       f.digest,
			LastModified: types.ModTimeSeconds(info.ModTime()),
			RecordedAt:   e.now().Local().Truncate(time.Microsecond),
		}
		result.BytesHashed += f.size
	}

	if err := e.store.Save(snap); err != nil {
		return nil, fmt.Errorf("saving baseline: %w", err)
	}
	e.snapshot = snap

	result.Count = len(snap)
	result.Elapsed = time.Since(start)

	logger.Info("baseline established", "root", res.Root, "files", result.Count, "skipped", len(result.Skipped))
	return result, nil
}

// VerifyIntegrity compares the files under dir against the baseline.
// The baseline is neither modified nor saved. Files that cannot be read are
// excluded from classification and listed in ChangeReport.Skipped.
func (e *Engine) VerifyIntegrity(ctx context.Context, dir string) (*types.ChangeReport, error) {
	start := time.Now()

	res, files, err := e.scan(ctx, dir)
	if err != nil {
		return nil, err
	}

	report := &types.ChangeReport{
		Root:     res.Root,
		Added:    []string{},
		Modified: []types.Modification{},
		Deleted:  []string{},
		Skipped:  append([]types.SkippedFile(nil), res.Errors...),
	}

	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		seen[f.path] = struct{}{}

		if f.err != nil {
			report.Skipped = append(report.Skipped, types.SkippedFile{Path: f.path, Error: f.err.Error()})
			continue
		}
		report.BytesHashed += f.size

		rec, ok := e.snapshot[f.path]
		switch {
		case !ok:
			logger.Info("new file detected", "path", f.path)
			report.Added = append(report.Added, f.path)
		case rec.Digest != f.digest:
			logger.Info("file modified", "path", f.path, "original", rec.Digest, "current", f.digest)
			report.Modified = append(report.Modified, types.Modification{
				Path:      f.path,
				OldDigest: rec.Digest,
				NewDigest: f.digest,
			})
		default:
			report.Unchanged++
		}
	}

	for _, path := range e.snapshot.Paths() {
		if _, ok := seen[path]; !ok {
			logger.Info("file deleted", "path", path)
			report.Deleted = append(report.Deleted, path)
		}
	}

	report.Finalize()
	report.Elapsed = time.Since(start)

	logger.Info("verification finished",
		"root", res.Root,
		"matches", report.Matches,
		"added", len(report.Added),
		"modified", len(report.Modified),
		"deleted", len(report.Deleted),
		"skipped", len(report.Skipped),
	)
	return report, nil
}
