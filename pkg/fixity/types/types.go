// Package types provides core data types for the fixity integrity checker.
// It includes the baseline snapshot model, the change report produced by
// verification, and small formatting helpers shared by the CLI and formatters.
package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// TimestampLayout is the ISO-8601 layout used for the recorded_at field.
// It carries microsecond precision and no zone, which keeps baselines
// interchangeable with tools that write naive local timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// acceptedLayouts lists every timestamp form accepted when reading a baseline.
var acceptedLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// FileRecord is the recorded state of a single file in a baseline.
type FileRecord struct {
	// Digest is the lowercase hex SHA-256 of the file content.
	Digest string

	// LastModified is the filesystem mtime in seconds since the epoch.
	LastModified float64

	// RecordedAt is the wall-clock time the record was captured.
	RecordedAt time.Time
}

// fileRecordJSON is the on-disk shape of a FileRecord.
type fileRecordJSON struct {
	Hash         string  `json:"hash"`
	LastModified float64 `json:"last_modified"`
	Timestamp    string  `json:"timestamp"`
}

// MarshalJSON encodes the record with the hash/last_modified/timestamp fields.
func (r FileRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileRecordJSON{
		Hash:         r.Digest,
		LastModified: r.LastModified,
		Timestamp:    r.RecordedAt.Format(TimestampLayout),
	})
}

// UnmarshalJSON decodes a record, requiring the hash field.
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	var raw fileRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Hash == "" {
		return fmt.Errorf("record has no hash")
	}

	recordedAt, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}

	r.Digest = raw.Hash
	r.LastModified = raw.LastModified
	r.RecordedAt = recordedAt
	return nil
}

// ParseTimestamp parses an ISO-8601 timestamp in any accepted layout.
// Zoneless timestamps are interpreted in local time. An empty string
// yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// ModTimeSeconds converts a modification time to float seconds since the epoch.
func ModTimeSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Snapshot maps a file path to its recorded state.
type Snapshot map[string]FileRecord

// Paths returns the snapshot's paths in sorted order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a shallow copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for p, r := range s {
		out[p] = r
	}
	return out
}

// Modification describes a file whose digest changed since the baseline.
type Modification struct {
	// Path is the file path as recorded in the baseline.
	Path string `json:"path" yaml:"path"`

	// OldDigest is the digest stored in the baseline.
	OldDigest string `json:"old_digest" yaml:"old_digest"`

	// NewDigest is the digest computed now.
	NewDigest string `json:"new_digest" yaml:"new_digest"`
}

// SkippedFile is a file that was found but could not be digested.
type SkippedFile struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path" yaml:"path"`

	// Error is the error message describing what went wrong.
	Error string `json:"error" yaml:"error"`
}

// ChangeReport is the classified difference between a baseline and the
// current state of a directory.
type ChangeReport struct {
	// Root is the directory that was verified.
	Root string `json:"root"`

	// Matches is true when nothing was added, modified, or deleted.
	Matches bool `json:"matches"`

	// Added lists files present now but absent from the baseline.
	Added []string `json:"added"`

	// Modified lists files whose digest differs from the baseline.
	Modified []Modification `json:"modified"`

	// Deleted lists baseline files no longer present.
	Deleted []string `json:"deleted"`

	// Unchanged is the number of files whose digest matched.
	Unchanged int `json:"unchanged"`

	// Skipped lists files that could not be read and were left out.
	Skipped []SkippedFile `json:"skipped,omitempty"`

	// BytesHashed is the total number of bytes read while hashing.
	BytesHashed int64 `json:"bytes_hashed"`

	// Elapsed is the wall time of the verification run.
	Elapsed time.Duration `json:"elapsed"`
}

// Finalize sorts the report's lists and computes Matches.
func (r *ChangeReport) Finalize() {
	sort.Strings(r.Added)
	sort.Strings(r.Deleted)
	sort.Slice(r.Modified, func(i, j int) bool {
		return r.Modified[i].Path < r.Modified[j].Path
	})
	sort.Slice(r.Skipped, func(i, j int) bool {
		return r.Skipped[i].Path < r.Skipped[j].Path
	})
	r.Matches = len(r.Added) == 0 && len(r.Modified) == 0 && len(r.Deleted) == 0
}

// Changes returns the number of classified changes in the report.
func (r *ChangeReport) Changes() int {
	return len(r.Added) + len(r.Modified) + len(r.Deleted)
}

// BaselineResult summarizes a baseline establishment run.
type BaselineResult struct {
	// Root is the directory that was baselined.
	Root string `json:"root"`

	// Count is the number of files recorded in the new baseline.
	Count int `json:"count"`

	// Skipped lists files that could not be read and were left out.
	Skipped []SkippedFile `json:"skipped,omitempty"`

	// BytesHashed is the total number of bytes read while hashing.
	BytesHashed int64 `json:"bytes_hashed"`

	// Elapsed is the wall time of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// FormatSize converts a size in bytes to a human-readable string
// using binary (IEC) units.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
