package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// jsonOutput is the JSON document layout.
type jsonOutput struct {
	Matches  bool                 `json:"matches"`
	Added    []string             `json:"added"`
	Modified []types.Modification `json:"modified"`
	Deleted  []string             `json:"deleted"`
	Skipped  []types.SkippedFile  `json:"skipped"`
	Stats    jsonStats            `json:"stats"`
	Meta     jsonMeta             `json:"meta"`
}

type jsonStats struct {
	Unchanged   int    `json:"unchanged"`
	BytesHashed int64  `json:"bytes_hashed"`
	Duration    string `json:"duration"`
}

type jsonMeta struct {
	Root          string `json:"root"`
	Baseline      string `json:"baseline"`
	BaselineFiles int    `json:"baseline_files"`
}

// JSONFormatter formats the report as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	rep := r.Report
	out := jsonOutput{
		Matches:  rep.Matches,
		Added:    nonNil(rep.Added),
		Modified: rep.Modified,
		Deleted:  nonNil(rep.Deleted),
		Skipped:  rep.Skipped,
		Stats: jsonStats{
			Unchanged:   rep.Unchanged,
			BytesHashed: rep.BytesHashed,
			Duration:    rep.Elapsed.String(),
		},
		Meta: jsonMeta{
			Root:          rep.Root,
			Baseline:      r.Baseline,
			BaselineFiles: r.BaselineFiles,
		},
	}
	if out.Modified == nil {
		out.Modified = []types.Modification{}
	}
	if out.Skipped == nil {
		out.Skipped = []types.SkippedFile{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// nonNil keeps empty lists as [] rather than null in encoded output.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)
