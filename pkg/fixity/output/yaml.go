package output

import (
	"bytes"

	"github.com/jamesainslie/fixity/pkg/fixity/types"
	"gopkg.in/yaml.v3"
)

type yamlOutput struct {
	Matches  bool                 `yaml:"matches"`
	Added    []string             `yaml:"added"`
	Modified []types.Modification `yaml:"modified"`
	Deleted  []string             `yaml:"deleted"`
	Skipped  []types.SkippedFile  `yaml:"skipped,omitempty"`
	Stats    yamlStats            `yaml:"stats"`
	Meta     yamlMeta             `yaml:"meta"`
}

type yamlStats struct {
	Unchanged   int    `yaml:"unchanged"`
	BytesHashed int64  `yaml:"bytes_hashed"`
	Duration    string `yaml:"duration"`
}

type yamlMeta struct {
	Root          string `yaml:"root"`
	Baseline      string `yaml:"baseline"`
	BaselineFiles int    `yaml:"baseline_files"`
}

// YAMLFormatter formats the report as YAML with the same layout as JSONFormatter.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	rep := r.Report
	out := yamlOutput{
		Matches:  rep.Matches,
		Added:    nonNil(rep.Added),
		Modified: rep.Modified,
		Deleted:  nonNil(rep.Deleted),
		Skipped:  rep.Skipped,
		Stats: yamlStats{
			Unchanged:   rep.Unchanged,
			BytesHashed: rep.BytesHashed,
			Duration:    rep.Elapsed.String(),
		},
		Meta: yamlMeta{
			Root:          rep.Root,
			Baseline:      r.Baseline,
			BaselineFiles: r.BaselineFiles,
		},
	}
	if out.Modified == nil {
		out.Modified = []types.Modification{}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
