package output

import (
	"bytes"
	"fmt"
)

// PlainFormatter writes one line per finding with no styling, suitable for
// logs and scripts.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	rep := r.Report

	for _, p := range rep.Added {
		fmt.Fprintf(w, "New file detected: %s\n", p)
	}
	for _, m := range rep.Modified {
		fmt.Fprintf(w, "File modified: %s\n", m.Path)
		fmt.Fprintf(w, "Original hash: %s\n", m.OldDigest)
		fmt.Fprintf(w, "Current hash: %s\n", m.NewDigest)
	}
	for _, p := range rep.Deleted {
		fmt.Fprintf(w, "File deleted: %s\n", p)
	}
	for _, s := range rep.Skipped {
		fmt.Fprintf(w, "File skipped: %s (%s)\n", s.Path, s.Error)
	}

	if rep.Matches {
		w.WriteString("All files match baseline!\n")
		return nil
	}

	fmt.Fprintf(w, "Changes detected! %d added, %d modified, %d deleted.\n",
		len(rep.Added), len(rep.Modified), len(rep.Deleted))
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
