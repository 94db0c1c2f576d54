package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// PrettyFormatter renders a styled report for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	rep := r.Report

	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if rep.Changes() == 0 && len(rep.Skipped) == 0 {
		w.WriteString(MutedStyle.Render("  No differences from baseline"))
		w.WriteString("\n")
	}

	f.writePaths(w, "Added", AddedStyle, "+", rep.Added)
	f.writeModified(w, rep.Modified)
	f.writePaths(w, "Deleted", DeletedStyle, "-", rep.Deleted)
	f.writeSkipped(w, rep.Skipped)

	w.WriteString(f.formatFooter(rep))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	rep := r.Report
	lines := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Directory:"), ValueStyle.Render(rep.Root)),
		fmt.Sprintf("%s %s  %s %s",
			LabelStyle.Render("Baseline:"), ValueStyle.Render(r.Baseline),
			LabelStyle.Render("Recorded:"), ValueStyle.Render(fmt.Sprintf("%d files", r.BaselineFiles))),
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) writePaths(w *bytes.Buffer, title string, style lipgloss.Style, marker string, paths []string) {
	if len(paths) == 0 {
		return
	}
	w.WriteString(SectionStyle.Render(fmt.Sprintf("%s (%d)", title, len(paths))))
	w.WriteString("\n")
	for _, p := range paths {
		fmt.Fprintf(w, "  %s %s\n", style.Render(marker), PathStyle.Render(p))
	}
}

func (f *PrettyFormatter) writeModified(w *bytes.Buffer, mods []types.Modification) {
	if len(mods) == 0 {
		return
	}
	w.WriteString(SectionStyle.Render(fmt.Sprintf("Modified (%d)", len(mods))))
	w.WriteString("\n")
	for _, m := range mods {
		fmt.Fprintf(w, "  %s %s\n", ModifiedStyle.Render("~"), PathStyle.Render(m.Path))
		fmt.Fprintf(w, "      %s %s\n", LabelStyle.Render("was"), MutedStyle.Render(m.OldDigest))
		fmt.Fprintf(w, "      %s %s\n", LabelStyle.Render("now"), MutedStyle.Render(m.NewDigest))
	}
}

func (f *PrettyFormatter) writeSkipped(w *bytes.Buffer, skipped []types.SkippedFile) {
	if len(skipped) == 0 {
		return
	}
	w.WriteString(SectionStyle.Render(fmt.Sprintf("Skipped (%d)", len(skipped))))
	w.WriteString("\n")
	for _, s := range skipped {
		fmt.Fprintf(w, "  %s %s %s\n", MutedStyle.Render("?"), PathStyle.Render(s.Path), MutedStyle.Render(s.Error))
	}
}

func (f *PrettyFormatter) formatFooter(rep *types.ChangeReport) string {
	var verdict string
	if rep.Matches {
		verdict = MatchStyle.Render("All files match baseline")
	} else {
		verdict = MismatchStyle.Render(fmt.Sprintf("Changes detected: %d added, %d modified, %d deleted",
			len(rep.Added), len(rep.Modified), len(rep.Deleted)))
	}

	parts := []string{
		verdict,
		fmt.Sprintf("%s %s", LabelStyle.Render("Unchanged:"), ValueStyle.Render(humanize.Comma(int64(rep.Unchanged)))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Hashed:"), SizeStyle.Render(types.FormatSize(rep.BytesHashed))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Took:"), ValueStyle.Render(formatElapsed(rep.Elapsed))),
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

// formatElapsed rounds a duration for display.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
