package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"splitcast/internal/runs"
	"splitcast/internal/segment"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func renderReport(w io.Writer, report *runs.Report) {
	colorize := shouldColorize(w)

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionHeader(fmt.Sprintf("Run %s", report.RunID), colorize))
	fmt.Fprintf(w, "  Source:   %s\n", report.Source)
	fmt.Fprintf(w, "  Duration: %.3fs at %d Hz\n", report.Duration, report.SampleRate)
	fmt.Fprintf(w, "  Segments: %d", report.SegmentCount)
	if failed := report.FailedSlices(); failed > 0 {
		fmt.Fprintf(w, " (%s)", colorText(fmt.Sprintf("%d failed", failed), ansiYellow, colorize))
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(report.Labels))
	for i := range report.Labels {
		entry := &report.Labels[i]
		rows = append(rows, []string{
			labelTitle(entry.Label),
			labelStatus(entry, colorize),
			pathOrDash(entry.Synchronized),
			pathOrDash(entry.Concatenated),
			pathOrDash(entry.Archive),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable(
			[]string{"Speaker", "Status", "Synchronized", "Concatenated", "Archive"},
			rows,
		))
	}

	if report.Stereo != "" {
		fmt.Fprintf(w, "  Stereo mix: %s\n", report.Stereo)
	}

	failureRows := make([][]string, 0)
	for i := range report.Labels {
		entry := &report.Labels[i]
		for _, failure := range entry.Failures {
			failureRows = append(failureRows, []string{
				labelTitle(entry.Label),
				fmt.Sprintf("%d", failure.Index),
				failure.TimeRange(),
				failure.Err,
			})
		}
	}
	if len(failureRows) > 0 {
		fmt.Fprintln(w, sectionHeader("Failed segments", colorize))
		fmt.Fprintln(w, renderTable(
			[]string{"Speaker", "Segment", "Range", "Error"},
			failureRows,
			1,
		))
	}
}

func labelStatus(entry *runs.LabelReport, colorize bool) string {
	switch {
	case entry.Absent:
		return "absent"
	case entry.Err != "":
		return colorText("failed: "+entry.Err, ansiRed, colorize)
	case len(entry.Failures) > 0:
		return colorText(fmt.Sprintf("partial (%d/%d segments)", entry.Succeeded, entry.Attempted), ansiYellow, colorize)
	default:
		return colorText("ok", ansiGreen, colorize)
	}
}

func labelTitle(label segment.Label) string {
	return cases.Title(language.Und).String(string(label))
}

func pathOrDash(path string) string {
	if path == "" {
		return "-"
	}
	return path
}

func sectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return colorText(line, ansiBlue, colorize)
}

func colorText(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
