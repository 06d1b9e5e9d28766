// Package report renders suite results for people: colored terminal text,
// a Markdown summary and the same summary as HTML.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/gqlcheck/internal/harness"
)

// Totals aggregates counts over a set of suite results.
type Totals struct {
	Suites       int
	FailedSuites int
	Cases        int
	Passed       int
	Failed       int
}

// Pass reports whether every suite passed.
func (t Totals) Pass() bool {
	return t.FailedSuites == 0
}

// Summarize counts suites and cases.
func Summarize(results []*harness.Result) Totals {
	var t Totals
	for _, r := range results {
		if r == nil {
			continue
		}
		t.Suites++
		if !r.Pass {
			t.FailedSuites++
		}
		t.Cases += len(r.Cases)
		t.Passed += r.Passed()
		t.Failed += r.Failed()
	}
	return t
}

// WriteFile writes a report to path, choosing Markdown or HTML by extension.
func WriteFile(path string, results []*harness.Result) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		data = []byte(Markdown(results))
	case ".html", ".htm":
		data, err = HTML(results)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported report format %q (want .md or .html)", filepath.Ext(path))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func wantLabel(c harness.CaseResult) string {
	if c.Want == "" {
		return "success"
	}
	return string(c.Want)
}

func kindLabel(c harness.CaseResult) string {
	if c.Kind == "" {
		return "success"
	}
	return string(c.Kind)
}

// writeLines writes lines joined by newlines, with a trailing newline.
func writeLines(w io.Writer, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
