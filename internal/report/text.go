package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/roach88/gqlcheck/internal/harness"
)

// ColorEnabled reports whether w is a terminal that should get colors.
// NO_COLOR and non-TTY stdout disable colors globally through fatih/color.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok || color.NoColor {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Printer writes suite results as terminal text.
type Printer struct {
	w io.Writer

	// Verbose lists passing cases as well as failures.
	Verbose bool

	// Notes, when set, returns extra lines printed under a suite's cases.
	Notes func(r *harness.Result) []string

	pass  *color.Color
	fail  *color.Color
	label *color.Color
	dim   *color.Color
	bold  *color.Color
}

// NewPrinter creates a Printer. colored forces colors on or off regardless
// of the terminal, see ColorEnabled.
func NewPrinter(w io.Writer, colored bool) *Printer {
	p := &Printer{
		w:     w,
		pass:  color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		label: color.New(color.FgCyan),
		dim:   color.New(color.FgHiBlack),
		bold:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.pass, p.fail, p.label, p.dim, p.bold} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Suite writes one suite's outcome: a status line followed by its failing
// cases (all cases when Verbose).
func (p *Printer) Suite(r *harness.Result) error {
	status := p.pass.Sprint("PASS")
	if !r.Pass {
		status = p.fail.Sprint("FAIL")
	}

	lines := []string{fmt.Sprintf("%s %s %s",
		status,
		p.bold.Sprint(r.Suite),
		p.dim.Sprintf("(%d cases, %s)", len(r.Cases), formatDuration(r.Duration)),
	)}

	for _, c := range r.Cases {
		if c.Pass && !p.Verbose {
			continue
		}
		lines = append(lines, p.caseLine(c))
	}
	if p.Notes != nil {
		for _, n := range p.Notes(r) {
			lines = append(lines, "  "+p.dim.Sprint(n))
		}
	}
	return writeLines(p.w, lines)
}

func (p *Printer) caseLine(c harness.CaseResult) string {
	if c.Pass {
		line := fmt.Sprintf("  %s %s", p.pass.Sprint("ok"), c.Name)
		if c.Kind != "" {
			line += p.dim.Sprintf(" (%s as expected)", c.Kind)
		}
		return line
	}

	line := fmt.Sprintf("  %s %s: got %s, want %s",
		p.fail.Sprint("FAIL"),
		c.Name,
		p.label.Sprint(kindLabel(c)),
		p.label.Sprint(wantLabel(c)),
	)
	if c.Diagnostic != "" {
		line += "\n      " + c.Diagnostic
	}
	return line
}

// Summary writes the totals line.
func (p *Printer) Summary(t Totals) error {
	passed := p.pass.Sprintf("%d passed", t.Passed)
	failed := fmt.Sprintf("%d failed", t.Failed)
	if t.Failed > 0 {
		failed = p.fail.Sprint(failed)
	}
	_, err := fmt.Fprintf(p.w, "\n%s %d suites, %d cases: %s, %s\n",
		p.bold.Sprint("Summary:"), t.Suites, t.Cases, passed, failed)
	return err
}

// Results writes every suite followed by the summary.
func (p *Printer) Results(results []*harness.Result) error {
	for _, r := range results {
		if r == nil {
			continue
		}
		if err := p.Suite(r); err != nil {
			return err
		}
	}
	return p.Summary(Summarize(results))
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.String()
	}
	return d.Round(time.Millisecond).String()
}
