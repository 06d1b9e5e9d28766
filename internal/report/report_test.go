package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlcheck/internal/harness"
	"github.com/roach88/gqlcheck/internal/verify"
)

func sampleResults() []*harness.Result {
	employees := harness.NewResult("employees")
	employees.Duration = 20 * time.Millisecond
	employees.Add(harness.CaseResult{Name: "select_names", Pass: true})
	employees.Add(harness.CaseResult{
		Name: "bad_syntax",
		Pass: true,
		Kind: verify.KindEngineError,
		Want: verify.KindEngineError,
	})

	numbers := harness.NewResult("numbers|pipes")
	numbers.Add(harness.CaseResult{Name: "a", Pass: true})
	numbers.Add(harness.CaseResult{
		Name:       "b",
		Kind:       verify.KindValueMismatch,
		Diagnostic: `row 1, col 1, field v: expected "<1>" but got "2"`,
	})
	numbers.Add(harness.CaseResult{Name: "c", Want: verify.KindEngineError})

	return []*harness.Result{employees, numbers}
}

func TestSummarize(t *testing.T) {
	got := Summarize(append(sampleResults(), nil))
	assert.Equal(t, Totals{Suites: 2, FailedSuites: 1, Cases: 5, Passed: 3, Failed: 2}, got)
	assert.False(t, got.Pass())
	assert.True(t, Summarize(nil).Pass())
}

func TestPrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	require.NoError(t, p.Results(sampleResults()))

	want := "PASS employees (2 cases, 20ms)\n" +
		"FAIL numbers|pipes (3 cases, 0s)\n" +
		"  FAIL b: got ValueMismatch, want success\n" +
		"      row 1, col 1, field v: expected \"<1>\" but got \"2\"\n" +
		"  FAIL c: got success, want EngineError\n" +
		"\nSummary: 2 suites, 5 cases: 3 passed, 2 failed\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Verbose = true
	require.NoError(t, p.Suite(sampleResults()[0]))

	want := "PASS employees (2 cases, 20ms)\n" +
		"  ok select_names\n" +
		"  ok bad_syntax (EngineError as expected)\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_Notes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Notes = func(r *harness.Result) []string {
		if r.Suite == "employees" {
			return []string{"golden snapshot updated"}
		}
		return nil
	}
	require.NoError(t, p.Results(sampleResults()[:1]))

	want := "PASS employees (2 cases, 20ms)\n" +
		"  golden snapshot updated\n" +
		"\nSummary: 1 suites, 2 cases: 2 passed, 0 failed\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_Colored(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	require.NoError(t, p.Suite(sampleResults()[1]))

	out := buf.String()
	assert.Contains(t, out, "\x1b[31mFAIL")
	assert.Contains(t, out, "\x1b[36mValueMismatch")
}

func TestColorEnabled_NonTerminal(t *testing.T) {
	assert.False(t, ColorEnabled(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ColorEnabled(f))
}

func TestMarkdown(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report.md", []byte(Markdown(sampleResults())))
}

func TestMarkdown_AllPassing(t *testing.T) {
	out := Markdown(sampleResults()[:1])
	assert.Contains(t, out, "**PASS**: 1 suites, 2 cases, 2 passed, 0 failed")
	assert.NotContains(t, out, "## ")
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleResults())
	require.NoError(t, err)

	html := string(out)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>employees</td>")
	assert.Contains(t, html, "numbers|pipes")
	assert.Contains(t, html, "&lt;1&gt;")
	assert.NotContains(t, html, "raw HTML omitted")
	assert.True(t, strings.HasSuffix(html, "</html>\n"))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	mdPath := filepath.Join(dir, "out", "report.md")
	require.NoError(t, WriteFile(mdPath, sampleResults()))
	data, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, Markdown(sampleResults()), string(data))

	htmlPath := filepath.Join(dir, "report.HTML")
	require.NoError(t, WriteFile(htmlPath, sampleResults()))
	data, err = os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<table>")

	err = WriteFile(filepath.Join(dir, "report.txt"), sampleResults())
	assert.ErrorContains(t, err, "unsupported report format")
}
