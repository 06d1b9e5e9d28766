package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/roach88/gqlcheck/internal/harness"
)

// Markdown renders a summary table of every suite followed by one table of
// failing cases per failing suite.
func Markdown(results []*harness.Result) string {
	var b strings.Builder
	t := Summarize(results)

	status := "PASS"
	if !t.Pass() {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "# gqlcheck report\n\n")
	fmt.Fprintf(&b, "**%s**: %d suites, %d cases, %d passed, %d failed\n\n",
		status, t.Suites, t.Cases, t.Passed, t.Failed)

	b.WriteString("| Suite | Cases | Passed | Failed | Result |\n")
	b.WriteString("|---|---:|---:|---:|---|\n")
	for _, r := range results {
		if r == nil {
			continue
		}
		result := "PASS"
		if !r.Pass {
			result = "FAIL"
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n",
			mdCell(r.Suite), len(r.Cases), r.Passed(), r.Failed(), result)
	}

	for _, r := range results {
		if r == nil || r.Pass {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", mdCell(r.Suite))
		b.WriteString("| Case | Got | Want | Diagnostic |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, c := range r.Failures() {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				mdCell(c.Name), kindLabel(c), wantLabel(c), mdCell(c.Diagnostic))
		}
	}
	return b.String()
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\|`,
	`<`, `&lt;`,
	`>`, `&gt;`,
	"`", "\\`",
	"\r", " ",
	"\n", " ",
)

// mdCell escapes text for a single-line table cell.
func mdCell(s string) string {
	return mdEscaper.Replace(s)
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>gqlcheck report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
</style>
</head>
<body>
`

const htmlTail = `</body>
</html>
`

// HTML renders the Markdown report as a standalone HTML page.
func HTML(results []*harness.Result) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(results)), &body); err != nil {
		return nil, fmt.Errorf("failed to render html: %w", err)
	}

	var out bytes.Buffer
	out.WriteString(htmlHead)
	out.Write(body.Bytes())
	out.WriteString(htmlTail)
	return out.Bytes(), nil
}
