package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gqlcheck/internal/datatable"
	"github.com/roach88/gqlcheck/internal/verify"
)

// readResponse decodes engine output from a file, or stdin for "" and "-".
func readResponse(cmd *cobra.Command, input string) (*datatable.Response, error) {
	var r io.Reader
	name := input
	if input == "" || input == "-" {
		r = cmd.InOrStdin()
		name = "stdin"
	} else {
		f, err := os.Open(input)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		r = f
	}

	resp, err := datatable.Decode(r)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to parse response from %s", name), err)
	}
	return resp, nil
}

// describeResponse writes a readable dump of a decoded response.
func describeResponse(w io.Writer, resp *datatable.Response) {
	fmt.Fprintf(w, "Status: %s\n", resp.Status)
	if !resp.OK() {
		fmt.Fprintf(w, "Message: %s\n", resp.ErrorMessage())
		return
	}

	cols := resp.Columns()
	fmt.Fprintf(w, "Columns: %d\n", len(cols))
	for i, c := range cols {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, verify.SpecFromColumn(c).Encode())
	}

	rows := resp.Rows()
	fmt.Fprintf(w, "Rows: %d\n", len(rows))
	for i, row := range rows {
		cells := make([]string, len(row.C))
		for j, c := range row.C {
			cells[j] = formatCell(c)
		}
		fmt.Fprintf(w, "  [%d] %s\n", i+1, strings.Join(cells, " | "))
	}
}

func formatCell(c datatable.Cell) string {
	var parts []string
	if c.HasV() {
		parts = append(parts, "v="+datatable.Stringify(c.V))
	}
	if c.HasF() {
		parts = append(parts, fmt.Sprintf("f=%q", datatable.Stringify(c.F)))
	}
	if len(parts) == 0 {
		return "null"
	}
	return strings.Join(parts, " ")
}
