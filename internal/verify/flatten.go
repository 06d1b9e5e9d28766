package verify

import "github.com/roach88/gqlcheck/internal/datatable"

// Field identifies which half of a cell a value came from.
type Field string

const (
	FieldV Field = "v"
	FieldF Field = "f"
)

// Observed is one present cell field in consumption order.
type Observed struct {
	Row   int
	Col   int
	Field Field
	Value datatable.Value
}

// Flatten walks the table in consumption order and returns every present
// cell field. Absent fields are skipped.
func Flatten(t *datatable.Table) []Observed {
	if t == nil {
		return nil
	}
	var out []Observed
	for r, row := range t.Rows {
		for c, cell := range row.C {
			if cell.HasV() {
				out = append(out, Observed{Row: r, Col: c, Field: FieldV, Value: cell.V})
			}
			if cell.HasF() {
				out = append(out, Observed{Row: r, Col: c, Field: FieldF, Value: cell.F})
			}
		}
	}
	return out
}

// ExpectedFrom returns the expected-value list that a table satisfies
// exactly. Verify(specs, ExpectedFrom(t), resp) succeeds whenever resp
// carries t and specs match its columns.
func ExpectedFrom(t *datatable.Table) []string {
	obs := Flatten(t)
	out := make([]string, len(obs))
	for i, o := range obs {
		out[i] = datatable.Stringify(o.Value)
	}
	return out
}
