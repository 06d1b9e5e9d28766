package verify

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlcheck/internal/datatable"
)

// randomTable builds a table with a random shape and random cell contents,
// including absent and null fields.
func randomTable(f *gofakeit.Faker) ([]ColumnSpec, *datatable.Response) {
	ncols := f.Number(1, 5)
	specs := make([]ColumnSpec, ncols)
	types := []string{WireString, WireNumber, WireBoolean, WireDate}
	for i := range specs {
		specs[i] = ColumnSpec{
			ID:    f.LetterN(3),
			Label: f.Word(),
			Type:  types[f.Number(0, len(types)-1)],
		}
		if f.Bool() {
			specs[i].Pattern = "#,##0." + f.DigitN(2)
		}
	}

	nrows := f.Number(0, 6)
	rows := make([]datatable.Row, nrows)
	for r := range rows {
		cells := make([]datatable.Cell, ncols)
		for c := range cells {
			cells[c] = randomCell(f, specs[c].Type)
		}
		rows[r] = datatable.Row{C: cells}
	}

	return specs, okResponse(columnsOf(specs), rows...)
}

func randomCell(f *gofakeit.Faker, typ string) datatable.Cell {
	var cell datatable.Cell
	switch f.Number(0, 4) {
	case 0:
		return cell
	case 1:
		cell.V = datatable.Null{}
		return cell
	}

	switch typ {
	case WireNumber:
		if f.Bool() {
			cell.V = datatable.NumberFromInt(int64(f.Number(-1000, 1000)))
		} else {
			n, _ := datatable.NumberFromFloat(f.Float64Range(-1e6, 1e6))
			cell.V = n
		}
	case WireBoolean:
		cell.V = datatable.Bool(f.Bool())
	default:
		cell.V = datatable.String(f.Word())
	}
	if f.Bool() {
		cell.F = datatable.String(f.Sentence(2))
	}
	if f.Number(0, 5) == 0 {
		cell.V = nil
	}
	return cell
}

func TestProperty_ExpectedFromAlwaysPasses(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		f := gofakeit.New(seed)
		specs, resp := randomTable(f)

		expected := ExpectedFrom(resp.Table)
		require.NoError(t, Verify(specs, expected, resp), "seed %d", seed)
		assert.Len(t, expected, len(Flatten(resp.Table)), "seed %d", seed)
	}
}

func TestProperty_ArityErrors(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		f := gofakeit.New(seed)
		specs, resp := randomTable(f)
		expected := ExpectedFrom(resp.Table)

		extra := append(append([]string{}, expected...), f.Word())
		assert.Equal(t, &ExcessExpectedValues{Consumed: len(expected), Total: len(extra)},
			Verify(specs, extra, resp), "seed %d", seed)

		if len(expected) == 0 {
			continue
		}
		err := Verify(specs, expected[:len(expected)-1], resp)
		assert.Equal(t, KindInsufficientValues, KindOf(err), "seed %d", seed)
	}
}

func TestProperty_ColumnCountMismatchIsSchemaError(t *testing.T) {
	for seed := int64(1); seed <= 100; seed++ {
		f := gofakeit.New(seed)
		specs, resp := randomTable(f)

		more := append(append([]ColumnSpec{}, specs...), ColumnSpec{ID: f.LetterN(4)})
		err := Verify(more, ExpectedFrom(resp.Table), resp)
		assert.Equal(t, KindSchemaMismatch, KindOf(err), "seed %d", seed)

		err = Verify(specs[:len(specs)-1], ExpectedFrom(resp.Table), resp)
		assert.Equal(t, KindSchemaMismatch, KindOf(err), "seed %d", seed)
	}
}

func TestFlattenOrder(t *testing.T) {
	table := &datatable.Table{
		Cols: []datatable.Column{{ID: "a"}, {ID: "b"}},
		Rows: []datatable.Row{
			{C: []datatable.Cell{{V: datatable.String("r0c0"), F: datatable.String("R0C0")}, {}}},
			{C: []datatable.Cell{{F: datatable.String("R1C0")}, {V: datatable.Number("7")}}},
		},
	}

	obs := Flatten(table)
	require.Len(t, obs, 4)
	assert.Equal(t, Observed{Row: 0, Col: 0, Field: FieldV, Value: datatable.String("r0c0")}, obs[0])
	assert.Equal(t, Observed{Row: 0, Col: 0, Field: FieldF, Value: datatable.String("R0C0")}, obs[1])
	assert.Equal(t, Observed{Row: 1, Col: 0, Field: FieldF, Value: datatable.String("R1C0")}, obs[2])
	assert.Equal(t, Observed{Row: 1, Col: 1, Field: FieldV, Value: datatable.Number("7")}, obs[3])

	assert.Equal(t, []string{"r0c0", "R0C0", "R1C0", "7"}, ExpectedFrom(table))
	assert.Nil(t, Flatten(nil))
}
