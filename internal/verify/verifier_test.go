package verify

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlcheck/internal/datatable"
)

var specA = []ColumnSpec{{ID: "a", Label: "A", Type: TypeString, Pattern: ""}}

func okResponse(cols []datatable.Column, rows ...datatable.Row) *datatable.Response {
	return &datatable.Response{
		Status: datatable.StatusOK,
		Table:  &datatable.Table{Cols: cols, Rows: rows},
	}
}

func columnsOf(specs []ColumnSpec) []datatable.Column {
	cols := make([]datatable.Column, len(specs))
	for i, s := range specs {
		cols[i] = datatable.Column{ID: s.ID, Label: s.Label, Type: s.Type, Pattern: s.Pattern}
	}
	return cols
}

func row(cells ...datatable.Cell) datatable.Row {
	return datatable.Row{C: cells}
}

func TestVerify_SingleStringCell(t *testing.T) {
	resp := okResponse(columnsOf(specA), row(datatable.Cell{V: datatable.String("hello")}))

	require.NoError(t, Verify(specA, []string{"hello"}, resp))
}

func TestVerify_ValueMismatch(t *testing.T) {
	resp := okResponse(columnsOf(specA), row(datatable.Cell{V: datatable.String("hello")}))

	err := Verify(specA, []string{"world"}, resp)
	require.Error(t, err)

	var vm *ValueMismatch
	require.True(t, errors.As(err, &vm))
	assert.Equal(t, &ValueMismatch{Row: 0, Col: 0, Field: FieldV, Expected: "world", Actual: "hello"}, vm)
	assert.True(t, errors.Is(err, ErrValueMismatch))
	assert.Equal(t, `row 1, col 1, field v: expected "world" but got "hello"`, err.Error())
}

func TestVerify_RawThenFormatted(t *testing.T) {
	specs := []ColumnSpec{{ID: "x", Label: "X", Type: WireNumber}}
	resp := okResponse(columnsOf(specs),
		row(datatable.Cell{V: datatable.Number("3.5"), F: datatable.String("3.50")}))

	require.NoError(t, Verify(specs, []string{"3.5", "3.50"}, resp))

	// swapped order fails on the raw value
	err := Verify(specs, []string{"3.50", "3.5"}, resp)
	var vm *ValueMismatch
	require.True(t, errors.As(err, &vm))
	assert.Equal(t, FieldV, vm.Field)
	assert.Equal(t, "3.50", vm.Expected)
	assert.Equal(t, "3.5", vm.Actual)
}

func TestVerify_EngineErrorSkipsOtherChecks(t *testing.T) {
	resp := &datatable.Response{Status: "error", Message: "syntax error"}

	// specs and expected would both fail if they were checked
	err := Verify([]ColumnSpec{{ID: "a"}, {ID: "b"}}, []string{"1", "2", "3"}, resp)

	var ee *EngineError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "syntax error", ee.Message)
	assert.Equal(t, "error", ee.Status)
	assert.Equal(t, KindEngineError, KindOf(err))
	assert.Equal(t, "query failed: syntax error", err.Error())
}

func TestVerify_EngineErrorFromErrorsList(t *testing.T) {
	resp := &datatable.Response{
		Status: "error",
		Errors: []datatable.ErrorDetail{{Reason: "invalid_query", Message: "unknown column foo"}},
	}
	err := Verify(nil, nil, resp)
	assert.Equal(t, "query failed [invalid_query]: unknown column foo", err.Error())

	err = Verify(nil, nil, &datatable.Response{Status: "warning"})
	assert.Equal(t, `query failed: status "warning"`, err.Error())

	err = Verify(nil, nil, nil)
	assert.True(t, errors.Is(err, ErrEngine))
}

func TestVerify_SchemaMismatchBeatsFieldErrors(t *testing.T) {
	specs := []ColumnSpec{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	// the two columns also disagree on every field
	resp := okResponse([]datatable.Column{{ID: "x", Label: "X"}, {ID: "y", Label: "Y"}})

	err := Verify(specs, nil, resp)

	var sm *SchemaMismatch
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, 3, sm.ExpectedCount)
	assert.Equal(t, 2, sm.ActualCount)
	assert.Equal(t, "expected 3 columns, got 2", err.Error())
}

func TestVerify_ColumnMismatchOrder(t *testing.T) {
	specs := []ColumnSpec{
		{ID: "name", Label: "Name", Type: WireString},
		{ID: "salary", Label: "Salary", Type: WireNumber, Pattern: "#,##0.00"},
	}

	tests := []struct {
		name  string
		mod   func(cols []datatable.Column)
		index int
		field string
	}{
		{"id", func(c []datatable.Column) { c[0].ID = "nom" }, 0, "id"},
		{"label", func(c []datatable.Column) { c[1].Label = "" }, 1, "label"},
		{"type", func(c []datatable.Column) { c[1].Type = WireString }, 1, "type"},
		{"pattern", func(c []datatable.Column) { c[1].Pattern = "0" }, 1, "pattern"},
		{"first field wins", func(c []datatable.Column) { c[1].Type = "x"; c[1].ID = "y" }, 1, "id"},
		{"first column wins", func(c []datatable.Column) { c[1].ID = "y"; c[0].Pattern = "p" }, 0, "pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := columnsOf(specs)
			tt.mod(cols)

			err := Verify(specs, nil, okResponse(cols))

			var cm *ColumnMismatch
			require.True(t, errors.As(err, &cm), "got %v", err)
			assert.Equal(t, tt.index, cm.Index)
			assert.Equal(t, tt.field, cm.Field)
		})
	}
}

func TestVerify_ReorderedSpecs(t *testing.T) {
	specs := []ColumnSpec{
		{ID: "a", Label: "A", Type: WireString},
		{ID: "b", Label: "B", Type: WireNumber},
	}
	resp := okResponse(columnsOf(specs))
	swapped := []ColumnSpec{specs[1], specs[0]}

	err := Verify(swapped, nil, resp)

	assert.Equal(t, &ColumnMismatch{Index: 0, Field: "id", Expected: "b", Actual: "a"}, err)
}

func TestVerify_Stringification(t *testing.T) {
	specs := []ColumnSpec{{ID: "n"}, {ID: "b"}, {ID: "z"}}
	resp := okResponse(columnsOf(specs), row(
		datatable.Cell{V: datatable.Number("42")},
		datatable.Cell{V: datatable.Bool(true), F: datatable.String("Yes")},
		datatable.Cell{V: datatable.Null{}},
	))

	require.NoError(t, Verify(specs, []string{"42", "true", "Yes", "null"}, resp))

	err := Verify(specs, []string{"42", "True", "Yes", "null"}, resp)
	assert.Equal(t, &ValueMismatch{Row: 0, Col: 1, Field: FieldV, Expected: "True", Actual: "true"}, err)

	err = Verify(specs, []string{"42.0", "true", "Yes", "null"}, resp)
	assert.Equal(t, KindValueMismatch, KindOf(err))
}

func TestVerify_AbsentFieldsConsumeNothing(t *testing.T) {
	specs := []ColumnSpec{{ID: "a"}, {ID: "b"}}
	resp := okResponse(columnsOf(specs),
		row(datatable.Cell{}, datatable.Cell{F: datatable.String("n/a")}),
		row(datatable.Cell{V: datatable.String("x")}, datatable.Cell{}),
	)

	require.NoError(t, Verify(specs, []string{"n/a", "x"}, resp))
}

func TestVerify_Arity(t *testing.T) {
	specs := []ColumnSpec{{ID: "a"}, {ID: "b"}}
	resp := okResponse(columnsOf(specs),
		row(datatable.Cell{V: datatable.Number("1")}, datatable.Cell{V: datatable.Number("2"), F: datatable.String("two")}),
		row(datatable.Cell{V: datatable.Number("3")}, datatable.Cell{F: datatable.String("four")}),
	)
	full := []string{"1", "2", "two", "3", "four"}
	require.NoError(t, Verify(specs, full, resp))

	t.Run("one fewer", func(t *testing.T) {
		err := Verify(specs, full[:4], resp)
		assert.Equal(t, &InsufficientExpectedValues{Row: 1, Col: 1, Field: FieldF, Consumed: 4}, err)
		assert.True(t, errors.Is(err, ErrInsufficientValues))
		assert.Equal(t, "row 2, col 2, field f: not enough values (4 consumed)", err.Error())
	})

	t.Run("one extra", func(t *testing.T) {
		err := Verify(specs, append(append([]string{}, full...), "5"), resp)
		assert.Equal(t, &ExcessExpectedValues{Consumed: 5, Total: 6}, err)
		assert.True(t, errors.Is(err, ErrExcessValues))
	})

	t.Run("none for empty table", func(t *testing.T) {
		require.NoError(t, Verify(specs, nil, okResponse(columnsOf(specs))))
		err := Verify(specs, []string{"x"}, okResponse(columnsOf(specs)))
		assert.Equal(t, &ExcessExpectedValues{Consumed: 0, Total: 1}, err)
	})

	t.Run("mismatch before insufficiency", func(t *testing.T) {
		err := Verify(specs, []string{"1", "9"}, resp)
		assert.Equal(t, KindValueMismatch, KindOf(err))
	})
}

func TestVerify_DoesNotModifyInputs(t *testing.T) {
	resp := okResponse(columnsOf(specA), row(datatable.Cell{V: datatable.String("hello")}))
	expected := []string{"hello", "extra"}

	_ = Verify(specA, expected, resp)

	assert.Equal(t, []string{"hello", "extra"}, expected)
	assert.Equal(t, datatable.String("hello"), resp.Table.Rows[0].C[0].V)
}

func TestVerifier_LogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	v := New(logger)

	resp := okResponse(columnsOf(specA), row(datatable.Cell{V: datatable.String("hello")}))
	require.NoError(t, v.Verify(specA, []string{"hello"}, resp))
	assert.Contains(t, buf.String(), "verification passed")

	buf.Reset()
	require.Error(t, v.Verify(specA, nil, resp))
	assert.Contains(t, buf.String(), "kind=InsufficientExpectedValues")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindOther, KindOf(errors.New("disk on fire")))
	assert.Equal(t, KindSchemaMismatch, KindOf(fmt.Errorf("case x: %w", &SchemaMismatch{})))

	assert.True(t, IsVerificationError(&ExcessExpectedValues{}))
	assert.False(t, IsVerificationError(errors.New("x")))
	assert.False(t, IsVerificationError(nil))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(strings.ToLower(string(k)))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("Other")
	assert.Error(t, err)
}

func TestDiagnosticsGolden(t *testing.T) {
	errs := []error{
		&EngineError{Status: "error", Message: "syntax error"},
		&EngineError{Status: "error", Reason: "access_denied", Message: "no such table"},
		&EngineError{Status: "warning"},
		&SchemaMismatch{ExpectedCount: 3, ActualCount: 2},
		&ColumnMismatch{Index: 1, Field: "label", Expected: "Salary", Actual: ""},
		&InsufficientExpectedValues{Row: 2, Col: 0, Field: FieldV, Consumed: 7},
		&ValueMismatch{Row: 0, Col: 3, Field: FieldF, Expected: "1,000", Actual: "1,000.00"},
		&ExcessExpectedValues{Consumed: 4, Total: 5},
	}

	var buf bytes.Buffer
	for _, err := range errs {
		fmt.Fprintf(&buf, "%s: %s\n", KindOf(err), err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "diagnostics", buf.Bytes())
}
