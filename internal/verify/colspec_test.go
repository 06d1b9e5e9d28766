package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlcheck/internal/datatable"
)

func TestParseColumnSpec(t *testing.T) {
	tests := []struct {
		input string
		want  ColumnSpec
	}{
		{"name,Name,string,", ColumnSpec{ID: "name", Label: "Name", Type: "string"}},
		{"a,,STRING,", ColumnSpec{ID: "a", Type: "STRING"}},
		{",,,", ColumnSpec{}},
		{"salary,Salary,number,#%2C##0.00", ColumnSpec{ID: "salary", Label: "Salary", Type: "number", Pattern: "#,##0.00"}},
		{"x,Last%2C First,string,", ColumnSpec{ID: "x", Label: "Last, First", Type: "string"}},
		// only the first three commas split
		{"d,D,date,d,M,y", ColumnSpec{ID: "d", Label: "D", Type: "date", Pattern: "d,M,y"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColumnSpec(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColumnSpec_TooFewFields(t *testing.T) {
	for _, input := range []string{"", "a", "a,b", "a,b,c"} {
		_, err := ParseColumnSpec(input)
		assert.Error(t, err, input)
	}
}

func TestParseColumnSpecs(t *testing.T) {
	specs, err := ParseColumnSpecs([]string{"a,A,string,", "b,B,number,0.0"})
	require.NoError(t, err)
	assert.Len(t, specs, 2)
	assert.Equal(t, "0.0", specs[1].Pattern)

	_, err = ParseColumnSpecs([]string{"a,A,string,", "broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "col 2")
}

func TestColumnSpecEncode(t *testing.T) {
	spec := ColumnSpec{ID: "id", Label: "Last, First", Type: "string", Pattern: "#,##0"}
	assert.Equal(t, "id,Last%2C First,string,#%2C##0", spec.Encode())

	back, err := ParseColumnSpec(spec.Encode())
	require.NoError(t, err)
	assert.Equal(t, spec, back)
}

func TestSpecFromColumn(t *testing.T) {
	col := datatable.Column{ID: "a", Label: "A", Type: "number", Pattern: "0"}
	assert.Equal(t, ColumnSpec{ID: "a", Label: "A", Type: "number", Pattern: "0"}, SpecFromColumn(col))
}
