package verify

import (
	"fmt"
	"strings"

	"github.com/roach88/gqlcheck/internal/datatable"
)

// Column type names as declared by callers. The verifier compares the type
// string verbatim, so either vocabulary works as long as it matches what
// the engine emits.
const (
	TypeString   = "STRING"
	TypeInteger  = "INTEGER"
	TypeFloat    = "FLOAT"
	TypeBool     = "BOOL"
	TypeDate     = "DATE"
	TypeTime     = "TIME"
	TypeDateTime = "DATETIME"
)

// Google Visualization wire types, as emitted by the engine.
const (
	WireString    = "string"
	WireNumber    = "number"
	WireBoolean   = "boolean"
	WireDate      = "date"
	WireTimeOfDay = "timeofday"
	WireDateTime  = "datetime"
)

// escapedComma is how a literal comma is written inside an encoded spec field.
const escapedComma = "%2C"

// ColumnSpec is the caller's expectation for one result column.
type ColumnSpec struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	Type    string `json:"type" yaml:"type"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// ParseColumnSpec decodes "id,label,type,pattern". The string is split on
// its first three commas, so it must contain exactly four fields; commas
// inside a field are written as %2C and decoded here.
func ParseColumnSpec(s string) (ColumnSpec, error) {
	parts := strings.SplitN(s, ",", 4)
	if len(parts) != 4 {
		return ColumnSpec{}, fmt.Errorf("expected id,label,type,pattern but got %q", s)
	}
	return ColumnSpec{
		ID:      decodeField(parts[0]),
		Label:   decodeField(parts[1]),
		Type:    decodeField(parts[2]),
		Pattern: decodeField(parts[3]),
	}, nil
}

// ParseColumnSpecs decodes one spec string per column.
func ParseColumnSpecs(encoded []string) ([]ColumnSpec, error) {
	specs := make([]ColumnSpec, 0, len(encoded))
	for i, s := range encoded {
		spec, err := ParseColumnSpec(s)
		if err != nil {
			return nil, fmt.Errorf("col %d: %w", i+1, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Encode renders the spec in the comma-delimited form ParseColumnSpec reads.
func (s ColumnSpec) Encode() string {
	return strings.Join([]string{
		encodeField(s.ID),
		encodeField(s.Label),
		encodeField(s.Type),
		encodeField(s.Pattern),
	}, ",")
}

// SpecFromColumn builds the spec that exactly matches an engine column.
func SpecFromColumn(c datatable.Column) ColumnSpec {
	return ColumnSpec{ID: c.ID, Label: c.Label, Type: c.Type, Pattern: c.Pattern}
}

func decodeField(s string) string {
	return strings.ReplaceAll(s, escapedComma, ",")
}

func encodeField(s string) string {
	return strings.ReplaceAll(s, ",", escapedComma)
}
