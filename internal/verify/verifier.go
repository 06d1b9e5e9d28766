package verify

import (
	"io"
	"log/slog"

	"github.com/roach88/gqlcheck/internal/datatable"
)

// Verifier runs verifications and logs each outcome at debug level.
type Verifier struct {
	logger *slog.Logger
}

// New returns a Verifier. A nil logger discards output.
func New(logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Verifier{logger: logger}
}

var defaultVerifier = New(nil)

// Verify checks resp against specs and expected using a silent Verifier.
func Verify(specs []ColumnSpec, expected []string, resp *datatable.Response) error {
	return defaultVerifier.Verify(specs, expected, resp)
}

// Verify checks, in order: the response status, the column count, each
// column's id, label, type and pattern, every present cell field against
// the next expected value, and finally that no expected values remain.
// The first failure is returned; nil means the result matched exactly.
// Neither resp nor expected is modified.
func (v *Verifier) Verify(specs []ColumnSpec, expected []string, resp *datatable.Response) error {
	err := v.verify(specs, expected, resp)
	if err != nil {
		v.logger.Debug("verification failed",
			"kind", string(KindOf(err)),
			"error", err.Error())
		return err
	}
	v.logger.Debug("verification passed",
		"columns", len(specs),
		"rows", len(resp.Rows()),
		"values", len(expected))
	return nil
}

func (v *Verifier) verify(specs []ColumnSpec, expected []string, resp *datatable.Response) error {
	if !resp.OK() {
		e := &EngineError{Message: "no response"}
		if resp != nil {
			e.Status = resp.Status
			e.Reason = resp.ErrorReason()
			e.Message = resp.ErrorMessage()
		}
		return e
	}

	cols := resp.Columns()
	if len(cols) != len(specs) {
		return &SchemaMismatch{ExpectedCount: len(specs), ActualCount: len(cols)}
	}
	for i, spec := range specs {
		if err := compareColumn(i, spec, cols[i]); err != nil {
			return err
		}
	}

	consumed := 0
	for _, obs := range Flatten(resp.Table) {
		if consumed >= len(expected) {
			return &InsufficientExpectedValues{
				Row:      obs.Row,
				Col:      obs.Col,
				Field:    obs.Field,
				Consumed: consumed,
			}
		}
		actual := datatable.Stringify(obs.Value)
		if actual != expected[consumed] {
			return &ValueMismatch{
				Row:      obs.Row,
				Col:      obs.Col,
				Field:    obs.Field,
				Expected: expected[consumed],
				Actual:   actual,
			}
		}
		consumed++
	}

	if consumed != len(expected) {
		return &ExcessExpectedValues{Consumed: consumed, Total: len(expected)}
	}
	return nil
}

// compareColumn checks id, label, type and pattern in that order.
func compareColumn(index int, spec ColumnSpec, col datatable.Column) error {
	fields := [...]struct {
		name           string
		expect, actual string
	}{
		{"id", spec.ID, col.ID},
		{"label", spec.Label, col.Label},
		{"type", spec.Type, col.Type},
		{"pattern", spec.Pattern, col.Pattern},
	}
	for _, f := range fields {
		if f.expect != f.actual {
			return &ColumnMismatch{Index: index, Field: f.name, Expected: f.expect, Actual: f.actual}
		}
	}
	return nil
}
