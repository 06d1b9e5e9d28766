package verify

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a verification failure category. The string values appear in
// suite files (the fail key) and in stored run history.
type Kind string

const (
	// KindNone marks a passing verification.
	KindNone Kind = ""

	KindEngineError        Kind = "EngineError"
	KindSchemaMismatch     Kind = "SchemaMismatch"
	KindColumnMismatch     Kind = "ColumnMismatch"
	KindInsufficientValues Kind = "InsufficientExpectedValues"
	KindExcessValues       Kind = "ExcessExpectedValues"
	KindValueMismatch      Kind = "ValueMismatch"

	// KindOther marks an error that did not come from verification,
	// such as an unreadable result file.
	KindOther Kind = "Other"
)

// Kinds lists every verification failure kind in check order.
var Kinds = []Kind{
	KindEngineError,
	KindSchemaMismatch,
	KindColumnMismatch,
	KindInsufficientValues,
	KindValueMismatch,
	KindExcessValues,
}

// ParseKind accepts a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown failure kind %q", s)
}

// Sentinels for errors.Is matching.
var (
	ErrEngine             = errors.New("engine reported an error")
	ErrSchemaMismatch     = errors.New("column count mismatch")
	ErrColumnMismatch     = errors.New("column metadata mismatch")
	ErrInsufficientValues = errors.New("not enough expected values")
	ErrExcessValues       = errors.New("too many expected values")
	ErrValueMismatch      = errors.New("value mismatch")
)

// EngineError means the engine returned a non-ok status.
type EngineError struct {
	Status  string
	Reason  string
	Message string
}

func (e *EngineError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("status %q", e.Status)
	}
	if e.Reason != "" {
		return fmt.Sprintf("query failed [%s]: %s", e.Reason, msg)
	}
	return "query failed: " + msg
}

func (e *EngineError) Is(target error) bool { return target == ErrEngine }

// Kind returns KindEngineError.
func (e *EngineError) Kind() Kind { return KindEngineError }

// SchemaMismatch means the result has a different number of columns than
// the caller declared.
type SchemaMismatch struct {
	ExpectedCount int
	ActualCount   int
}

func (e *SchemaMismatch) Error() string {
	return fmt.Sprintf("expected %d columns, got %d", e.ExpectedCount, e.ActualCount)
}

func (e *SchemaMismatch) Is(target error) bool { return target == ErrSchemaMismatch }

// Kind returns KindSchemaMismatch.
func (e *SchemaMismatch) Kind() Kind { return KindSchemaMismatch }

// ColumnMismatch means one metadata field of one column differs.
// Index is 0-based; Field is one of id, label, type, pattern.
type ColumnMismatch struct {
	Index    int
	Field    string
	Expected string
	Actual   string
}

func (e *ColumnMismatch) Error() string {
	return fmt.Sprintf("col %d: expected %s %q but got %q", e.Index+1, e.Field, e.Expected, e.Actual)
}

func (e *ColumnMismatch) Is(target error) bool { return target == ErrColumnMismatch }

// Kind returns KindColumnMismatch.
func (e *ColumnMismatch) Kind() Kind { return KindColumnMismatch }

// InsufficientExpectedValues means a present cell field had no expected
// value left to compare against. Row and Col are 0-based.
type InsufficientExpectedValues struct {
	Row      int
	Col      int
	Field    Field
	Consumed int
}

func (e *InsufficientExpectedValues) Error() string {
	return fmt.Sprintf("row %d, col %d, field %s: not enough values (%d consumed)",
		e.Row+1, e.Col+1, e.Field, e.Consumed)
}

func (e *InsufficientExpectedValues) Is(target error) bool { return target == ErrInsufficientValues }

// Kind returns KindInsufficientValues.
func (e *InsufficientExpectedValues) Kind() Kind { return KindInsufficientValues }

// ExcessExpectedValues means values were left over after every present
// cell field was consumed.
type ExcessExpectedValues struct {
	Consumed int
	Total    int
}

func (e *ExcessExpectedValues) Error() string {
	return fmt.Sprintf("too many values: %d used but %d given", e.Consumed, e.Total)
}

func (e *ExcessExpectedValues) Is(target error) bool { return target == ErrExcessValues }

// Kind returns KindExcessValues.
func (e *ExcessExpectedValues) Kind() Kind { return KindExcessValues }

// ValueMismatch means a stringified cell field differs from the expected
// value at the same position. Row and Col are 0-based.
type ValueMismatch struct {
	Row      int
	Col      int
	Field    Field
	Expected string
	Actual   string
}

func (e *ValueMismatch) Error() string {
	return fmt.Sprintf("row %d, col %d, field %s: expected %q but got %q",
		e.Row+1, e.Col+1, e.Field, e.Expected, e.Actual)
}

func (e *ValueMismatch) Is(target error) bool { return target == ErrValueMismatch }

// Kind returns KindValueMismatch.
func (e *ValueMismatch) Kind() Kind { return KindValueMismatch }

// KindOf classifies err. nil yields KindNone; errors that are not
// verification failures yield KindOther. Wrapped errors are unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindOther
}

// IsVerificationError reports whether err is one of the verification
// failure types, as opposed to an I/O or parse failure.
func IsVerificationError(err error) bool {
	k := KindOf(err)
	return k != KindNone && k != KindOther
}
