package datatable

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a sealed interface for the contents of a cell's v or f field.
// Only String, Number, Bool and Null implement it.
type Value interface {
	value() // Sealed
}

// String is a JSON string cell value.
type String string

func (String) value() {}

// Number is a JSON number cell value, stored as the literal text the engine
// produced ("42", "3.50", "1e+20").
type Number string

func (Number) value() {}

// Bool is a JSON boolean cell value.
type Bool bool

func (Bool) value() {}

// Null is the JSON literal null. The engine emits it for SQL NULL.
type Null struct{}

func (Null) value() {}

// NewString creates a String value.
func NewString(s string) String {
	return String(s)
}

// NewNumber creates a Number from its literal JSON text.
// Returns an error if text is not a valid JSON number.
func NewNumber(text string) (Number, error) {
	if text == "" || !(text[0] == '-' || (text[0] >= '0' && text[0] <= '9')) || !json.Valid([]byte(text)) {
		return "", fmt.Errorf("invalid number literal %q", text)
	}
	return Number(text), nil
}

// NumberFromInt creates a Number from an integer.
func NumberFromInt(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

// NumberFromFloat creates a Number using the shortest representation that
// round-trips to f. NaN and infinities have no JSON form and are rejected.
func NumberFromFloat(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("number %v has no JSON representation", f)
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// Stringify converts a Value to the text used for comparison.
//
//   - String: the string itself
//   - Number: the literal JSON text
//   - Bool:   "true" or "false"
//   - Null:   "null"
//
// A nil Value (absent field) stringifies to the empty string; callers are
// expected to check presence first.
func Stringify(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Number:
		return string(val)
	case Bool:
		if val {
			return "true"
		}
		return "false"
	case Null:
		return "null"
	default:
		return ""
	}
}

// MarshalValue encodes a Value as JSON.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case String:
		return json.Marshal(string(val))
	case Number:
		return []byte(val), nil
	case Bool:
		return json.Marshal(bool(val))
	case Null:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// UnmarshalValue decodes a single JSON scalar into a Value.
// Arrays and objects are rejected; cells only ever hold scalars.
func UnmarshalValue(data []byte) (Value, error) {
	data = trimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		if string(data) != "null" {
			return nil, fmt.Errorf("invalid JSON literal %q", data)
		}
		return Null{}, nil

	case '[', '{':
		return nil, fmt.Errorf("cell values must be scalars, got %s", describeComposite(data[0]))

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return Number(n.String()), nil
	}
}

func describeComposite(b byte) string {
	if b == '[' {
		return "array"
	}
	return "object"
}

func trimSpace(data []byte) []byte {
	start, end := 0, len(data)
	for start < end && isSpace(data[start]) {
		start++
	}
	for end > start && isSpace(data[end-1]) {
		end--
	}
	return data[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
