package datatable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StatusOK is the only status that carries a usable table.
const StatusOK = "ok"

// Column is the metadata the engine reports for one result column.
// Extra keys such as "format" are ignored.
type Column struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Pattern string `json:"pattern"`
}

// Cell is one table entry. V is the raw value, F the formatted display
// value. A nil field was absent from the JSON object.
type Cell struct {
	V Value
	F Value
}

// HasV reports whether the raw value is present.
func (c Cell) HasV() bool { return c.V != nil }

// HasF reports whether the formatted value is present.
func (c Cell) HasF() bool { return c.F != nil }

// UnmarshalJSON decodes a cell object. A JSON null cell decodes to a cell
// with neither field present.
func (c *Cell) UnmarshalJSON(data []byte) error {
	*c = Cell{}
	if bytes.Equal(trimSpace(data), []byte("null")) {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("cell: %w", err)
	}

	if v, ok := raw["v"]; ok {
		val, err := UnmarshalValue(v)
		if err != nil {
			return fmt.Errorf("cell field v: %w", err)
		}
		c.V = val
	}
	if f, ok := raw["f"]; ok {
		val, err := UnmarshalValue(f)
		if err != nil {
			return fmt.Errorf("cell field f: %w", err)
		}
		c.F = val
	}
	return nil
}

// MarshalJSON encodes the cell with absent fields omitted.
func (c Cell) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if c.V != nil {
		b, err := MarshalValue(c.V)
		if err != nil {
			return nil, fmt.Errorf("cell field v: %w", err)
		}
		buf.WriteString(`"v":`)
		buf.Write(b)
	}
	if c.F != nil {
		b, err := MarshalValue(c.F)
		if err != nil {
			return nil, fmt.Errorf("cell field f: %w", err)
		}
		if c.V != nil {
			buf.WriteByte(',')
		}
		buf.WriteString(`"f":`)
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Row is one table row, one cell per column.
type Row struct {
	C []Cell `json:"c"`
}

// Table is the tabular payload of a successful response.
type Table struct {
	Cols []Column `json:"cols"`
	Rows []Row    `json:"rows"`
}

// ErrorDetail is one entry of a response's errors or warnings list.
type ErrorDetail struct {
	Reason          string `json:"reason,omitempty"`
	Message         string `json:"message,omitempty"`
	DetailedMessage string `json:"detailed_message,omitempty"`
}

// Response is a complete engine response document.
type Response struct {
	Version  string        `json:"version,omitempty"`
	ReqID    json.Number   `json:"reqId,omitempty"`
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
	Warnings []ErrorDetail `json:"warnings,omitempty"`
	Table    *Table        `json:"table,omitempty"`
}

// OK reports whether the engine accepted and executed the query.
func (r *Response) OK() bool {
	return r != nil && r.Status == StatusOK
}

// ErrorMessage returns the engine's explanation for a non-ok status.
// The top-level message wins; otherwise the messages from the errors list
// are joined with "; ".
func (r *Response) ErrorMessage() string {
	if r == nil {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		switch {
		case e.Message != "":
			msgs = append(msgs, e.Message)
		case e.DetailedMessage != "":
			msgs = append(msgs, e.DetailedMessage)
		}
	}
	return strings.Join(msgs, "; ")
}

// ErrorReason returns the reason of the first error entry, if any.
func (r *Response) ErrorReason() string {
	if r == nil {
		return ""
	}
	for _, e := range r.Errors {
		if e.Reason != "" {
			return e.Reason
		}
	}
	return ""
}

// Columns returns the table's columns, or nil when there is no table.
func (r *Response) Columns() []Column {
	if r == nil || r.Table == nil {
		return nil
	}
	return r.Table.Cols
}

// Rows returns the table's rows, or nil when there is no table.
func (r *Response) Rows() []Row {
	if r == nil || r.Table == nil {
		return nil
	}
	return r.Table.Rows
}
