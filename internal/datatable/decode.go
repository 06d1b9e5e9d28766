package datatable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMissingStatus is returned when a document has no status field.
var ErrMissingStatus = errors.New("response has no status")

// jsonpPrefix is the comment the engine's CGI front end writes before the
// response handler call.
var jsonpPrefix = []byte("/*O_o*/")

// Decode reads exactly one response document from r.
func Decode(r io.Reader) (*Response, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return Parse(data)
}

// Parse decodes a response document. JSONP wrapped output of the form
// `/*O_o*/\nhandler({...});` is unwrapped first.
func Parse(data []byte) (*Response, error) {
	data = unwrapJSONP(trimSpace(data))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to parse response: trailing data after document")
	}
	if _, ok := raw["status"]; !ok {
		return nil, ErrMissingStatus
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// unwrapJSONP strips `/*O_o*/ handler( ... );` if present.
func unwrapJSONP(data []byte) []byte {
	rest := data
	if bytes.HasPrefix(rest, jsonpPrefix) {
		rest = trimSpace(rest[len(jsonpPrefix):])
	} else if len(rest) > 0 && (rest[0] == '{' || rest[0] == '[') {
		return data
	}

	open := bytes.IndexByte(rest, '(')
	if open < 0 {
		return data
	}
	for _, b := range rest[:open] {
		if !isIdentByte(b) {
			return data
		}
	}

	body := trimSpace(rest[open+1:])
	body = bytes.TrimSuffix(body, []byte(";"))
	body = trimSpace(body)
	if !bytes.HasSuffix(body, []byte(")")) {
		return data
	}
	return trimSpace(body[:len(body)-1])
}

func isIdentByte(b byte) bool {
	return b == '.' || b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
