// Package verify checks a query engine response against a declared column
// schema and a flat list of expected values.
//
// # Consumption Order
//
// Expected values are supplied positionally, so the order in which cell
// fields consume them is part of the contract and never changes:
//
//  1. rows in the order the engine returned them
//  2. within a row, cells in column order
//  3. within a cell, the raw value v before the formatted value f
//
// Absent fields consume nothing. A cell {"v": 3.5, "f": "3.50"} therefore
// consumes two expected values, "3.5" then "3.50", while {"f": "n/a"}
// consumes one.
//
// # Failure Semantics
//
// Verification is fail-fast: the first problem found is returned as one of
// EngineError, SchemaMismatch, ColumnMismatch, InsufficientExpectedValues,
// ValueMismatch or ExcessExpectedValues, checked in that order. Each error
// carries 0-based positions in its fields and renders a one-line diagnostic
// with 1-based row and column numbers.
//
// # Usage
//
//	specs, err := verify.ParseColumnSpecs([]string{"name,Name,string,"})
//	if err != nil {
//	    return err
//	}
//	resp, err := datatable.Decode(os.Stdin)
//	if err != nil {
//	    return err
//	}
//	if err := verify.Verify(specs, []string{"John"}, resp); err != nil {
//	    fmt.Println(err) // e.g. row 1, col 1, field v: expected "John" but got "Mary"
//	}
package verify
