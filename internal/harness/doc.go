// Package harness runs suites of recorded engine results through the
// verifier.
//
// # Suite Format
//
// Suites are YAML (or CUE) files with the following structure:
//
//	name: employees
//	description: "select queries against the employee fixture"
//	cases:
//	  - name: select_name
//	    query: "select name where id = 1"
//	    result: fixtures/select_name.json
//	    columns: ["name,Name,string,"]
//	    expect: ["John"]
//	  - name: bad_syntax
//	    result_inline: '{"status":"error","errors":[{"reason":"invalid_query","message":"syntax"}]}'
//	    columns: []
//	    expect: []
//	    fail: EngineError
//
// result paths are relative to the suite file. Exactly one of result and
// result_inline is required. Columns use the "id,label,type,pattern"
// encoding with literal commas written as %2C. YAML scalars in expect keep
// their source text, so 3.50 is compared as "3.50" and a bare null as "null".
//
// # Outcomes
//
// A case without fail passes when verification succeeds. A case with fail
// passes only when verification fails with that kind (EngineError,
// SchemaMismatch, ColumnMismatch, InsufficientExpectedValues,
// ValueMismatch or ExcessExpectedValues). A result that cannot be read or
// parsed always fails the case.
//
// # Golden Snapshots
//
// Snapshot renders a suite result as canonical JSON without timings.
// The test command stores it next to the suite under golden/ and reports
// drift on later runs; RunWithGolden does the same inside go test.
//
// # Usage
//
//	suite, err := harness.LoadSuite("testdata/suites/employees.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(ctx, suite, harness.Options{Parallel: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range result.Failures() {
//	    log.Println(c.Name, c.Diagnostic)
//	}
package harness
