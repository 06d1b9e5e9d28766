package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSuite_YAML(t *testing.T) {
	suite, err := LoadSuite("testdata/suites/employees.yaml")
	require.NoError(t, err)

	assert.Equal(t, "employees", suite.Name)
	assert.Equal(t, "testdata/suites/employees.yaml", suite.Path)
	require.Len(t, suite.Cases, 5)

	first := suite.Cases[0]
	assert.Equal(t, "select_names", first.Name)
	assert.Equal(t, filepath.Join("testdata", "suites", "fixtures", "select_names.json"), first.Result)
	assert.Equal(t, []string{"John", "Mary"}, first.Expect)

	// YAML numbers keep their source text
	assert.Equal(t, []string{"1000", "1,000.00"}, suite.Cases[1].Expect)

	// fail kinds are normalized
	assert.Equal(t, "InsufficientExpectedValues", suite.Cases[4].Fail)
}

func TestLoadSuite_CUE(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fixtures/one.json", `{"status":"ok","table":{"cols":[{"id":"n","label":"N","type":"number","pattern":""}],"rows":[{"c":[{"v":1}]}]}}`)
	path := writeFile(t, dir, "numbers.cue", `
name:        "numbers"
description: "numeric results"
cases: [{
	name:    "one"
	result:  "fixtures/one.json"
	columns: ["n,N,number,"]
	expect:  ["1"]
}]
`)

	suite, err := LoadSuite(path)
	require.NoError(t, err)
	assert.Equal(t, "numbers", suite.Name)
	require.Len(t, suite.Cases, 1)
	assert.Equal(t, filepath.Join(dir, "fixtures", "one.json"), suite.Cases[0].Result)
}

func TestLoadSuite_CUERejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.cue", `
name:        "bad"
description: "typo in case"
cases: [{
	name:          "x"
	result_inline: "{\"status\":\"ok\"}"
	expected:      ["1"]
}]
`)

	_, err := LoadSuite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cases[0].expected")
}

func TestLoadSuite_YAMLRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "typo.yaml", `
name: typo
description: "expects instead of expect"
cases:
  - name: x
    result_inline: '{"status":"ok"}'
    expects: ["1"]
`)

	_, err := LoadSuite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadSuite_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\ncases: [{name: a, result_inline: x}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\ncases: [{name: a, result_inline: x}]",
			wantErr: "description is required",
		},
		{
			name:    "no cases",
			content: "name: n\ndescription: d\ncases: []",
			wantErr: "cases list is required",
		},
		{
			name:    "case without name",
			content: "name: n\ndescription: d\ncases: [{result_inline: x}]",
			wantErr: "cases[0]: name is required",
		},
		{
			name:    "duplicate case",
			content: "name: n\ndescription: d\ncases: [{name: a, result_inline: x}, {name: a, result_inline: y}]",
			wantErr: `duplicate case name "a"`,
		},
		{
			name:    "no result",
			content: "name: n\ndescription: d\ncases: [{name: a}]",
			wantErr: "one of result or result_inline is required",
		},
		{
			name:    "both results",
			content: "name: n\ndescription: d\ncases: [{name: a, result: r.json, result_inline: x}]",
			wantErr: "mutually exclusive",
		},
		{
			name:    "missing result file",
			content: "name: n\ndescription: d\ncases: [{name: a, result: nowhere.json}]",
			wantErr: "result file not found",
		},
		{
			name:    "bad column spec",
			content: "name: n\ndescription: d\ncases: [{name: a, result_inline: x, columns: ['a,b']}]",
			wantErr: "columns: col 1",
		},
		{
			name:    "unknown fail kind",
			content: "name: n\ndescription: d\ncases: [{name: a, result_inline: x, fail: Boom}]",
			wantErr: `unknown failure kind "Boom"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "suite.yaml", tt.content)
			_, err := LoadSuite(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := LoadSuite(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read suite file")
}

func TestLoadSuite_ExpectKeepsSourceText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nulls.yaml", `
name: nulls
description: "null cells"
cases:
  - name: a
    result_inline: '{"status":"ok","table":{"cols":[],"rows":[]}}'
    expect: [null, ~, "null", 1.50, 0x10, true, -3]
`)

	suite, err := LoadSuite(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"null", "null", "null", "1.50", "0x10", "true", "-3"}, suite.Cases[0].Expect)
}

func TestLoadSuite_ExpectRejectsNested(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nested.yaml", `
name: nested
description: "bad expect"
cases:
  - name: a
    result_inline: '{}'
    expect: [a, {b: c}]
`)

	_, err := LoadSuite(path)
	require.Error(t, err)
}

func TestFindSuites(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.cue", "")
	writeFile(t, dir, "nested/c.yml", "")
	writeFile(t, dir, "fixtures/result.json", "")
	writeFile(t, dir, ".hidden/d.yaml", "")
	writeFile(t, dir, "golden/b.golden", "")

	paths, err := FindSuites(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.cue"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yml"),
	}, paths)

	_, err = FindSuites(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
