package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/gqlcheck/internal/verify"
)

// Suite is a named set of verification cases loaded from one file.
type Suite struct {
	// Name uniquely identifies this suite. It also names the golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this suite covers.
	Description string `yaml:"description" json:"description"`

	// Cases run in file order.
	Cases []Case `yaml:"cases" json:"cases"`

	// Path is the file the suite was loaded from. Empty for suites built
	// in code.
	Path string `yaml:"-" json:"-"`
}

// Case is one engine result checked against declared columns and values.
type Case struct {
	// Name is unique within the suite.
	Name string `yaml:"name" json:"name"`

	// Query is the GQL text that produced the result. It is recorded for
	// reports only; the harness never executes it.
	Query string `yaml:"query,omitempty" json:"query,omitempty"`

	// Result is the path of a file holding the engine's JSON output.
	// Relative paths resolve against the suite file's directory.
	Result string `yaml:"result,omitempty" json:"result,omitempty"`

	// ResultInline holds the engine's JSON output directly.
	ResultInline string `yaml:"result_inline,omitempty" json:"result_inline,omitempty"`

	// Columns are encoded column specs: "id,label,type,pattern".
	Columns []string `yaml:"columns" json:"columns"`

	// Expect is the flat list of expected values in consumption order.
	Expect []string `yaml:"expect" json:"expect"`

	// Fail names the failure kind the case must produce. Empty means the
	// case must verify cleanly.
	Fail string `yaml:"fail,omitempty" json:"fail,omitempty"`
}

// Suite file extensions.
const (
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
	ExtCUE  = ".cue"
)

var (
	suiteFields = map[string]bool{"name": true, "description": true, "cases": true}
	caseFields  = map[string]bool{
		"name": true, "query": true, "result": true, "result_inline": true,
		"columns": true, "expect": true, "fail": true,
	}
)

// IsSuiteFile reports whether path has a suite file extension.
func IsSuiteFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtYAML, ExtYML, ExtCUE:
		return true
	}
	return false
}

// LoadSuite reads a YAML or CUE suite file, resolves result paths against
// the file's directory and validates it. Unknown fields are rejected in
// both formats.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var suite *Suite
	if strings.EqualFold(filepath.Ext(path), ExtCUE) {
		suite, err = parseCUESuite(path, data)
	} else {
		suite, err = parseYAMLSuite(data)
	}
	if err != nil {
		return nil, err
	}
	suite.Path = path

	base := filepath.Dir(path)
	for i := range suite.Cases {
		c := &suite.Cases[i]
		if c.Result != "" && !filepath.IsAbs(c.Result) {
			c.Result = filepath.Join(base, c.Result)
		}
	}

	if err := validateSuite(suite); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return suite, nil
}

func parseYAMLSuite(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := keepExpectText(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &suite, nil
}

// keepExpectText replaces each case's decoded expect values with their
// source text. Decoding into a string turns an unquoted null into "", so
// null scalars are read as "null", the text of a JSON null cell.
func keepExpectText(data []byte, suite *Suite) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		return nil
	}
	cases := mappingValue(doc.Content[0], "cases")
	if cases == nil || cases.Kind != yaml.SequenceNode {
		return nil
	}

	for i, item := range cases.Content {
		if i >= len(suite.Cases) {
			break
		}
		expect := mappingValue(item, "expect")
		if expect == nil || expect.Kind != yaml.SequenceNode {
			continue
		}
		values := make([]string, 0, len(expect.Content))
		for j, v := range expect.Content {
			v = unalias(v)
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("cases[%d]: expect[%d] must be a scalar", i, j)
			}
			if v.ShortTag() == "!!null" {
				values = append(values, "null")
				continue
			}
			values = append(values, v.Value)
		}
		suite.Cases[i].Expect = values
	}
	return nil
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	n = unalias(n)
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return unalias(n.Content[i+1])
		}
	}
	return nil
}

func unalias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func parseCUESuite(path string, data []byte) (*Suite, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	if err := checkCUEFields(value, suiteFields, ""); err != nil {
		return nil, err
	}
	cases := value.LookupPath(cue.ParsePath("cases"))
	if cases.Exists() {
		iter, err := cases.List()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CUE: cases: %w", err)
		}
		for i := 0; iter.Next(); i++ {
			if err := checkCUEFields(iter.Value(), caseFields, fmt.Sprintf("cases[%d].", i)); err != nil {
				return nil, err
			}
		}
	}

	var suite Suite
	if err := value.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return &suite, nil
}

func checkCUEFields(v cue.Value, known map[string]bool, prefix string) error {
	iter, err := v.Fields()
	if err != nil {
		return fmt.Errorf("failed to parse CUE: %s%w", prefix, err)
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		if !known[name] {
			return fmt.Errorf("failed to parse CUE: field %s%s not found in suite schema", prefix, name)
		}
	}
	return nil
}

// validateSuite checks required fields and that every case can run.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		switch {
		case c.Result == "" && c.ResultInline == "":
			return fmt.Errorf("cases[%d] %s: one of result or result_inline is required", i, c.Name)
		case c.Result != "" && c.ResultInline != "":
			return fmt.Errorf("cases[%d] %s: result and result_inline are mutually exclusive", i, c.Name)
		}

		if c.Result != "" && s.Path != "" {
			if _, err := os.Stat(c.Result); os.IsNotExist(err) {
				return fmt.Errorf("cases[%d] %s: result file not found: %s", i, c.Name, c.Result)
			}
		}

		if _, err := verify.ParseColumnSpecs(c.Columns); err != nil {
			return fmt.Errorf("cases[%d] %s: columns: %w", i, c.Name, err)
		}

		if c.Fail != "" {
			kind, err := verify.ParseKind(c.Fail)
			if err != nil {
				return fmt.Errorf("cases[%d] %s: %w", i, c.Name, err)
			}
			c.Fail = string(kind)
		}
	}

	return nil
}

// FindSuites returns every suite file under dir, sorted by path.
func FindSuites(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSuiteFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return paths, nil
}
