package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/gqlcheck/internal/verify"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Input string
}

// InspectResult is what a passing check of a response needs. Its YAML
// form is a suite case fragment.
type InspectResult struct {
	Fail    string   `json:"fail,omitempty" yaml:"fail,omitempty"`
	Columns []string `json:"columns" yaml:"columns,omitempty"`
	Expect  []string `json:"expect" yaml:"expect,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the column specs and values a response would pass with",
		Long: `Print the column specs and expected values that a response satisfies.

The text output is a suite case fragment (columns and expect keys) that can
be pasted into a suite file. A response with a non-ok status produces
"fail: EngineError" instead.

Examples:
  gqlcheck inspect -i result.json
  gql query.gql | gqlcheck inspect --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "-", "response file (- for stdin)")

	return cmd
}

func runInspect(cmd *cobra.Command, opts *InspectOptions) error {
	resp, err := readResponse(cmd, opts.Input)
	if err != nil {
		return err
	}

	result := InspectResult{Columns: []string{}, Expect: []string{}}
	if !resp.OK() {
		result.Fail = string(verify.KindEngineError)
	} else {
		for _, c := range resp.Columns() {
			result.Columns = append(result.Columns, verify.SpecFromColumn(c).Encode())
		}
		result.Expect = verify.ExpectedFrom(resp.Table)
	}

	f := opts.formatter(cmd)
	if f.JSON() {
		return f.Encode(CLIResponse{Status: "ok", Data: result})
	}

	enc := yaml.NewEncoder(f.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode case: %w", err)
	}
	return enc.Close()
}
