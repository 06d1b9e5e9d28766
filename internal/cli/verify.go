package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gqlcheck/internal/datatable"
	"github.com/roach88/gqlcheck/internal/verify"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Columns []string // encoded column specs, in column order
	Input   string   // response file, "-" for stdin
}

// VerifyResult summarizes a passing verification.
type VerifyResult struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
	Values  int `json:"values"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify [flags] [--] [value...]",
		Short: "Check one engine response against expected columns and values",
		Long: `Check one engine response against expected columns and values.

Reads the engine's JSON response (stdin by default), checks its status,
then each column against the -c specs in order, then every present cell
value against the positional values in row-major order, v before f.

A column spec is "id,label,type,pattern"; write a literal comma in any
field as %2C. Negative numbers are read as values; put "--" before other
values that start with a dash.

Prints "ok" on success, otherwise a one-line diagnostic.

Exit codes:
  0 - Response matches
  1 - Verification failed
  2 - Command error (bad spec, unreadable or malformed input)

Examples:
  gql query.gql | gqlcheck verify -c 'name,Name,STRING,' John Mary
  gqlcheck verify -i result.json -c 'salary,Salary,INTEGER,#%2C##0.00' 1000 1,000.00
  gqlcheck verify --format json -i result.json -c 'n,N,FLOAT,' -1.5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Columns, "col", "c", nil, "expected column spec id,label,type,pattern (repeatable)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "-", "response file (- for stdin)")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *VerifyOptions, expected []string) error {
	specs, err := verify.ParseColumnSpecs(opts.Columns)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid column spec", err)
	}

	resp, err := readResponse(cmd, opts.Input)
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	if f.Verbose {
		describeResponse(f.GetErrWriter(), resp)
	}

	err = verify.New(opts.logger()).Verify(specs, expected, resp)
	if err == nil {
		if f.JSON() {
			return f.Success(summarize(resp))
		}
		fmt.Fprintln(f.Writer, "ok")
		return nil
	}

	if !verify.IsVerificationError(err) {
		return WrapExitError(ExitCommandError, "verification error", err)
	}

	if f.JSON() {
		if encErr := f.Error(string(verify.KindOf(err)), err.Error(), nil); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintln(f.Writer, err.Error())
	}
	// already reported on stdout
	return NewExitError(ExitFailure, "")
}

func summarize(resp *datatable.Response) VerifyResult {
	return VerifyResult{
		Columns: len(resp.Columns()),
		Rows:    len(resp.Rows()),
		Values:  len(verify.Flatten(resp.Table)),
	}
}

var negativeNumber = regexp.MustCompile(`^-(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// verifyValueArgs rewrites a verify command line so that negative numbers
// reach the command as values instead of failing as unknown shorthand
// flags. Flags keep their place; values move after a "--" in their
// original order. Other command lines are returned unchanged.
func verifyValueArgs(root *cobra.Command, args []string) []string {
	cmd, _, err := root.Find(args)
	if err != nil || cmd == root || cmd.Name() != "verify" {
		return args
	}

	var head, values []string
	named := false
	negative := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			values = append(values, args[i+1:]...)
			i = len(args)
		case negativeNumber.MatchString(arg):
			values = append(values, arg)
			negative = true
		case len(arg) > 1 && strings.HasPrefix(arg, "-"):
			head = append(head, arg)
			if flagTakesValue(cmd, arg) && i+1 < len(args) {
				i++
				head = append(head, args[i])
			}
		case !named && arg == cmd.Name():
			named = true
			head = append(head, arg)
		default:
			values = append(values, arg)
		}
	}
	if !negative {
		return args
	}
	return append(append(head, "--"), values...)
}

// flagTakesValue reports whether arg is a flag of cmd whose value is the
// next argument.
func flagTakesValue(cmd *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			f = cmd.InheritedFlags().Lookup(name)
		}
		return f != nil && f.NoOptDefVal == ""
	}

	// -vc SPEC: every shorthand before the last must be a boolean
	shorts := arg[1:]
	for i := 0; i < len(shorts); i++ {
		f := cmd.Flags().ShorthandLookup(shorts[i : i+1])
		if f == nil {
			f = cmd.InheritedFlags().ShorthandLookup(shorts[i : i+1])
		}
		if f == nil {
			return false
		}
		if f.NoOptDefVal == "" {
			return i == len(shorts)-1
		}
	}
	return false
}
