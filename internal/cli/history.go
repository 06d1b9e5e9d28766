package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gqlcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit  int
	DB     string
	Latest string // suite whose newest run to show
	Suite  string // with Case, list one case's outcomes
	Case   string
}

// RunDetail is one run with its case records.
type RunDetail struct {
	Run   store.Run          `json:"run"`
	Cases []store.CaseRecord `json:"cases"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded suite runs",
		Long: `List suite runs recorded by "gqlcheck test --history", newest first.

With a run ID (or a unique prefix of one), show that run's cases.
--latest shows the newest run of a suite. --suite with --case lists the
recorded outcomes of one case, newest first.

Examples:
  gqlcheck history
  gqlcheck history --limit 5
  gqlcheck history 3f2a
  gqlcheck history --latest employees
  gqlcheck history --suite employees --case select_names`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "history database path (default history.path)")
	cmd.Flags().StringVar(&opts.Latest, "latest", "", "show the newest run of a suite")
	cmd.Flags().StringVar(&opts.Suite, "suite", "", "suite of the case to trace (with --case)")
	cmd.Flags().StringVar(&opts.Case, "case", "", "case to trace (with --suite)")
	cmd.MarkFlagsRequiredTogether("suite", "case")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, args []string) error {
	modes := 0
	for _, set := range []bool{len(args) == 1, opts.Latest != "", opts.Case != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return NewExitError(ExitCommandError, "a run ID, --latest and --suite/--case cannot be combined")
	}

	path := opts.DB
	if path == "" {
		path = opts.settings().History.Path
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("history database not found: %s", path))
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	f := opts.formatter(cmd)

	switch {
	case opts.Latest != "":
		run, ok, err := st.LatestRun(ctx, opts.Latest)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("no runs recorded for suite %s", opts.Latest))
		}
		args = []string{run.ID}
	case opts.Case != "":
		history, err := st.CaseHistory(ctx, opts.Suite, opts.Case, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read case history", err)
		}
		if f.JSON() {
			return f.Encode(CLIResponse{Status: "ok", Data: history})
		}
		if len(history) == 0 {
			fmt.Fprintf(f.Writer, "No outcomes recorded for %s/%s.\n", opts.Suite, opts.Case)
			return nil
		}
		return writeCaseHistory(f.Writer, history)
	}

	if len(args) == 1 {
		run, cases, err := st.ReadRun(ctx, args[0])
		if errors.Is(err, store.ErrRunNotFound) || errors.Is(err, store.ErrAmbiguousID) {
			return WrapExitError(ExitCommandError, "cannot show run", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		if f.JSON() {
			return f.Encode(CLIResponse{Status: "ok", Data: RunDetail{Run: run, Cases: cases}})
		}
		return writeRunDetail(f.Writer, run, cases)
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if f.JSON() {
		return f.Encode(CLIResponse{Status: "ok", Data: runs})
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	return writeRunList(f.Writer, runs)
}

func writeRunList(w io.Writer, runs []store.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSUITE\tRESULT\tCASES\tFAILED\tDIGEST")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			truncateID(r.ID),
			r.StartedAt.Format(time.RFC3339),
			r.Suite,
			passLabel(r.Pass),
			r.Total,
			r.Failed,
			shortDigest(r.Digest),
		)
	}
	return tw.Flush()
}

func writeRunDetail(w io.Writer, run store.Run, cases []store.CaseRecord) error {
	fmt.Fprintf(w, "Run:     %s\n", run.ID)
	fmt.Fprintf(w, "Suite:   %s\n", run.Suite)
	if run.Path != "" {
		fmt.Fprintf(w, "Path:    %s\n", run.Path)
	}
	fmt.Fprintf(w, "Started: %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Result:  %s (%d cases, %d failed, %s)\n", passLabel(run.Pass), run.Total, run.Failed, run.Duration)
	fmt.Fprintf(w, "Digest:  %s\n", run.Digest)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCASE\tRESULT\tGOT\tWANT")
	for _, c := range cases {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			c.Seq+1, c.Name, passLabel(c.Pass), orDash(c.Kind), orDash(c.Want))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	first := true
	for _, c := range cases {
		if c.Pass || c.Diagnostic == "" {
			continue
		}
		if first {
			fmt.Fprintln(w)
			first = false
		}
		fmt.Fprintf(w, "%s: %s\n", c.Name, c.Diagnostic)
	}
	return nil
}

func writeCaseHistory(w io.Writer, history []store.CaseRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tRESULT\tGOT\tWANT\tDIAGNOSTIC")
	for _, c := range history {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(c.RunID),
			c.StartedAt.Format(time.RFC3339),
			passLabel(c.Pass),
			orDash(c.Kind),
			orDash(c.Want),
			orDash(c.Diagnostic),
		)
	}
	return tw.Flush()
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

func shortDigest(d string) string {
	if len(d) <= 12 {
		return d
	}
	return d[:12]
}

func passLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
