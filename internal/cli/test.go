package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"github.com/roach88/gqlcheck/internal/config"
	"github.com/roach88/gqlcheck/internal/harness"
	"github.com/roach88/gqlcheck/internal/report"
	"github.com/roach88/gqlcheck/internal/store"
	"github.com/roach88/gqlcheck/internal/verify"
)

// Golden snapshot states reported per suite.
const (
	GoldenNone     = "none"
	GoldenMatch    = "match"
	GoldenMismatch = "mismatch"
	GoldenUpdated  = "updated"
	GoldenSkipped  = "skipped" // --filter ran only part of the suite
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // case filter (glob pattern)
	Report   string // report file, .md or .html
	Progress bool   // force the progress bar off when false
}

// SuiteOutcome is the result of one suite file.
type SuiteOutcome struct {
	File   string          `json:"file"`
	Suite  string          `json:"suite"`
	Pass   bool            `json:"pass"`
	Golden string          `json:"golden"`
	RunID  string          `json:"run_id,omitempty"`
	Result *harness.Result `json:"result"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Suites []SuiteOutcome `json:"suites"`
	Passed int            `json:"passed"`
	Failed int            `json:"failed"`
	Total  int            `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <suites-dir>",
		Short: "Run verification suites",
		Long: `Run every suite file (.yaml, .yml, .cue) under a directory.

Each case verifies a recorded engine response against its columns and
expected values. A case passes when the outcome matches its fail key.
Suite outcomes are compared with golden snapshots in golden/ next to the
suite (or golden.dir); --update rewrites them. A snapshot covers the whole
suite, so --filter skips the golden check and cannot be combined with
--update. With history enabled each suite run is recorded for
"gqlcheck history".

Exit codes:
  0 - All suites passed
  1 - One or more suites failed
  2 - Command error (invalid paths, bad filter, etc.)

Examples:
  gqlcheck test ./suites
  gqlcheck test ./suites --filter "select_*"
  gqlcheck test ./suites --update
  gqlcheck test ./suites --report report.html --history`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.Update, "update", false, "regenerate golden files")
	flags.StringVar(&opts.Filter, "filter", "", "filter cases by glob pattern")
	flags.StringVar(&opts.Report, "report", "", "write a report file (.md or .html)")
	flags.BoolVar(&opts.Progress, "progress", true, "show a progress bar on terminals")
	flags.Int("parallel", 1, "cases verified at once per suite")
	flags.String("golden-dir", "", "golden snapshot directory (default golden/ next to each suite)")
	flags.Bool("history", false, "record runs in the history database")
	flags.String("history-db", "", "history database path")

	_ = rootOpts.v.BindPFlag(config.KeyParallel, flags.Lookup("parallel"))
	_ = rootOpts.v.BindPFlag(config.KeyGoldenDir, flags.Lookup("golden-dir"))
	_ = rootOpts.v.BindPFlag(config.KeyHistoryEnabled, flags.Lookup("history"))
	_ = rootOpts.v.BindPFlag(config.KeyHistoryPath, flags.Lookup("history-db"))

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, suitesDir string) error {
	cfg := opts.settings()
	logger := opts.logger()
	f := opts.formatter(cmd)

	if opts.Update && opts.Filter != "" {
		return NewExitError(ExitCommandError, "--update cannot be combined with --filter")
	}

	if info, err := os.Stat(suitesDir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("suites directory not found: %s", suitesDir))
	}

	h, err := harness.New(harness.Options{
		Parallel: cfg.Parallel,
		Filter:   opts.Filter,
		Logger:   logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid options", err)
	}

	files, err := harness.FindSuites(suitesDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find suites", err)
	}

	if len(files) == 0 {
		if f.JSON() {
			return f.Encode(CLIResponse{Status: "ok", Data: TestResult{Suites: []SuiteOutcome{}}})
		}
		fmt.Fprintln(f.Writer, "No suites found.")
		return nil
	}

	var (
		bar      *uiprogress.Bar
		progress *uiprogress.Progress
	)
	if opts.Progress && !f.JSON() && report.ColorEnabled(f.Writer) {
		progress = uiprogress.New()
		progress.SetOut(f.Writer)
		progress.Start()
		bar = progress.AddBar(len(files)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Running suites: "
		})
	}

	ctx := cmd.Context()
	result := TestResult{
		Suites: make([]SuiteOutcome, 0, len(files)),
		Total:  len(files),
	}
	for _, file := range files {
		outcome, err := runSuiteFile(ctx, h, opts, cfg, file)
		if err != nil {
			if progress != nil {
				progress.Stop()
			}
			return err
		}
		result.Suites = append(result.Suites, outcome)
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if bar != nil {
			bar.Incr()
		}
	}
	if progress != nil {
		progress.Stop()
	}

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg.History.Path, result.Suites); err != nil {
			return err
		}
	}

	results := make([]*harness.Result, len(result.Suites))
	for i, s := range result.Suites {
		results[i] = s.Result
	}
	if opts.Report != "" {
		if err := report.WriteFile(opts.Report, results); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
		logger.Info("wrote report", "path", opts.Report)
	}

	if f.JSON() {
		return outputTestJSON(f, result)
	}
	return outputTestText(f, opts, result)
}

// runSuiteFile loads, runs and golden-checks one suite. Load failures are
// reported as a failing suite; only cancellation and golden I/O errors
// stop the run.
func runSuiteFile(ctx context.Context, h *harness.Harness, opts *TestOptions, cfg *config.Config, file string) (SuiteOutcome, error) {
	outcome := SuiteOutcome{File: file, Golden: GoldenNone}

	suite, err := harness.LoadSuite(file)
	if err != nil {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		r := harness.NewResult(name)
		r.Path = file
		r.Add(harness.CaseResult{
			Name:       "load",
			Kind:       verify.KindOther,
			Diagnostic: err.Error(),
		})
		outcome.Suite = name
		outcome.Result = r
		return outcome, nil
	}

	r, err := h.Run(ctx, suite)
	if err != nil {
		return outcome, WrapExitError(ExitCommandError, "run interrupted", err)
	}
	outcome.Suite = suite.Name
	outcome.Result = r
	outcome.Pass = r.Pass

	if opts.Filter != "" {
		outcome.Golden = GoldenSkipped
		return outcome, nil
	}

	goldenPath := harness.GoldenPath(file, cfg.Golden.Dir)
	if opts.Update {
		if err := harness.WriteGolden(goldenPath, r); err != nil {
			return outcome, WrapExitError(ExitCommandError, "failed to update golden file", err)
		}
		outcome.Golden = GoldenUpdated
		return outcome, nil
	}

	match, err := harness.CompareGolden(goldenPath, r)
	switch {
	case err == nil && match:
		outcome.Golden = GoldenMatch
	case err == nil:
		outcome.Golden = GoldenMismatch
		outcome.Pass = false
	case errors.Is(err, harness.ErrNoGolden):
		outcome.Golden = GoldenNone
	default:
		return outcome, WrapExitError(ExitCommandError, "failed to compare golden file", err)
	}
	return outcome, nil
}

// recordHistory stores every suite result in the history database.
func recordHistory(ctx context.Context, path string, outcomes []SuiteOutcome) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WrapExitError(ExitCommandError, "failed to create history directory", err)
		}
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()

	for i := range outcomes {
		id, err := st.RecordResult(ctx, outcomes[i].Result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		outcomes[i].RunID = id
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(f *OutputFormatter, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}
	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d suite(s) failed", result.Failed),
		}
	}

	if err := f.Encode(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(f *OutputFormatter, opts *TestOptions, result TestResult) error {
	w := f.Writer
	p := report.NewPrinter(w, report.ColorEnabled(w))
	p.Verbose = f.Verbose

	notes := make(map[*harness.Result][]string, len(result.Suites))
	results := make([]*harness.Result, 0, len(result.Suites))
	for _, s := range result.Suites {
		notes[s.Result] = goldenNotes(s)
		results = append(results, s.Result)
	}
	p.Notes = func(r *harness.Result) []string { return notes[r] }

	if err := p.Results(results); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}
	if opts.Update {
		fmt.Fprintln(w, "Golden files updated.")
	}
	return nil
}

func goldenNotes(s SuiteOutcome) []string {
	var notes []string
	switch s.Golden {
	case GoldenMismatch:
		notes = append(notes, "golden snapshot differs (run with --update to regenerate)")
	case GoldenUpdated:
		notes = append(notes, "golden snapshot updated")
	}
	if s.RunID != "" {
		notes = append(notes, "recorded run "+s.RunID)
	}
	return notes
}
