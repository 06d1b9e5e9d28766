package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/gqlcheck/internal/datatable"
	"github.com/roach88/gqlcheck/internal/verify"
)

// Options configures a suite run.
type Options struct {
	// Parallel is the maximum number of cases verified at once. Values
	// below 2 run cases sequentially.
	Parallel int

	// Filter is a glob matched against case names. Empty runs every case.
	Filter string

	// Logger receives per-case debug output. Nil discards it.
	Logger *slog.Logger

	// Now is the clock used for timings. Nil uses time.Now.
	Now func() time.Time
}

// Harness runs suites against the verifier.
type Harness struct {
	verifier *verify.Verifier
	logger   *slog.Logger
	now      func() time.Time
	parallel int
	filter   string
}

// New creates a Harness from opts.
func New(opts Options) (*Harness, error) {
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Harness{
		verifier: verify.New(logger),
		logger:   logger,
		now:      now,
		parallel: opts.Parallel,
		filter:   opts.Filter,
	}, nil
}

// Run executes a suite with opts. See Harness.Run.
func Run(ctx context.Context, suite *Suite, opts Options) (*Result, error) {
	h, err := New(opts)
	if err != nil {
		return nil, err
	}
	return h.Run(ctx, suite)
}

// Run verifies every selected case of suite. Cases are independent: a
// failing case is recorded and the run continues. Results keep suite
// order regardless of parallelism. The returned error is non-nil only
// when the context is cancelled.
func (h *Harness) Run(ctx context.Context, suite *Suite) (*Result, error) {
	cases := h.selectCases(suite.Cases)
	outcomes := make([]CaseResult, len(cases))

	result := NewResult(suite.Name)
	result.Path = suite.Path
	result.StartedAt = h.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.parallel, 1))

	for i := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = h.runCase(suite, &cases[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("suite %s: %w", suite.Name, err)
	}

	for _, c := range outcomes {
		result.Add(c)
	}
	result.Duration = h.now().Sub(result.StartedAt)

	h.logger.Info("suite completed",
		"suite", suite.Name,
		"passed", result.Passed(),
		"failed", result.Failed(),
	)
	return result, nil
}

func (h *Harness) selectCases(cases []Case) []Case {
	if h.filter == "" {
		return cases
	}
	var out []Case
	for _, c := range cases {
		// pattern was validated in New
		if ok, _ := filepath.Match(h.filter, c.Name); ok {
			out = append(out, c)
		}
	}
	return out
}

// runCase verifies one case and compares the outcome with its fail key.
func (h *Harness) runCase(suite *Suite, c *Case) CaseResult {
	start := h.now()
	out := CaseResult{Name: c.Name, Want: verify.Kind(c.Fail)}

	err := h.verifyCase(c)
	out.Duration = h.now().Sub(start)

	out.Kind = verify.KindOf(err)
	if err != nil {
		out.Diagnostic = err.Error()
	}
	out.Pass = out.Kind == out.Want
	if out.Kind == verify.KindOther {
		out.Pass = false
	}

	h.logger.Debug("case completed",
		"suite", suite.Name,
		"case", c.Name,
		"pass", out.Pass,
		"kind", string(out.Kind),
	)
	return out
}

func (h *Harness) verifyCase(c *Case) error {
	specs, err := verify.ParseColumnSpecs(c.Columns)
	if err != nil {
		return fmt.Errorf("columns: %w", err)
	}

	resp, err := LoadResponse(c)
	if err != nil {
		return err
	}

	return h.verifier.Verify(specs, c.Expect, resp)
}

// LoadResponse decodes the engine output a case refers to.
func LoadResponse(c *Case) (*datatable.Response, error) {
	if c.ResultInline != "" {
		resp, err := datatable.Parse([]byte(c.ResultInline))
		if err != nil {
			return nil, fmt.Errorf("result_inline: %w", err)
		}
		return resp, nil
	}

	f, err := os.Open(c.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to open result: %w", err)
	}
	defer f.Close()

	resp, err := datatable.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Result, err)
	}
	return resp, nil
}
