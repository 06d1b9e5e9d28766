package harness

import (
	"time"

	"github.com/roach88/gqlcheck/internal/verify"
)

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `json:"name"`

	// Pass is true when the observed outcome matches the case's fail key:
	// a clean verification when fail is empty, otherwise a failure of the
	// named kind.
	Pass bool `json:"pass"`

	// Kind is the observed failure kind, empty on a clean verification.
	Kind verify.Kind `json:"kind,omitempty"`

	// Want is the failure kind the case declared, empty if none.
	Want verify.Kind `json:"want,omitempty"`

	// Diagnostic is the one-line verifier or load error message.
	Diagnostic string `json:"diagnostic,omitempty"`

	// Duration is excluded from snapshots.
	Duration time.Duration `json:"duration_ns"`
}

// Result is the outcome of running a suite.
type Result struct {
	Suite     string        `json:"suite"`
	Path      string        `json:"path,omitempty"`
	Pass      bool          `json:"pass"`
	Cases     []CaseResult  `json:"cases"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// NewResult creates a passing result for the named suite.
func NewResult(suite string) *Result {
	return &Result{
		Suite: suite,
		Pass:  true,
		Cases: []CaseResult{},
	}
}

// Add appends a case outcome and fails the result if the case failed.
func (r *Result) Add(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.Pass = false
	}
}

// Passed counts passing cases.
func (r *Result) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Pass {
			n++
		}
	}
	return n
}

// Failed counts failing cases.
func (r *Result) Failed() int {
	return len(r.Cases) - r.Passed()
}

// Failures returns the failing cases in suite order.
func (r *Result) Failures() []CaseResult {
	var out []CaseResult
	for _, c := range r.Cases {
		if !c.Pass {
			out = append(out, c)
		}
	}
	return out
}
