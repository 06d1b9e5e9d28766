package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/gqlcheck/internal/harness"
)

// RecordResult stores a suite result as a new run. The run digest is the
// result's canonical snapshot digest, so identical outcomes share a digest.
func (s *Store) RecordResult(ctx context.Context, r *harness.Result) (string, error) {
	if r == nil {
		return "", errors.New("record result: nil result")
	}

	digest, err := harness.SnapshotDigest(r)
	if err != nil {
		return "", fmt.Errorf("record result: %w", err)
	}

	run := Run{
		StartedAt: r.StartedAt,
		Suite:     r.Suite,
		Path:      r.Path,
		Pass:      r.Pass,
		Total:     len(r.Cases),
		Failed:    r.Failed(),
		Duration:  r.Duration,
		Digest:    digest,
	}

	cases := make([]CaseRecord, len(r.Cases))
	for i, c := range r.Cases {
		cases[i] = CaseRecord{
			Seq:        i,
			Name:       c.Name,
			Pass:       c.Pass,
			Kind:       string(c.Kind),
			Want:       string(c.Want),
			Diagnostic: c.Diagnostic,
			Duration:   c.Duration,
		}
	}

	return s.WriteRun(ctx, run, cases)
}
