package store

import (
	"context"
	"fmt"
	"time"
)

// Run is one recorded suite run.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Suite     string        `json:"suite"`
	Path      string        `json:"path,omitempty"`
	Pass      bool          `json:"pass"`
	Total     int           `json:"total"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration_ns"`
	Digest    string        `json:"digest"`
}

// CaseRecord is one case outcome within a run. Seq is the case's position
// in the suite, starting at 0.
type CaseRecord struct {
	Seq        int           `json:"seq"`
	Name       string        `json:"name"`
	Pass       bool          `json:"pass"`
	Kind       string        `json:"kind,omitempty"`
	Want       string        `json:"want,omitempty"`
	Diagnostic string        `json:"diagnostic,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// WriteRun inserts a run and its case records in one transaction. An
// empty run.ID is filled from the store's ID generator. Returns the run ID.
func (s *Store) WriteRun(ctx context.Context, run Run, cases []CaseRecord) (string, error) {
	if run.ID == "" {
		run.ID = s.newID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, suite, path, pass, total, failed, duration_ms, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().UnixMilli(),
		run.Suite,
		run.Path,
		boolToInt(run.Pass),
		run.Total,
		run.Failed,
		run.Duration.Milliseconds(),
		run.Digest,
	)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO case_results
		(run_id, seq, name, pass, kind, want, diagnostic, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("write run: prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range cases {
		_, err := stmt.ExecContext(ctx,
			run.ID,
			c.Seq,
			c.Name,
			boolToInt(c.Pass),
			c.Kind,
			c.Want,
			c.Diagnostic,
			c.Duration.Milliseconds(),
		)
		if err != nil {
			return "", fmt.Errorf("write run: case %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write run: commit: %w", err)
	}
	return run.ID, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
