package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunNotFound is returned when no run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousID is returned when an ID prefix matches more than one run.
var ErrAmbiguousID = errors.New("run id prefix is ambiguous")

const runColumns = `id, started_at, suite, path, pass, total, failed, duration_ms, digest`

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id COLLATE BINARY ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run of a suite. ok is false when the
// suite has never been recorded.
func (s *Store) LatestRun(ctx context.Context, suite string) (run Run, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE suite = ?
		ORDER BY started_at DESC, id COLLATE BINARY ASC
		LIMIT 1
	`, suite)

	run, err = scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// ReadRun returns a run and its cases in suite order. id may be a unique
// prefix of the full run ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, []CaseRecord, error) {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return Run{}, nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, fullID)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, name, pass, kind, want, diagnostic, duration_ms
		FROM case_results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, fullID)
	if err != nil {
		return Run{}, nil, fmt.Errorf("query case results: %w", err)
	}
	defer rows.Close()

	cases := []CaseRecord{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return Run{}, nil, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate case results: %w", err)
	}
	return run, cases, nil
}

// CaseRun is one recorded outcome of a case, with the run it belongs to.
type CaseRun struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	CaseRecord
}

// CaseHistory returns the recorded outcomes of one case of a suite,
// newest run first. A limit of zero or less returns every outcome.
func (s *Store) CaseHistory(ctx context.Context, suite, name string, limit int) ([]CaseRun, error) {
	query := `
		SELECT r.id, r.started_at, c.seq, c.name, c.pass, c.kind, c.want, c.diagnostic, c.duration_ms
		FROM case_results c
		JOIN runs r ON r.id = c.run_id
		WHERE r.suite = ? AND c.name = ?
		ORDER BY r.started_at DESC, r.id COLLATE BINARY ASC`
	args := []any{suite, name}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query case history: %w", err)
	}
	defer rows.Close()

	out := []CaseRun{}
	for rows.Next() {
		var (
			cr        CaseRun
			startedMS int64
			pass      int
			durMS     int64
		)
		if err := rows.Scan(&cr.RunID, &startedMS, &cr.Seq, &cr.Name, &pass,
			&cr.Kind, &cr.Want, &cr.Diagnostic, &durMS); err != nil {
			return nil, fmt.Errorf("scan case history: %w", err)
		}
		cr.StartedAt = time.UnixMilli(startedMS).UTC()
		cr.Pass = pass != 0
		cr.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case history: %w", err)
	}
	return out, nil
}

// resolveID expands a unique prefix to a full run ID.
func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("read run: %w", ErrRunNotFound)
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2
	`, escaped+"%")
	if err != nil {
		return "", fmt.Errorf("resolve run id: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", fmt.Errorf("resolve run id: %w", err)
		}
		if m == id {
			return m, nil
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve run id: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("read run %s: %w", id, ErrAmbiguousID)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		startedMS  int64
		pass       int
		durationMS int64
	)
	err := row.Scan(&run.ID, &startedMS, &run.Suite, &run.Path, &pass,
		&run.Total, &run.Failed, &durationMS, &run.Digest)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = time.UnixMilli(startedMS).UTC()
	run.Pass = pass != 0
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

func scanCase(row scanner) (CaseRecord, error) {
	var (
		c          CaseRecord
		pass       int
		durationMS int64
	)
	if err := row.Scan(&c.Seq, &c.Name, &pass, &c.Kind, &c.Want, &c.Diagnostic, &durationMS); err != nil {
		return CaseRecord{}, fmt.Errorf("scan case result: %w", err)
	}
	c.Pass = pass != 0
	c.Duration = time.Duration(durationMS) * time.Millisecond
	return c, nil
}
