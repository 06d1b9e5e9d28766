package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/sebdah/goldie/v2"

	"github.com/roach88/gqlcheck/internal/canonical"
	"github.com/roach88/gqlcheck/internal/verify"
)

// GoldenDir is the default directory, relative to a suite file, that holds
// its golden snapshot.
const GoldenDir = "golden"

// ErrNoGolden is returned by CompareGolden when no snapshot exists yet.
var ErrNoGolden = errors.New("golden file not found")

// toCanonicalMap converts a result to the structure recorded in golden
// files. Timings are left out so snapshots are stable. Diagnostics of
// non-verification errors carry host paths and are reduced to their kind.
func toCanonicalMap(r *Result) map[string]any {
	cases := make([]any, len(r.Cases))
	for i, c := range r.Cases {
		m := map[string]any{
			"name": c.Name,
			"pass": c.Pass,
		}
		if c.Kind != verify.KindNone {
			m["kind"] = string(c.Kind)
		}
		if c.Want != verify.KindNone {
			m["want"] = string(c.Want)
		}
		if c.Diagnostic != "" && c.Kind != verify.KindOther {
			m["diagnostic"] = c.Diagnostic
		}
		cases[i] = m
	}

	return map[string]any{
		"suite": r.Suite,
		"pass":  r.Pass,
		"cases": cases,
	}
}

// Snapshot renders a result as canonical JSON.
func Snapshot(r *Result) ([]byte, error) {
	data, err := canonical.Marshal(toCanonicalMap(r))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// SnapshotDigest returns the content digest of a result's snapshot. Two
// runs with equal digests produced identical outcomes.
func SnapshotDigest(r *Result) (string, error) {
	data, err := Snapshot(r)
	if err != nil {
		return "", err
	}
	return canonical.DigestBytes(canonical.DomainSnapshot, data), nil
}

// GoldenPath returns the snapshot path for the suite loaded from
// suiteFile: <dir>/<golden dir>/<suite file base name>.golden. An empty
// goldenDir uses GoldenDir; a relative one resolves against the suite
// file's directory.
func GoldenPath(suiteFile, goldenDir string) string {
	if goldenDir == "" {
		goldenDir = GoldenDir
	}
	dir := filepath.Dir(suiteFile)
	if !filepath.IsAbs(goldenDir) {
		goldenDir = filepath.Join(dir, goldenDir)
	}
	base := filepath.Base(suiteFile)
	name := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(goldenDir, name+".golden")
}

// WriteGolden stores a result's snapshot at path. The write holds an
// exclusive lock on path+".lock" and replaces the file atomically.
func WriteGolden(path string, r *Result) error {
	data, err := Snapshot(r)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	return atomicWrite(path, data)
}

// CompareGolden reports whether a result matches the snapshot at path.
// A missing snapshot returns ErrNoGolden.
func CompareGolden(path string, r *Result) (bool, error) {
	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, ErrNoGolden
	}
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}

	got, err := Snapshot(r)
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, got), nil
}

// atomicWrite writes to a temp file in the target directory and renames
// it over path, so readers never see a partial snapshot.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	tmp = nil
	return nil
}

// RunWithGolden runs a suite and compares its snapshot against
// testdata/golden/{suite.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, suite *Suite) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), suite, Options{})
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, suite.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the suite.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
