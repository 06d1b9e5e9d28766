// Package store provides SQLite-backed run history for gqlcheck suites.
//
// Every `gqlcheck test` invocation can record one run per suite:
//   - runs: suite name, start time, pass/fail counts and the canonical
//     snapshot digest of the outcome
//   - case_results: one row per case in suite order, with the observed
//     and declared failure kinds and the diagnostic line
//
// Two runs with the same digest produced identical outcomes, which makes
// drift between runs visible without storing full snapshots.
//
// # Ordering
//
// ListRuns returns newest first, ties broken by id. Case rows always come
// back in suite order (seq ASC).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Case rows are deleted with their run
package store
