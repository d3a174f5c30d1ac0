// Package journal provides the device's local SQLite journal.
//
// The journal is the Go-side replacement for on-flash persistence: it keeps
// an audit trail of actuator transitions (lamp, pump) and the last-known
// automation thresholds, so a restarted daemon resumes with the values the
// cloud last asked for before it has reconnected.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations embedded into the binary
//   - Actuation event recording and retrieval
//   - Threshold persistence and restoration
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Performance Characteristics:
//   - WAL mode allows concurrent reads during writes
//   - Busy timeout prevents lock contention errors
//   - Journal writes are advisory; the control loop never blocks on them
//
// Usage:
//
//	db, err := journal.Open(journal.Config{Path: cfg.Journal.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// Migrations are additive-only to support safe rollbacks:
//   - New columns must be NULLABLE or have DEFAULT values
//   - Never DROP or RENAME columns
//   - Each migration file has both .up.sql and .down.sql
package journal
