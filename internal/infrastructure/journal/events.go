package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActuationEvent is a recorded actuator transition.
type ActuationEvent struct {
	ID         string
	Actuator   string
	On         bool
	RecordedAt time.Time
}

// RecordActuation appends an actuator transition to the journal.
//
// Actuator names follow the device package's constants ("lamp", "pump").
// The journal is an audit trail, not control state: a failed insert is
// reported but must never block the control loop, so callers log and
// continue.
func (db *DB) RecordActuation(ctx context.Context, actuator string, on bool) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO actuation_events (id, actuator, state, recorded_at)
		VALUES (?, ?, ?, ?)
	`,
		uuid.NewString(),
		actuator,
		on,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording actuation: %w", err)
	}
	return nil
}

// RecentActuations returns the newest actuation events, most recent first.
func (db *DB) RecentActuations(ctx context.Context, limit int) ([]ActuationEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, actuator, state, recorded_at
		FROM actuation_events
		ORDER BY recorded_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying actuations: %w", err)
	}
	defer rows.Close()

	var events []ActuationEvent
	for rows.Next() {
		var e ActuationEvent
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.Actuator, &e.On, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning actuation row: %w", err)
		}
		e.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck // Format is controlled
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actuations: %w", err)
	}
	return events, nil
}

// SaveThreshold upserts the last-known value of a named threshold.
//
// Threshold names follow the device package's constants ("light",
// "moisture"). Saving on every change means a restart resumes
// with the values the cloud last asked for, even before it reconnects.
func (db *DB) SaveThreshold(ctx context.Context, name string, value float64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO thresholds (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
		name,
		value,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving threshold %q: %w", name, err)
	}
	return nil
}

// LoadThreshold returns the persisted value of a named threshold.
// The ok result is false if the threshold has never been saved.
func (db *DB) LoadThreshold(ctx context.Context, name string) (value float64, ok bool, err error) {
	err = db.QueryRowContext(ctx,
		"SELECT value FROM thresholds WHERE name = ?", name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("loading threshold %q: %w", name, err)
	}
	return value, true, nil
}
