package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/koifit/internal/models"
)

// GetSession returns a session by ID. A missing session yields an error wrapping sql.ErrNoRows.
func (tx *Tx) GetSession(ctx context.Context, sessionID int64) (models.Session, error) {
	var s models.Session
	err := tx.tx.QueryRowContext(ctx,
		`SELECT id, day_id, date, is_finished FROM session WHERE id = ?`, sessionID,
	).Scan(&s.ID, &s.DayID, &s.Date, &s.IsFinished)
	if err != nil {
		return models.Session{}, fmt.Errorf("querying session %d: %w", sessionID, err)
	}
	return s, nil
}

// UnfinishedSessionIDs returns the IDs of every session with is_finished = 0.
func (tx *Tx) UnfinishedSessionIDs(ctx context.Context) ([]int64, error) {
	rows, err := tx.tx.QueryContext(ctx, `SELECT id FROM session WHERE is_finished = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying unfinished sessions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ActiveSession returns the oldest unfinished session with its day label, or nil.
func (tx *Tx) ActiveSession(ctx context.Context) (*models.ActiveSession, error) {
	var a models.ActiveSession
	err := tx.tx.QueryRowContext(ctx,
		`SELECT s.id, s.day_id, d.label
		 FROM session s
		 JOIN day d ON d.id = s.day_id
		 WHERE s.is_finished = 0
		 ORDER BY s.id
		 LIMIT 1`,
	).Scan(&a.SessionID, &a.DayID, &a.DayLabel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active session: %w", err)
	}
	return &a, nil
}

// PurgeSession deletes a session together with its session exercises and
// set entries, children first.
func (tx *Tx) PurgeSession(ctx context.Context, sessionID int64) error {
	if _, err := tx.tx.ExecContext(ctx,
		`DELETE FROM set_entry WHERE session_exercise_id IN
		 (SELECT id FROM session_exercise WHERE session_id = ?)`, sessionID); err != nil {
		return fmt.Errorf("deleting set entries of session %d: %w", sessionID, err)
	}
	if _, err := tx.tx.ExecContext(ctx,
		`DELETE FROM session_exercise WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting session exercises of session %d: %w", sessionID, err)
	}
	if _, err := tx.tx.ExecContext(ctx,
		`DELETE FROM session WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting session %d: %w", sessionID, err)
	}
	return nil
}

// InsertSession creates an unfinished session and returns its ID.
func (tx *Tx) InsertSession(ctx context.Context, dayID int64, date string) (int64, error) {
	res, err := tx.tx.ExecContext(ctx,
		`INSERT INTO session (day_id, date, is_finished) VALUES (?, ?, 0)`, dayID, date)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading session id: %w", err)
	}
	return id, nil
}

// MarkSessionFinished flips is_finished to 1. It only touches unfinished
// sessions and reports whether a row changed.
func (tx *Tx) MarkSessionFinished(ctx context.Context, sessionID int64) (bool, error) {
	res, err := tx.tx.ExecContext(ctx,
		`UPDATE session SET is_finished = 1 WHERE id = ? AND is_finished = 0`, sessionID)
	if err != nil {
		return false, fmt.Errorf("finishing session %d: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("finishing session %d: %w", sessionID, err)
	}
	return n > 0, nil
}
