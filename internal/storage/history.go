package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/koifit/internal/models"
)

// PreviousAttempt finds the most recent finished session exercise for the
// slot/exercise pair, ordered by session date then session ID (both
// descending), and loads its non-dropset sets. Returns nil when there is none.
func (tx *Tx) PreviousAttempt(ctx context.Context, slotID, exerciseID int64) (*models.PreviousAttempt, error) {
	var (
		prev            models.PreviousAttempt
		effortTag, note sql.NullString
	)
	err := tx.tx.QueryRowContext(ctx,
		`SELECT se.id, s.id, s.date, se.effort_tag, se.next_time_note
		 FROM session_exercise se
		 JOIN session s ON s.id = se.session_id
		 WHERE se.slot_id = ? AND se.exercise_id = ? AND s.is_finished = 1
		 ORDER BY s.date DESC, s.id DESC
		 LIMIT 1`,
		slotID, exerciseID,
	).Scan(&prev.SessionExerciseID, &prev.SessionID, &prev.Date, &effortTag, &note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying previous attempt for slot %d: %w", slotID, err)
	}
	prev.EffortTag = nullString(effortTag)
	prev.NextTimeNote = nullString(note)

	prev.Sets, err = tx.ListWorkingSetEntries(ctx, prev.SessionExerciseID)
	if err != nil {
		return nil, err
	}
	return &prev, nil
}
