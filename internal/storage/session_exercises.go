package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/claude/koifit/internal/models"
)

const sessionExerciseColumns = `id, session_id, slot_id, exercise_id, effort_tag, next_time_note, dropset_done`

// FindSessionExercise returns the session exercise for (sessionID, slotID).
// A missing row yields an error wrapping sql.ErrNoRows.
func (tx *Tx) FindSessionExercise(ctx context.Context, sessionID, slotID int64) (models.SessionExercise, error) {
	row := tx.tx.QueryRowContext(ctx,
		`SELECT `+sessionExerciseColumns+` FROM session_exercise WHERE session_id = ? AND slot_id = ?`,
		sessionID, slotID)
	se, err := scanSessionExercise(row)
	if err != nil {
		return models.SessionExercise{}, fmt.Errorf("querying session exercise for slot %d: %w", slotID, err)
	}
	return se, nil
}

// GetSessionExercise returns a session exercise that belongs to sessionID.
// A row under another session is reported as missing (sql.ErrNoRows).
func (tx *Tx) GetSessionExercise(ctx context.Context, sessionID, sessionExerciseID int64) (models.SessionExercise, error) {
	row := tx.tx.QueryRowContext(ctx,
		`SELECT `+sessionExerciseColumns+` FROM session_exercise WHERE id = ? AND session_id = ?`,
		sessionExerciseID, sessionID)
	se, err := scanSessionExercise(row)
	if err != nil {
		return models.SessionExercise{}, fmt.Errorf("querying session exercise %d: %w", sessionExerciseID, err)
	}
	return se, nil
}

// InsertSessionExercise creates the session exercise for a slot with
// dropset_done = 0 and no notes. ON CONFLICT keeps a concurrent duplicate
// from ever producing a second row for the same (session, slot).
func (tx *Tx) InsertSessionExercise(ctx context.Context, sessionID, slotID, exerciseID int64) (models.SessionExercise, error) {
	_, err := tx.tx.ExecContext(ctx,
		`INSERT INTO session_exercise (session_id, slot_id, exercise_id, dropset_done)
		 VALUES (?, ?, ?, 0)
		 ON CONFLICT (session_id, slot_id) DO NOTHING`,
		sessionID, slotID, exerciseID)
	if err != nil {
		return models.SessionExercise{}, fmt.Errorf("inserting session exercise: %w", err)
	}
	return tx.FindSessionExercise(ctx, sessionID, slotID)
}

// CountSessionExercises returns how many session exercises a session has.
func (tx *Tx) CountSessionExercises(ctx context.Context, sessionID int64) (int, error) {
	var n int
	err := tx.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_exercise WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting session exercises: %w", err)
	}
	return n, nil
}

// UpdateSessionExercise writes only the non-nil fields of the patch in a
// single UPDATE. A patch without such fields is a no-op.
func (tx *Tx) UpdateSessionExercise(ctx context.Context, sessionExerciseID int64, patch models.SavePatch) error {
	var (
		sets []string
		args []any
	)
	if patch.Notes != nil {
		sets = append(sets, "next_time_note = ?")
		args = append(args, *patch.Notes)
	}
	if patch.EffortTag != nil {
		sets = append(sets, "effort_tag = ?")
		args = append(args, *patch.EffortTag)
	}
	if patch.DropsetDone != nil {
		sets = append(sets, "dropset_done = ?")
		args = append(args, *patch.DropsetDone)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, sessionExerciseID)
	query := `UPDATE session_exercise SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := tx.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating session exercise %d: %w", sessionExerciseID, err)
	}
	return nil
}

func scanSessionExercise(row *sql.Row) (models.SessionExercise, error) {
	var (
		se              models.SessionExercise
		effortTag, note sql.NullString
	)
	if err := row.Scan(&se.ID, &se.SessionID, &se.SlotID, &se.ExerciseID, &effortTag, &note, &se.DropsetDone); err != nil {
		return models.SessionExercise{}, err
	}
	se.EffortTag = nullString(effortTag)
	se.NextTimeNote = nullString(note)
	return se, nil
}
