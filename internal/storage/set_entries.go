package storage

import (
	"context"
	"fmt"

	"github.com/claude/koifit/internal/models"
)

// ListSetEntries returns every set of a session exercise ordered by set number.
func (tx *Tx) ListSetEntries(ctx context.Context, sessionExerciseID int64) ([]models.SetEntry, error) {
	return tx.querySetEntries(ctx,
		`SELECT id, session_exercise_id, set_number, weight_kg, reps, is_done, is_drop
		 FROM set_entry
		 WHERE session_exercise_id = ?
		 ORDER BY set_number`,
		sessionExerciseID)
}

// ListWorkingSetEntries returns the non-dropset sets of a session exercise
// ordered by set number.
func (tx *Tx) ListWorkingSetEntries(ctx context.Context, sessionExerciseID int64) ([]models.SetEntry, error) {
	return tx.querySetEntries(ctx,
		`SELECT id, session_exercise_id, set_number, weight_kg, reps, is_done, is_drop
		 FROM set_entry
		 WHERE session_exercise_id = ? AND is_drop = 0
		 ORDER BY set_number`,
		sessionExerciseID)
}

// UpsertSetEntry updates weight/reps/done of the set with the same set number,
// or inserts it as a normal (is_drop = 0) set. is_drop is never changed here.
func (tx *Tx) UpsertSetEntry(ctx context.Context, sessionExerciseID int64, in models.SetInput) error {
	_, err := tx.tx.ExecContext(ctx,
		`INSERT INTO set_entry (session_exercise_id, set_number, weight_kg, reps, is_done, is_drop)
		 VALUES (?, ?, ?, ?, ?, 0)
		 ON CONFLICT (session_exercise_id, set_number) DO UPDATE
			SET weight_kg = excluded.weight_kg, reps = excluded.reps, is_done = excluded.is_done`,
		sessionExerciseID, in.SetNumber, in.WeightKg, in.Reps, in.IsDone)
	if err != nil {
		return fmt.Errorf("upserting set %d: %w", in.SetNumber, err)
	}
	return nil
}

func (tx *Tx) querySetEntries(ctx context.Context, query string, args ...any) ([]models.SetEntry, error) {
	rows, err := tx.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying set entries: %w", err)
	}
	defer rows.Close()

	result := []models.SetEntry{}
	for rows.Next() {
		var s models.SetEntry
		if err := rows.Scan(&s.ID, &s.SessionExerciseID, &s.SetNumber, &s.WeightKg, &s.Reps, &s.IsDone, &s.IsDrop); err != nil {
			return nil, fmt.Errorf("scanning set entry: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
