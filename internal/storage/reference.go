package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/claude/koifit/internal/models"
)

// ListDays returns all days ordered by ordinal.
func (tx *Tx) ListDays(ctx context.Context) ([]models.Day, error) {
	rows, err := tx.tx.QueryContext(ctx, `SELECT id, label, ordinal FROM day ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("querying days: %w", err)
	}
	defer rows.Close()

	result := []models.Day{}
	for rows.Next() {
		var d models.Day
		if err := rows.Scan(&d.ID, &d.Label, &d.Ordinal); err != nil {
			return nil, fmt.Errorf("scanning day: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// GetDay returns a single day. A missing day yields an error wrapping sql.ErrNoRows.
func (tx *Tx) GetDay(ctx context.Context, dayID int64) (models.Day, error) {
	var d models.Day
	err := tx.tx.QueryRowContext(ctx,
		`SELECT id, label, ordinal FROM day WHERE id = ?`, dayID,
	).Scan(&d.ID, &d.Label, &d.Ordinal)
	if err != nil {
		return models.Day{}, fmt.Errorf("querying day %d: %w", dayID, err)
	}
	return d, nil
}

// ListSlots returns the slots of a day joined with their preferred exercise,
// ordered by ordinal.
func (tx *Tx) ListSlots(ctx context.Context, dayID int64) ([]models.SlotWithExercise, error) {
	rows, err := tx.tx.QueryContext(ctx,
		`SELECT s.id, s.day_id, s.ordinal, s.title, s.preferred_exercise_id, s.warmup_sets,
		 s.working_sets_count, s.rep_target, s.rpe_range, s.rest_minutes, s.has_dropset,
		 e.id, e.name, e.min_increment, e.active, e.notes
		 FROM slot s
		 JOIN exercise e ON e.id = s.preferred_exercise_id
		 WHERE s.day_id = ?
		 ORDER BY s.ordinal`,
		dayID)
	if err != nil {
		return nil, fmt.Errorf("querying slots: %w", err)
	}
	defer rows.Close()

	result := []models.SlotWithExercise{}
	for rows.Next() {
		var (
			s          models.SlotWithExercise
			rpe, notes sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.DayID, &s.Ordinal, &s.Title, &s.PreferredExerciseID, &s.WarmupSets,
			&s.WorkingSetsCount, &s.RepTarget, &rpe, &s.RestMinutes, &s.HasDropset,
			&s.Exercise.ID, &s.Exercise.Name, &s.Exercise.MinIncrement, &s.Exercise.Active, &notes); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		s.RPERange = nullString(rpe)
		s.Exercise.Notes = nullString(notes)
		result = append(result, s)
	}
	return result, rows.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
