package models

import "encoding/json"

// SetInput is one set in an autosave patch. Every field is required on the
// wire; a decoded set remembers the first one that was absent or null.
type SetInput struct {
	SetNumber int     `json:"set_number"`
	WeightKg  float64 `json:"weight_kg"`
	Reps      int     `json:"reps"`
	IsDone    int     `json:"is_done"`

	missing string
}

// UnmarshalJSON decodes a set, noting which required field was missing.
func (s *SetInput) UnmarshalJSON(data []byte) error {
	var wire struct {
		SetNumber *int     `json:"set_number"`
		WeightKg  *float64 `json:"weight_kg"`
		Reps      *int     `json:"reps"`
		IsDone    *int     `json:"is_done"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*s = SetInput{}
	switch {
	case wire.SetNumber == nil:
		s.missing = "set_number"
	case wire.WeightKg == nil:
		s.missing = "weight_kg"
	case wire.Reps == nil:
		s.missing = "reps"
	case wire.IsDone == nil:
		s.missing = "is_done"
	}
	if wire.SetNumber != nil {
		s.SetNumber = *wire.SetNumber
	}
	if wire.WeightKg != nil {
		s.WeightKg = *wire.WeightKg
	}
	if wire.Reps != nil {
		s.Reps = *wire.Reps
	}
	if wire.IsDone != nil {
		s.IsDone = *wire.IsDone
	}
	return nil
}

// MissingField names the first required field absent from the decoded
// JSON, or "" when the set was complete or built in code.
func (s SetInput) MissingField() string {
	return s.missing
}

// SavePatch is the autosave request body. A nil field means "no change";
// an explicit JSON null is treated the same way.
type SavePatch struct {
	Notes       *string    `json:"notes"`
	EffortTag   *string    `json:"effort_tag"`
	DropsetDone *int       `json:"dropset_done"`
	Sets        []SetInput `json:"sets"`
}

// HasExerciseFields reports whether the patch touches any session_exercise column.
func (p SavePatch) HasExerciseFields() bool {
	return p.Notes != nil || p.EffortTag != nil || p.DropsetDone != nil
}

// PreviousAttempt is the most recent finished attempt at a slot, without dropsets.
type PreviousAttempt struct {
	SessionExerciseID int64      `json:"session_exercise_id"`
	SessionID         int64      `json:"session_id"`
	Date              string     `json:"date"`
	EffortTag         *string    `json:"effort_tag"`
	NextTimeNote      *string    `json:"next_time_note"`
	Sets              []SetEntry `json:"sets"`
}

// SlotView is the per-slot part of a session detail.
type SlotView struct {
	SessionExercise SessionExercise  `json:"session_exercise"`
	Slot            SlotWithExercise `json:"slot"`
	Sets            []SetEntry       `json:"sets"`
	Previous        *PreviousAttempt `json:"previous,omitempty"`
}

// SessionDetail is everything the session page needs, slots ordered by ordinal.
type SessionDetail struct {
	Session   Session    `json:"session"`
	Day       Day        `json:"day"`
	Exercises []SlotView `json:"exercises"`
}

// ActiveSession describes the unfinished session, if any.
type ActiveSession struct {
	SessionID int64  `json:"session_id"`
	DayID     int64  `json:"day_id"`
	DayLabel  string `json:"day_label"`
}
