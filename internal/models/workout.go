package models

// Day is a named training-day template, e.g. "Upper 1".
type Day struct {
	ID      int64  `json:"id"`
	Label   string `json:"label"`
	Ordinal int    `json:"ordinal"`
}

// Exercise is a catalog entry referenced by slots and session exercises.
type Exercise struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	MinIncrement float64 `json:"min_increment"`
	Active       bool    `json:"active"`
	Notes        *string `json:"notes"`
}

// Slot is a fixed position within a day's template.
type Slot struct {
	ID                  int64   `json:"id"`
	DayID               int64   `json:"day_id"`
	Ordinal             int     `json:"ordinal"`
	Title               string  `json:"title"`
	PreferredExerciseID int64   `json:"preferred_exercise_id"`
	WarmupSets          string  `json:"warmup_sets"`
	WorkingSetsCount    int     `json:"working_sets_count"`
	RepTarget           string  `json:"rep_target"`
	RPERange            *string `json:"rpe_range"`
	RestMinutes         float64 `json:"rest_minutes"`
	HasDropset          bool    `json:"has_dropset"`
}

// Session is one attempt at a day's workout on a given date (YYYY-MM-DD).
type Session struct {
	ID         int64  `json:"id"`
	DayID      int64  `json:"day_id"`
	Date       string `json:"date"`
	IsFinished bool   `json:"is_finished"`
}

// SessionExercise records how a session executed one slot.
type SessionExercise struct {
	ID           int64   `json:"id"`
	SessionID    int64   `json:"session_id"`
	SlotID       int64   `json:"slot_id"`
	ExerciseID   int64   `json:"exercise_id"`
	EffortTag    *string `json:"effort_tag"`
	NextTimeNote *string `json:"next_time_note"`
	DropsetDone  bool    `json:"dropset_done"`
}

// SetEntry is one logged set. SetNumber is its identity within a session exercise.
type SetEntry struct {
	ID                int64   `json:"id"`
	SessionExerciseID int64   `json:"session_exercise_id"`
	SetNumber         int     `json:"set_number"`
	WeightKg          float64 `json:"weight_kg"`
	Reps              int     `json:"reps"`
	IsDone            bool    `json:"is_done"`
	IsDrop            bool    `json:"is_drop"`
}

// SlotWithExercise is a slot joined with its preferred exercise.
type SlotWithExercise struct {
	Slot
	Exercise Exercise `json:"exercise"`
}
