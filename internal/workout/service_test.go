package workout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/koifit/internal/models"
	"github.com/claude/koifit/internal/storage"
)

// fixedClock returns a clock that reports each given day in turn, then
// repeats the last one.
func fixedClock(days ...string) func() time.Time {
	i := 0
	return func() time.Time {
		d, _ := time.ParseInLocation(dateLayout, days[i], time.Local)
		if i < len(days)-1 {
			i++
		}
		return d
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *storage.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "koifit.db")
	if _, err := storage.Bootstrap(path, false); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	db, err := storage.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(db, log, opts...), db
}

func countSessionExercises(t *testing.T, db *storage.DB, sessionID int64) int {
	t.Helper()
	var n int
	err := db.ReadTx(context.Background(), func(tx *storage.Tx) error {
		var err error
		n, err = tx.CountSessionExercises(context.Background(), sessionID)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// TestViewMaterializesOncePerSlot verifies that viewing creates exactly one
// session exercise per slot and that repeat views create no duplicates.
func TestViewMaterializesOncePerSlot(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	days, err := svc.ListDays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, day := range days {
		session, err := svc.Start(ctx, day.ID)
		if err != nil {
			t.Fatalf("start day %d: %v", day.ID, err)
		}
		if n := countSessionExercises(t, db, session.ID); n != 0 {
			t.Errorf("day %d: %d session exercises before view, want 0", day.ID, n)
		}

		first, err := svc.View(ctx, session.ID)
		if err != nil {
			t.Fatalf("view: %v", err)
		}
		second, err := svc.View(ctx, session.ID)
		if err != nil {
			t.Fatalf("second view: %v", err)
		}

		if got := countSessionExercises(t, db, session.ID); got != len(first.Exercises) {
			t.Errorf("day %d: %d rows for %d slots", day.ID, got, len(first.Exercises))
		}
		for i := range first.Exercises {
			if first.Exercises[i].SessionExercise.ID != second.Exercises[i].SessionExercise.ID {
				t.Errorf("slot %d re-materialized with a new id", first.Exercises[i].Slot.ID)
			}
		}
	}
}

// TestViewOrdersSlotsAndUsesPreferredExercise verifies slot order and the
// exercise chosen for lazily created rows.
func TestViewOrdersSlotsAndUsesPreferredExercise(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	detail, err := svc.View(ctx, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Day.Label != "Upper 1" {
		t.Errorf("day = %q, want %q", detail.Day.Label, "Upper 1")
	}
	for i, ex := range detail.Exercises {
		if i > 0 && ex.Slot.Ordinal <= detail.Exercises[i-1].Slot.Ordinal {
			t.Errorf("slot %d out of order", ex.Slot.ID)
		}
		if ex.SessionExercise.ExerciseID != ex.Slot.PreferredExerciseID {
			t.Errorf("slot %d exercise = %d, want %d", ex.Slot.ID, ex.SessionExercise.ExerciseID, ex.Slot.PreferredExerciseID)
		}
		if ex.SessionExercise.DropsetDone {
			t.Errorf("slot %d dropset_done = true on creation", ex.Slot.ID)
		}
		if ex.Previous != nil {
			t.Errorf("slot %d has previous data with no finished sessions", ex.Slot.ID)
		}
	}
}

// TestStartAbandonsUnfinished verifies that starting while a session is
// unfinished leaves exactly one session, for the most recent day.
func TestStartAbandonsUnfinished(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	detail, err := svc.View(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	se := detail.Exercises[0].SessionExercise
	if err := svc.Save(ctx, first.ID, se.ID, models.SavePatch{Sets: []models.SetInput{{SetNumber: 1, WeightKg: 50, Reps: 5, IsDone: 1}}}); err != nil {
		t.Fatal(err)
	}

	second, err := svc.Start(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}

	active, err := svc.ActiveSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active == nil || active.SessionID != second.ID || active.DayID != 2 {
		t.Fatalf("active = %+v, want session %d for day 2", active, second.ID)
	}
	if _, err := svc.View(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("view abandoned session: err = %v, want ErrNotFound", err)
	}
	if n := countSessionExercises(t, db, first.ID); n != 0 {
		t.Errorf("abandoned session still has %d session exercises", n)
	}
}

// TestStartUnknownDay verifies ErrNotFound and that the current session survives.
func TestStartUnknownDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	current, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	active, err := svc.ActiveSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active == nil || active.SessionID != current.ID {
		t.Errorf("active = %+v, want session %d kept", active, current.ID)
	}
}

// TestStartDatesSessionToday verifies the session date comes from the clock.
func TestStartDatesSessionToday(t *testing.T) {
	svc, _ := newTestService(t, WithClock(fixedClock("2024-05-17")))
	session, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if session.Date != "2024-05-17" {
		t.Errorf("date = %q, want %q", session.Date, "2024-05-17")
	}
	if session.IsFinished {
		t.Error("new session is finished")
	}
}

// TestSaveIdempotent verifies that repeating the same patch yields the same rows.
func TestSaveIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, 1)
	detail, err := svc.View(ctx, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	seID := detail.Exercises[0].SessionExercise.ID
	patch := models.SavePatch{
		Notes:       strPtr("Felt strong"),
		EffortTag:   strPtr("increase"),
		DropsetDone: intPtr(1),
		Sets: []models.SetInput{
			{SetNumber: 1, WeightKg: 100, Reps: 5, IsDone: 1},
			{SetNumber: 2, WeightKg: 95, Reps: 8, IsDone: 0},
		},
	}

	for i := 0; i < 2; i++ {
		if err := svc.Save(ctx, session.ID, seID, patch); err != nil {
			t.Fatalf("save #%d: %v", i+1, err)
		}
	}

	detail, err = svc.View(ctx, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	ex := detail.Exercises[0]
	if len(ex.Sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(ex.Sets))
	}
	if s := ex.Sets[0]; s.SetNumber != 1 || s.WeightKg != 100 || s.Reps != 5 || !s.IsDone || s.IsDrop {
		t.Errorf("set 1 = %+v", s)
	}
	if s := ex.Sets[1]; s.SetNumber != 2 || s.WeightKg != 95 || s.Reps != 8 || s.IsDone {
		t.Errorf("set 2 = %+v", s)
	}
	if ex.SessionExercise.NextTimeNote == nil || *ex.SessionExercise.NextTimeNote != "Felt strong" {
		t.Errorf("next_time_note = %v, want %q", ex.SessionExercise.NextTimeNote, "Felt strong")
	}
	if ex.SessionExercise.EffortTag == nil || *ex.SessionExercise.EffortTag != "increase" {
		t.Errorf("effort_tag = %v, want %q", ex.SessionExercise.EffortTag, "increase")
	}
	if !ex.SessionExercise.DropsetDone {
		t.Error("dropset_done = false, want true")
	}
}

// TestSaveDifferentSetsDoNotInterfere verifies per-set_number isolation and
// that absent patch fields leave existing values alone.
func TestSaveDifferentSetsDoNotInterfere(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, 1)
	detail, _ := svc.View(ctx, session.ID)
	seID := detail.Exercises[0].SessionExercise.ID

	if err := svc.Save(ctx, session.ID, seID, models.SavePatch{
		Notes: strPtr("keep me"),
		Sets:  []models.SetInput{{SetNumber: 1, WeightKg: 60, Reps: 10, IsDone: 1}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(ctx, session.ID, seID, models.SavePatch{
		Sets: []models.SetInput{{SetNumber: 2, WeightKg: 40, Reps: 12, IsDone: 0}},
	}); err != nil {
		t.Fatal(err)
	}
	// No fields at all is a no-op, not an error.
	if err := svc.Save(ctx, session.ID, seID, models.SavePatch{}); err != nil {
		t.Fatalf("empty patch: %v", err)
	}

	detail, _ = svc.View(ctx, session.ID)
	ex := detail.Exercises[0]
	if len(ex.Sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(ex.Sets))
	}
	if ex.Sets[0].WeightKg != 60 || ex.Sets[0].Reps != 10 {
		t.Errorf("set 1 overwritten: %+v", ex.Sets[0])
	}
	if ex.SessionExercise.NextTimeNote == nil || *ex.SessionExercise.NextTimeNote != "keep me" {
		t.Errorf("note = %v, want %q", ex.SessionExercise.NextTimeNote, "keep me")
	}
}

// TestSaveWrongSession verifies a session exercise cannot be saved through
// another session.
func TestSaveWrongSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, 1)
	detail, _ := svc.View(ctx, session.ID)
	seID := detail.Exercises[0].SessionExercise.ID

	err := svc.Save(ctx, session.ID+1, seID, models.SavePatch{Notes: strPtr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	err = svc.Save(ctx, session.ID, 9999, models.SavePatch{Notes: strPtr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown exercise: err = %v, want ErrNotFound", err)
	}
}

// TestSaveInvalidPatchWritesNothing verifies that one bad set rejects the
// whole patch, including its valid parts.
func TestSaveInvalidPatchWritesNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, 1)
	detail, _ := svc.View(ctx, session.ID)
	seID := detail.Exercises[0].SessionExercise.ID

	err := svc.Save(ctx, session.ID, seID, models.SavePatch{
		Notes: strPtr("should not land"),
		Sets: []models.SetInput{
			{SetNumber: 1, WeightKg: 60, Reps: 10, IsDone: 1},
			{SetNumber: 2, WeightKg: 60, Reps: 10, IsDone: 7},
		},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	detail, _ = svc.View(ctx, session.ID)
	ex := detail.Exercises[0]
	if len(ex.Sets) != 0 || ex.SessionExercise.NextTimeNote != nil {
		t.Errorf("partial write visible: sets=%d note=%v", len(ex.Sets), ex.SessionExercise.NextTimeNote)
	}
}

// TestValidatePatch covers the flag and range checks.
func TestValidatePatch(t *testing.T) {
	tests := []struct {
		name    string
		patch   models.SavePatch
		wantErr bool
	}{
		{"empty", models.SavePatch{}, false},
		{"dropset 1", models.SavePatch{DropsetDone: intPtr(1)}, false},
		{"dropset 2", models.SavePatch{DropsetDone: intPtr(2)}, true},
		{"valid set", models.SavePatch{Sets: []models.SetInput{{SetNumber: 1, WeightKg: 20, Reps: 5, IsDone: 0}}}, false},
		{"set number zero", models.SavePatch{Sets: []models.SetInput{{SetNumber: 0}}}, true},
		{"negative reps", models.SavePatch{Sets: []models.SetInput{{SetNumber: 1, Reps: -1}}}, true},
		{"negative weight", models.SavePatch{Sets: []models.SetInput{{SetNumber: 1, WeightKg: -5}}}, true},
		{"is_done 3", models.SavePatch{Sets: []models.SetInput{{SetNumber: 1, IsDone: 3}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatch(tt.patch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePatch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidatePatchRequiresSetFields verifies a decoded set missing a
// field is rejected with the field named.
func TestValidatePatchRequiresSetFields(t *testing.T) {
	var patch models.SavePatch
	if err := json.Unmarshal([]byte(`{"sets":[{"set_number":1,"weight_kg":60,"reps":8,"is_done":1},{"set_number":2,"reps":8,"is_done":1}]}`), &patch); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	err := ValidatePatch(patch)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ValidatePatch() = %v, want *ValidationError", err)
	}
	if verr.Field != "sets[1].weight_kg" || verr.Reason != "is required" {
		t.Errorf("error = %+v, want sets[1].weight_kg is required", verr)
	}
}

// TestFinishOneWay verifies finish succeeds once and then reports
// ErrAlreadyFinished without reopening the session.
func TestFinishOneWay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, 1)
	if err := svc.Finish(ctx, session.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := svc.Finish(ctx, session.ID); !errors.Is(err, ErrAlreadyFinished) {
		t.Fatalf("second finish: err = %v, want ErrAlreadyFinished", err)
	}

	detail, err := svc.View(ctx, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !detail.Session.IsFinished {
		t.Error("session reopened after second finish")
	}
	active, _ := svc.ActiveSession(ctx)
	if active != nil {
		t.Errorf("active = %+v, want none", active)
	}
	if err := svc.Finish(ctx, 4242); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown session: err = %v, want ErrNotFound", err)
	}
}

// TestPreviousShowsLastFinishedAttempt runs the full cycle: log a set, finish,
// start again and see it as previous data.
func TestPreviousShowsLastFinishedAttempt(t *testing.T) {
	svc, _ := newTestService(t, WithClock(fixedClock("2024-01-01", "2024-01-08", "2024-01-08", "2024-01-15")))
	ctx := context.Background()

	logSession := func(weight float64) {
		t.Helper()
		session, err := svc.Start(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		detail, err := svc.View(ctx, session.ID)
		if err != nil {
			t.Fatal(err)
		}
		seID := detail.Exercises[0].SessionExercise.ID
		if err := svc.Save(ctx, session.ID, seID, models.SavePatch{
			EffortTag: strPtr("good"),
			Sets:      []models.SetInput{{SetNumber: 1, WeightKg: weight, Reps: 5, IsDone: 1}},
		}); err != nil {
			t.Fatal(err)
		}
		if err := svc.Finish(ctx, session.ID); err != nil {
			t.Fatal(err)
		}
	}

	logSession(90)
	logSession(95)
	logSession(100) // same date as the previous one; higher id wins

	session, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	detail, err := svc.View(ctx, session.ID)
	if err != nil {
		t.Fatal(err)
	}

	prev := detail.Exercises[0].Previous
	if prev == nil {
		t.Fatal("expected previous data for slot 1")
	}
	if len(prev.Sets) != 1 || prev.Sets[0].WeightKg != 100 || prev.Sets[0].Reps != 5 {
		t.Errorf("previous sets = %+v, want 100kg x 5", prev.Sets)
	}
	if prev.EffortTag == nil || *prev.EffortTag != "good" {
		t.Errorf("previous effort_tag = %v, want %q", prev.EffortTag, "good")
	}
	if detail.Exercises[1].Previous == nil {
		t.Error("slot 2 was viewed in finished sessions and should have previous data")
	} else if len(detail.Exercises[1].Previous.Sets) != 0 {
		t.Errorf("slot 2 previous sets = %d, want 0", len(detail.Exercises[1].Previous.Sets))
	}

	direct, err := svc.Previous(ctx, detail.Exercises[0].Slot.ID, detail.Exercises[0].Slot.PreferredExerciseID)
	if err != nil {
		t.Fatal(err)
	}
	if direct == nil || direct.SessionExerciseID != prev.SessionExerciseID {
		t.Errorf("Previous() = %+v, want session exercise %d", direct, prev.SessionExerciseID)
	}
}
