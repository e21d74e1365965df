// Package workout implements the session lifecycle, autosave and
// "last time" lookup on top of the store.
package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/koifit/internal/models"
	"github.com/claude/koifit/internal/storage"
)

const dateLayout = "2006-01-02"

// Service runs every workout operation as a single transaction on the store.
type Service struct {
	db  *storage.DB
	log *slog.Logger
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to date new sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service backed by db.
func NewService(db *storage.DB, log *slog.Logger, opts ...Option) *Service {
	s := &Service{db: db, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListDays returns all training days ordered by ordinal.
func (s *Service) ListDays(ctx context.Context) ([]models.Day, error) {
	var days []models.Day
	err := s.db.ReadTx(ctx, func(tx *storage.Tx) error {
		var err error
		days, err = tx.ListDays(ctx)
		return err
	})
	return days, err
}

// ActiveSession returns the unfinished session, or nil when there is none.
func (s *Service) ActiveSession(ctx context.Context) (*models.ActiveSession, error) {
	var active *models.ActiveSession
	err := s.db.ReadTx(ctx, func(tx *storage.Tx) error {
		var err error
		active, err = tx.ActiveSession(ctx)
		return err
	})
	return active, err
}

// Start abandons every unfinished session (with its exercises and sets) and
// creates a new unfinished session for dayID dated today. An unknown day
// returns ErrNotFound and leaves the store untouched.
func (s *Service) Start(ctx context.Context, dayID int64) (models.Session, error) {
	session := models.Session{DayID: dayID, Date: s.now().Format(dateLayout)}

	var abandoned int
	err := s.db.WithTx(ctx, func(tx *storage.Tx) error {
		if _, err := tx.GetDay(ctx, dayID); err != nil {
			return notFound(err, "day %d", dayID)
		}

		ids, err := tx.UnfinishedSessionIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.PurgeSession(ctx, id); err != nil {
				return err
			}
		}
		abandoned = len(ids)

		session.ID, err = tx.InsertSession(ctx, dayID, session.Date)
		return err
	})
	if err != nil {
		return models.Session{}, err
	}

	s.log.Info("session started", "session_id", session.ID, "day_id", dayID, "abandoned", abandoned)
	return session, nil
}

// View assembles the session detail, creating the session exercise of each
// slot the first time it is viewed.
func (s *Service) View(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	var detail models.SessionDetail
	err := s.db.WithTx(ctx, func(tx *storage.Tx) error {
		var err error
		detail.Session, err = tx.GetSession(ctx, sessionID)
		if err != nil {
			return notFound(err, "session %d", sessionID)
		}
		detail.Day, err = tx.GetDay(ctx, detail.Session.DayID)
		if err != nil {
			return err
		}

		slots, err := tx.ListSlots(ctx, detail.Session.DayID)
		if err != nil {
			return err
		}

		detail.Exercises = make([]models.SlotView, 0, len(slots))
		for _, slot := range slots {
			view, err := s.slotView(ctx, tx, sessionID, slot)
			if err != nil {
				return err
			}
			detail.Exercises = append(detail.Exercises, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *Service) slotView(ctx context.Context, tx *storage.Tx, sessionID int64, slot models.SlotWithExercise) (models.SlotView, error) {
	se, err := tx.FindSessionExercise(ctx, sessionID, slot.ID)
	if errors.Is(err, sql.ErrNoRows) {
		se, err = tx.InsertSessionExercise(ctx, sessionID, slot.ID, slot.PreferredExerciseID)
	}
	if err != nil {
		return models.SlotView{}, err
	}

	sets, err := tx.ListSetEntries(ctx, se.ID)
	if err != nil {
		return models.SlotView{}, err
	}

	prev, err := tx.PreviousAttempt(ctx, slot.ID, slot.PreferredExerciseID)
	if err != nil {
		return models.SlotView{}, err
	}

	return models.SlotView{
		SessionExercise: se,
		Slot:            slot,
		Sets:            sets,
		Previous:        prev,
	}, nil
}

// Previous returns the most recent finished attempt for a slot/exercise pair,
// or nil when there is none.
func (s *Service) Previous(ctx context.Context, slotID, exerciseID int64) (*models.PreviousAttempt, error) {
	var prev *models.PreviousAttempt
	err := s.db.ReadTx(ctx, func(tx *storage.Tx) error {
		var err error
		prev, err = tx.PreviousAttempt(ctx, slotID, exerciseID)
		return err
	})
	return prev, err
}

// Finish marks an unfinished session finished. Finishing is one-way: a
// finished session returns ErrAlreadyFinished.
func (s *Service) Finish(ctx context.Context, sessionID int64) error {
	err := s.db.WithTx(ctx, func(tx *storage.Tx) error {
		if _, err := tx.GetSession(ctx, sessionID); err != nil {
			return notFound(err, "session %d", sessionID)
		}
		changed, err := tx.MarkSessionFinished(ctx, sessionID)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("session %d: %w", sessionID, ErrAlreadyFinished)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("session finished", "session_id", sessionID)
	return nil
}

// Save applies an autosave patch to a session exercise of sessionID. The
// exercise-level fields and every set upsert commit together or not at all.
func (s *Service) Save(ctx context.Context, sessionID, sessionExerciseID int64, patch models.SavePatch) error {
	if err := ValidatePatch(patch); err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *storage.Tx) error {
		if _, err := tx.GetSessionExercise(ctx, sessionID, sessionExerciseID); err != nil {
			return notFound(err, "session exercise %d in session %d", sessionExerciseID, sessionID)
		}

		if patch.HasExerciseFields() {
			if err := tx.UpdateSessionExercise(ctx, sessionExerciseID, patch); err != nil {
				return err
			}
		}

		for _, set := range patch.Sets {
			if err := tx.UpsertSetEntry(ctx, sessionExerciseID, set); err != nil {
				return err
			}
		}
		return nil
	})
}

// ValidatePatch rejects values the store would accept but the model forbids.
func ValidatePatch(patch models.SavePatch) error {
	if patch.DropsetDone != nil && !isFlag(*patch.DropsetDone) {
		return &ValidationError{Field: "dropset_done", Reason: "must be 0 or 1"}
	}
	for i, set := range patch.Sets {
		field := fmt.Sprintf("sets[%d]", i)
		switch {
		case set.MissingField() != "":
			return &ValidationError{Field: field + "." + set.MissingField(), Reason: "is required"}
		case set.SetNumber < 1:
			return &ValidationError{Field: field + ".set_number", Reason: "must be at least 1"}
		case set.Reps < 0:
			return &ValidationError{Field: field + ".reps", Reason: "must not be negative"}
		case set.WeightKg < 0:
			return &ValidationError{Field: field + ".weight_kg", Reason: "must not be negative"}
		case !isFlag(set.IsDone):
			return &ValidationError{Field: field + ".is_done", Reason: "must be 0 or 1"}
		}
	}
	return nil
}

func isFlag(v int) bool {
	return v == 0 || v == 1
}

// notFound maps a missing row to ErrNotFound and passes other errors through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return err
}
