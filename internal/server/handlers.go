package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/claude/koifit/internal/models"
	"github.com/claude/koifit/internal/web"
	"github.com/claude/koifit/internal/workout"
	"github.com/go-chi/chi/v5"
)

type indexPage struct {
	Active *models.ActiveSession
	Days   []models.Day
}

type daysPage struct {
	Days []models.Day
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	active, err := s.svc.ActiveSession(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	page := indexPage{Active: active}
	if active == nil {
		page.Days, err = s.svc.ListDays(r.Context())
		if err != nil {
			s.pageError(w, r, err)
			return
		}
	}
	s.render(w, r, web.ViewIndex, page)
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.svc.ListDays(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, web.ViewDays, daysPage{Days: days})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(r, "day_id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	session, err := s.svc.Start(r.Context(), dayID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.metrics.SessionStarted()
	http.Redirect(w, r, fmt.Sprintf("/sessions/%d", session.ID), http.StatusSeeOther)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	detail, err := s.svc.View(r.Context(), sessionID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, web.ViewSession, detail)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sessionID, ok1 := pathID(r, "session_id")
	seID, ok2 := pathID(r, "session_exercise_id")
	if !ok1 || !ok2 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session exercise not found"})
		return
	}

	patch, err := decodePatch(r.Body)
	if err != nil {
		s.metrics.Saved("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.svc.Save(r.Context(), sessionID, seID, patch); err != nil {
		s.metrics.Saved(saveOutcome(err))
		s.jsonError(w, r, err)
		return
	}
	s.metrics.Saved("ok")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodePatch reads a single JSON object. An empty body is an empty patch;
// anything after the object is an error.
func decodePatch(body io.Reader) (models.SavePatch, error) {
	var patch models.SavePatch
	dec := json.NewDecoder(body)
	if err := dec.Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			return models.SavePatch{}, nil
		}
		return patch, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return patch, errors.New("unexpected data after JSON object")
	}
	return patch, nil
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	if err := s.svc.Finish(r.Context(), sessionID); err != nil {
		s.jsonError(w, r, err)
		return
	}
	s.metrics.SessionFinished()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "redirect": "/"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, view string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.views.Render(w, view, data); err != nil {
		s.log.Error("render failed", "view", view, "request_id", requestIDFromContext(r.Context()), "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// errorStatus maps a service error to its HTTP status.
func errorStatus(err error) int {
	var verr *workout.ValidationError
	switch {
	case errors.Is(err, workout.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workout.ErrAlreadyFinished), errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func saveOutcome(err error) string {
	switch errorStatus(err) {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "invalid"
	default:
		return "error"
	}
}

func (s *Server) jsonError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "request_id", requestIDFromContext(r.Context()), "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "request_id", requestIDFromContext(r.Context()), "error", err)
		msg = "internal server error"
	}
	http.Error(w, msg, status)
}

// pathID parses a positive integer URL parameter. Anything else names an
// entity that cannot exist.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
