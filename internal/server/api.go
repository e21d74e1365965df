package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handleAPIDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.svc.ListDays(r.Context())
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

type activeResponse struct {
	SessionID *int64 `json:"session_id"`
	DayID     int64  `json:"day_id,omitempty"`
	DayLabel  string `json:"day_label,omitempty"`
}

func (s *Server) handleAPIActive(w http.ResponseWriter, r *http.Request) {
	active, err := s.svc.ActiveSession(r.Context())
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	var resp activeResponse
	if active != nil {
		resp.SessionID = &active.SessionID
		resp.DayID = active.DayID
		resp.DayLabel = active.DayLabel
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIStart(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(r, "day_id")
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "day not found"})
		return
	}

	session, err := s.svc.Start(r.Context(), dayID)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	s.metrics.SessionStarted()
	writeJSON(w, http.StatusCreated, map[string]int64{"session_id": session.ID})
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	detail, err := s.svc.View(r.Context(), sessionID)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleAPIPrevious answers the last finished attempt at a slot, or null.
func (s *Server) handleAPIPrevious(w http.ResponseWriter, r *http.Request) {
	slotID, ok := pathID(r, "slot_id")
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "slot not found"})
		return
	}
	exerciseID, err := strconv.ParseInt(r.URL.Query().Get("exercise_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id parameter required"})
		return
	}

	prev, err := s.svc.Previous(r.Context(), slotID, exerciseID)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prev)
}
