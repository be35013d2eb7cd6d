package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Aman-jha12/studytracker/internal/tracker"
)

const maxBodyBytes = 1 << 16

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Study Tracker API is running"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("Health check failed")
		writeError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecord accumulates one finished session.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	seconds, err := tracker.SecondsFromJSON(req.Seconds)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	record, err := s.service.RecordSession(r.Context(), req.Date, seconds)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleGetTotal returns the total for one date.
func (s *Server) handleGetTotal(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]

	record, err := s.service.GetTotal(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleWeeklyReport returns the seven days ending today.
func (s *Server) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.WeeklyReport(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var verr *tracker.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	var serr *tracker.StorageError
	if errors.As(err, &serr) {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	s.logger.Error().Err(err).Msg("Unexpected service error")
	writeError(w, http.StatusInternalServerError, "Server error")
}
