package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"eduquest-service/internal/app"
	"eduquest-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 8 << 20

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode error response", "error", err)
	}
}

// respondDomainError maps service errors onto HTTP statuses.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoProfile):
		s.respondError(w, http.StatusUnauthorized, "no_profile", err.Error())
	case errors.Is(err, domain.ErrInvalidProfile):
		s.respondError(w, http.StatusBadRequest, "invalid_profile", err.Error())
	case errors.Is(err, domain.ErrActivityNotFound):
		s.respondError(w, http.StatusNotFound, "activity_not_found", err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		s.respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, domain.ErrNotAnswered):
		s.respondError(w, http.StatusConflict, "not_answered", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		s.respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrReportInProgress):
		s.respondError(w, http.StatusConflict, "report_in_progress", err.Error())
	default:
		s.log.Error("request failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGetKey is the secret relay. It answers with a bare {apiKey} or
// {error} body, the shape secret.RelayClient consumes.
func (s *Server) handleGetKey(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	key, err := s.keys.APIKey(r.Context())
	if err != nil {
		s.log.Error("api key unavailable", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": domain.ErrKeyNotConfigured.Error()})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"apiKey": key})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.service.Profile(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req app.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	user, err := s.service.Login(r.Context(), req)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Logout(r.Context()); err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.service.Dashboard(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, dash)
}

func (s *Server) handleStartActivity(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.StartActivity(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNoQuestions) {
		// Empty state, not a failure.
		s.respondJSON(w, http.StatusOK, res)
		return
	}
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Session(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

type answerRequest struct {
	Option string `json:"option"`
}

type answerResponse struct {
	Outcome  domain.AnswerOutcome `json:"outcome"`
	Snapshot app.Snapshot         `json:"snapshot"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	outcome, snap, err := s.service.Answer(r.Context(), chi.URLParam(r, "sid"), req.Option)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, answerResponse{Outcome: outcome, Snapshot: snap})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Advance(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Finish(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	dash, err := s.service.Dashboard(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if dash.Completed == 0 {
		s.respondError(w, http.StatusConflict, "nothing_to_report", "no completed activities yet")
		return
	}

	doc, err := s.service.Report(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrReportInProgress) {
			s.respondDomainError(w, err)
			return
		}
		s.respondError(w, http.StatusInternalServerError, "report_failed", "could not generate the report")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}
