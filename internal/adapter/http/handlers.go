package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

const indexBanner = "Climate Resilience API server is running!"

// listHandler serves a read endpoint. The service never returns a nil slice,
// so an empty table is encoded as [].
func listHandler[T any](s *Server, fetch func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := fetch(r.Context())
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if rows == nil {
			rows = []T{}
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	location := domain.DefaultNewsLocation
	if q.Has("location") {
		location = strings.TrimSpace(q.Get("location"))
	}
	category := domain.DefaultNewsCategory
	if q.Has("category") {
		category = strings.TrimSpace(q.Get("category"))
	}

	if location == "" {
		s.validationError(w, r, &domain.ValidationError{
			Message: "location must not be empty",
			Fields:  []string{"location"},
		})
		return
	}

	articles, err := s.api.ClimateNews(r.Context(), location, category)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if articles == nil {
		articles = []domain.NewsArticle{}
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleSOS(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	in, err := domain.NewSOSAlertInput(fields)
	if err != nil {
		s.validationError(w, r, err)
		return
	}

	alert, err := s.api.CreateSOSAlert(r.Context(), in)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	status := alert.Status
	if status == "" {
		status = domain.SOSAlertStatusActive
	}
	writeJSON(w, http.StatusCreated, sosCreatedResponse{
		Message: "SOS alert sent successfully",
		AlertID: alert.ID,
		Status:  status,
	})
}

func (s *Server) handleAidRequest(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	in, err := domain.NewAidRequestInput(fields)
	if err != nil {
		s.validationError(w, r, err)
		return
	}

	req, err := s.api.AddAidRequest(r.Context(), in)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	status := req.Status
	if status == "" {
		status = domain.AidRequestStatusPending
	}
	writeJSON(w, http.StatusCreated, aidCreatedResponse{
		Message:   "Aid request submitted successfully",
		RequestID: req.ID,
		Status:    status,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.opts.ServiceName,
		"version": s.opts.ServiceVersion,
	})
}

func (s *Server) handleTestDB(w http.ResponseWriter, r *http.Request) {
	if err := s.api.CheckDatabase(r.Context()); err != nil {
		s.logger.Error("database check failed", "driver", s.opts.StoreDriver, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":   "error",
			"database": "disconnected",
			"driver":   s.opts.StoreDriver,
			"error":    err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"database": "connected",
		"driver":   s.opts.StoreDriver,
	})
}

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, indexBanner) //nolint:errcheck // best-effort banner
}

type sosCreatedResponse struct {
	Message string          `json:"message"`
	AlertID domain.RecordID `json:"alert_id"`
	Status  string          `json:"status"`
}

type aidCreatedResponse struct {
	Message   string          `json:"message"`
	RequestID domain.RecordID `json:"request_id"`
	Status    string          `json:"status"`
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func (s *Server) validationError(w http.ResponseWriter, r *http.Request, err error) {
	s.metrics.ValidationFailures.WithLabelValues(routeLabel(r)).Inc()

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Fields: verr.Fields})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "route", routeLabel(r), "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
