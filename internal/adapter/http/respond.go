package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON object request body. On failure it writes the 400
// (or 413) response itself and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var fields map[string]any
	err := dec.Decode(&fields)
	if err == nil {
		if extra := dec.Decode(&struct{}{}); extra != io.EOF {
			err = extra
			if err == nil {
				err = errors.New("trailing data after JSON object")
			}
		}
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.metrics.ValidationFailures.WithLabelValues(routeLabel(r)).Inc()
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
		return nil, false
	case err != nil || fields == nil:
		s.metrics.ValidationFailures.WithLabelValues(routeLabel(r)).Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body must be a JSON object"})
		return nil, false
	}
	return fields, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	sharedobs.WriteJSON(w, status, v)
}
