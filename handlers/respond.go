package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/apperr"
	"github.com/kevinaaaquil/library/backend/models"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type idResponse struct {
	ID uuid.UUID `json:"id"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

var (
	errInvalidJSON  = apperr.Validation("invalid json")
	errInvalidLimit = apperr.Validation("limit must be a number")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error category to its HTTP status. Uncategorized errors
// are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	var status int
	switch e.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindUnavailable:
		status = http.StatusServiceUnavailable
		logger.Warn("backend unavailable", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: e.Message, Details: e.Details})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("request body too large")
		}
		return errInvalidJSON
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// paging reads page and pageSize query parameters, defaulting to 1 and 10.
func paging(r *http.Request) (models.PaginatorInput, error) {
	p := models.PaginatorInput{Page: 1, PageSize: models.DefaultPageSize}
	q := r.URL.Query()
	for key, dst := range map[string]*int{"page": &p.Page, "pageSize": &p.PageSize} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apperr.Validation(key + " must be a number")
		}
		*dst = n
	}
	return p, nil
}
