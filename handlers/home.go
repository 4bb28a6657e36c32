package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/library/backend/service"
)

type HomeHandler struct {
	Home   *service.HomeService
	Logger *slog.Logger
}

func (h *HomeHandler) LastBooks(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.Home.LastBooks(r.Context(), p)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HomeHandler) BooksCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.Home.BooksCount)
}

func (h *HomeHandler) GenresCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.Home.GenresCount)
}

func (h *HomeHandler) ReadersCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.Home.ReadersCount)
}

func (h *HomeHandler) count(w http.ResponseWriter, r *http.Request, fn func(context.Context) (int64, error)) {
	n, err := fn(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}
