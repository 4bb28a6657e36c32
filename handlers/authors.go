package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
)

type AuthorsHandler struct {
	Authors *service.AuthorService
	Logger  *slog.Logger
}

func (h *AuthorsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AuthorInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	id, err := h.Authors.Add(r.Context(), req)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *AuthorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	var req models.AuthorInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Authors.Update(r.Context(), id, req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Authors.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.Authors.ByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthorsHandler) All(w http.ResponseWriter, r *http.Request) {
	out, err := h.Authors.All(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.Authors.Page(r.Context(), p)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthorsHandler) Search(w http.ResponseWriter, r *http.Request) {
	out, err := h.Authors.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
