package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kevinaaaquil/library/backend/apperr"
	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
)

type BooksHandler struct {
	Books  *service.BookService
	Logger *slog.Logger
}

// bookForm reads a multipart book form. Author and genre names may be sent as
// repeated fields.
func bookForm(r *http.Request) (models.BookInput, error) {
	in := models.BookInput{
		Title:       r.FormValue("bookTitle"),
		Description: r.FormValue("description"),
		Authors:     formList(r, "bookAuthors"),
		Genres:      formList(r, "genres"),
	}
	var err error
	if in.Availability, err = formBool(r, "availability"); err != nil {
		return in, err
	}
	if in.DeleteCover, err = formBool(r, "deleteCover"); err != nil {
		return in, err
	}
	if v := r.FormValue("totalQuantity"); v != "" {
		if in.TotalQuantity, err = strconv.Atoi(v); err != nil {
			return in, apperr.Validation("totalQuantity must be a number")
		}
	}
	return in, nil
}

func formList(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.MultipartForm.Value[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func formBool(r *http.Request, key string) (bool, error) {
	v := r.FormValue(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperr.Validation(key + " must be true or false")
	}
	return b, nil
}

func (h *BooksHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	in, err := bookForm(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	cover, closeFile, err := formUpload(r, "bookCover")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	defer closeFile()
	id, err := h.Books.Add(r.Context(), in, cover)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	in, err := bookForm(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	cover, closeFile, err := formUpload(r, "bookCover")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	defer closeFile()
	if err := h.Books.Update(r.Context(), id, in, cover); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.Books.ByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Books.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.Books.ByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BooksHandler) All(w http.ResponseWriter, r *http.Request) {
	out, err := h.Books.All(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.Books.Page(r.Context(), p)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Search filters by title, description, author and genre substrings.
func (h *BooksHandler) Search(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	q := r.URL.Query()
	out, err := h.Books.Search(r.Context(), models.SearchBookInput{
		PaginatorInput: p,
		Title:          q.Get("title"),
		Description:    q.Get("description"),
		Author:         q.Get("author"),
		Genre:          q.Get("genre"),
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BooksHandler) CountForAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	n, err := h.Books.BooksCountForAuthor(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *BooksHandler) CountForGenre(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	n, err := h.Books.BooksCountForGenre(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}
