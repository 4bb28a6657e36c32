package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/library/backend/apperr"
	"github.com/kevinaaaquil/library/backend/service"
)

const (
	// cover limit plus room for the text fields
	maxMultipartBody   = service.MaxCoverSize + 64<<10
	maxMultipartMemory = 1 << 20
)

var errMultipart = apperr.Validation("failed to parse multipart form")

// parseMultipart limits the body and parses the form. Oversized bodies get the
// blob service's size error.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return service.ErrFileTooLarge
		}
		return errMultipart
	}
	return nil
}

// formUpload returns the file posted under field, or nil when none was sent.
// The caller must invoke the returned close func.
func formUpload(r *http.Request, field string) (*service.Upload, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, errMultipart
	}
	return &service.Upload{Filename: header.Filename, Size: header.Size, Body: file}, func() { file.Close() }, nil
}

type urlResponse struct {
	URL string `json:"url"`
}

// BlobsHandler manages cover objects directly. Blobs is nil when no bucket is configured.
type BlobsHandler struct {
	Blobs  *service.BlobService
	Logger *slog.Logger
}

func (h *BlobsHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if h.Blobs == nil {
		writeError(w, r, h.Logger, service.ErrBlobStorageDisabled)
		return false
	}
	return true
}

func (h *BlobsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	blobs, err := h.Blobs.ListBlobs(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blobs)
}

// Get returns a short-lived download URL for a cover object.
func (h *BlobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	u, err := h.Blobs.BlobURL(r.Context(), blobName(r))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, urlResponse{URL: u})
}

// Upload stores a cover under the given book title. Form fields: file, bookTitle.
func (h *BlobsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	f, closeFile, err := formUpload(r, "file")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	defer closeFile()
	if f == nil {
		writeError(w, r, h.Logger, service.ErrFileEmpty)
		return
	}
	title := r.FormValue("bookTitle")
	if title == "" {
		writeError(w, r, h.Logger, apperr.Validation("bookTitle is required"))
		return
	}
	u, err := h.Blobs.UploadCover(r.Context(), title, f)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("cover uploaded", "title", title)
	writeJSON(w, http.StatusCreated, urlResponse{URL: u})
}

// Update replaces an existing object. Form fields: file, fileNameToUpdate, newFileName.
func (h *BlobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	f, closeFile, err := formUpload(r, "file")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	defer closeFile()
	if f == nil {
		writeError(w, r, h.Logger, service.ErrFileEmpty)
		return
	}
	oldName, newName := r.FormValue("fileNameToUpdate"), r.FormValue("newFileName")
	if oldName == "" || newName == "" {
		writeError(w, r, h.Logger, apperr.Validation("fileNameToUpdate and newFileName are required"))
		return
	}
	u, err := h.Blobs.UpdateBlob(r.Context(), oldName, newName, f)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, urlResponse{URL: u})
}

func (h *BlobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	if err := h.Blobs.DeleteBlob(r.Context(), blobName(r)); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func blobName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if v, err := url.PathUnescape(name); err == nil {
		return v
	}
	return name
}
