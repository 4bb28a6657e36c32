package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/library/backend/middleware"
	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
)

type ReservationsHandler struct {
	Reservations *service.ReservationService
	Logger       *slog.Logger
}

// Add files a request for the caller. Staff may file on behalf of another user
// by sending userId.
func (h *ReservationsHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	var req models.ReservationInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	userID := caller.UserID
	if req.UserID != nil && *req.UserID != caller.UserID {
		if !middleware.Staff.Allows(caller.Roles) {
			writeError(w, r, h.Logger, service.ErrReservationForOtherUser)
			return
		}
		userID = *req.UserID
	}
	id, err := h.Reservations.Add(r.Context(), userID, req.BookID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *ReservationsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	librarianID, _ := middleware.UserIDFromContext(r.Context())
	var req models.ReservationMessageInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Reservations.Approve(r.Context(), librarianID, req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	librarianID, _ := middleware.UserIDFromContext(r.Context())
	var req models.ReservationRejectInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Reservations.Reject(r.Context(), librarianID, req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pending lists unreviewed requests, oldest first.
func (h *ReservationsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.Reservations.Pending(r.Context(), p)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReservationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.Reservations.ByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
