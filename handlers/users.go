package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
)

// UsersHandler serves admin-only account management.
type UsersHandler struct {
	Users  *service.UserService
	Logger *slog.Logger
}

type rolesResponse struct {
	Roles []string `json:"roles"`
}

// SetRoles replaces the roles of a user. PUT /api/v1/users/{id}/roles
func (h *UsersHandler) SetRoles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	var req models.SetRolesInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	roles, err := h.Users.SetRoles(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rolesResponse{Roles: roles})
}
