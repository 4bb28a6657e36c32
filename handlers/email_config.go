package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
)

const defaultEmailLogLimit = 50

// EmailConfigHandler exposes the outbound mail account and the send log to admins.
type EmailConfigHandler struct {
	MailSettings *service.MailSettingsService
	EmailLogs    *service.EmailLogService
	Logger       *slog.Logger
}

// Get returns the SMTP account in use. The password is masked.
func (h *EmailConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.MailSettings.Get(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Save stores the SMTP account. An empty password keeps the stored one.
func (h *EmailConfigHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.MailSettingsInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	out, err := h.MailSettings.Update(r.Context(), req)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("mail settings updated", "host", out.Host, "sender", out.SenderEmail)
	writeJSON(w, http.StatusOK, out)
}

// Logs lists recent notification attempts. GET /api/v1/emaillogs?email=&limit=
func (h *EmailConfigHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultEmailLogLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, h.Logger, errInvalidLimit)
			return
		}
		limit = n
	}
	logs, err := h.EmailLogs.Recent(r.Context(), r.URL.Query().Get("email"), limit)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if logs == nil {
		logs = []models.EmailLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
