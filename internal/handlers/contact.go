package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jugnunagar/folio/internal/mailer"
	"go.uber.org/zap"
)

type ContactHandler struct {
	relay      *mailer.Relay
	configured bool
	logger     *zap.Logger
}

func NewContactHandler(relay *mailer.Relay, configured bool, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{relay: relay, configured: configured, logger: logger}
}

func (h *ContactHandler) Send() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in mailer.Inquiry
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
			return
		}
		if err := in.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "Missing fields", "")
			return
		}
		if !h.configured {
			writeError(w, http.StatusInternalServerError, "Mailer not configured", "")
			return
		}

		if err := h.relay.Send(r.Context(), in); err != nil {
			if errors.Is(err, mailer.ErrNotConfigured) {
				writeError(w, http.StatusInternalServerError, "Mailer not configured", "")
				return
			}
			h.logger.Error("contact email failed", zap.String("reply_to", in.ReplyTo), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Email failed", err.Error())
			return
		}
		h.logger.Info("contact email sent", zap.String("reply_to", in.ReplyTo))
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}
