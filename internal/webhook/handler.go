package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateProcessor runs one Telegram update through the bot handlers.
// *bot.Bot satisfies it.
type UpdateProcessor interface {
	ProcessUpdate(ctx context.Context, upd *models.Update)
}

type Handler struct {
	processor UpdateProcessor
	secret    string
	log       zerolog.Logger
}

func NewHandler(processor UpdateProcessor, secret string, log zerolog.Logger) *Handler {
	return &Handler{
		processor: processor,
		secret:    secret,
		log:       log.With().Str("component", "webhook").Logger(),
	}
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook secret mismatch")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	var update models.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	// the reply to Telegram must not depend on the client connection
	h.processor.ProcessUpdate(context.WithoutCancel(r.Context()), &update)

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bot is running"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
