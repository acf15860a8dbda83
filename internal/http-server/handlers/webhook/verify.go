package webhook

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"SevaFlow/internal/lib/sl"
)

// Verify answers the Cloud API subscription handshake: echo hub.challenge
// when the verify token matches, 403 otherwise.
func Verify(log *slog.Logger, verifyToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.webhook")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		mode := r.URL.Query().Get("hub.mode")
		token := r.URL.Query().Get("hub.verify_token")
		challenge := r.URL.Query().Get("hub.challenge")

		if mode != "subscribe" || token == "" || token != verifyToken {
			logger.Warn("webhook verification rejected", slog.String("mode", mode))
			w.WriteHeader(http.StatusForbidden)
			return
		}

		logger.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
	}
}
