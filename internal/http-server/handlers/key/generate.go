package key

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"SevaFlow/internal/lib/api/response"
	"SevaFlow/internal/lib/sl"
)

type GenerateRequest struct {
	Username  string `json:"username"`
	CompanyID string `json:"companyId"`
}

func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.key")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("key service not available")
			render.JSON(w, r, response.Error("key service not available"))
			return
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Username == "" {
			render.JSON(w, r, response.Error("no username provided"))
			return
		}

		apiKey, err := handler.GenerateApiKey(req.Username, req.CompanyID)
		if err != nil {
			logger.Error("failed to generate api key", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to generate key: %v", err)))
			return
		}

		logger.Info("api key issued", slog.String("username", req.Username))
		render.JSON(w, r, response.Ok(map[string]string{"key": apiKey}))
	}
}
