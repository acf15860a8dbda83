package flows

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"SevaFlow/internal/lib/api/response"
	"SevaFlow/internal/lib/sl"
)

type ActivateRequest struct {
	Active bool `json:"active"`
}

func ActivateFlow(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.flows")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("flow service not available")
			render.JSON(w, r, response.Error("flow service not available"))
			return
		}

		companyID := resolveCompany(r)
		if companyID == "" {
			render.JSON(w, r, response.Error("no company specified"))
			return
		}
		flowID := chi.URLParam(r, "id")

		var req ActivateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := handler.SetFlowActive(companyID, flowID, req.Active); err != nil {
			logger.Error("failed to toggle flow", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to toggle flow: %v", err)))
			return
		}

		logger.Info("flow toggled",
			slog.String("flow_id", flowID),
			slog.Bool("active", req.Active),
		)
		render.JSON(w, r, response.Ok(nil))
	}
}
