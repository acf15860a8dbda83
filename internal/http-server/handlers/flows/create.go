package flows

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"SevaFlow/bot/flow"
	"SevaFlow/entity"
	"SevaFlow/internal/lib/api/response"
	"SevaFlow/internal/lib/sl"
	"SevaFlow/internal/lib/validate"
)

func CreateFlow(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req entity.FlowDefinition
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		req.CompanyID = companyID

		if err := validate.Struct(&req); err != nil {
			logger.Debug("flow payload invalid", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid flow: %v", err)))
			return
		}
		if issues := flow.CheckFlow(&req); len(issues) > 0 {
			logger.Debug("flow failed validation", slog.Int("issues", len(issues)))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(fmt.Sprintf("Flow validation failed: %v", issues)))
			return
		}

		created, err := handler.CreateFlow(companyID, &req)
		if err != nil {
			logger.Error("failed to create flow", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to create flow: %v", err)))
			return
		}

		logger.Info("flow created",
			slog.String("flow_id", created.ID),
			slog.String("company_id", companyID),
		)
		render.JSON(w, r, response.Ok(created))
	}
}
