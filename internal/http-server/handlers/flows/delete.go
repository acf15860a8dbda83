package flows

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"SevaFlow/internal/lib/api/response"
	"SevaFlow/internal/lib/sl"
)

func DeleteFlow(log *slog.Logger, handler Core) http.HandlerFunc {
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

		if err := handler.DeleteFlow(companyID, flowID); err != nil {
			logger.Error("failed to delete flow", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to delete flow: %v", err)))
			return
		}

		logger.Info("flow deleted",
			slog.String("flow_id", flowID),
			slog.String("company_id", companyID),
		)
		render.JSON(w, r, response.Ok(nil))
	}
}
