package flows

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"SevaFlow/internal/lib/api/response"
	"SevaFlow/internal/lib/sl"
)

func ListFlows(log *slog.Logger, handler Core) http.HandlerFunc {
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

		list, err := handler.ListFlows(companyID)
		if err != nil {
			logger.Error("failed to list flows", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to list flows: %v", err)))
			return
		}

		logger.Debug("flows listed", slog.Int("count", len(list)))
		render.JSON(w, r, response.Ok(list))
	}
}
