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

func GetFlow(log *slog.Logger, handler Core) http.HandlerFunc {
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

		f, err := handler.GetFlow(companyID, flowID)
		if err != nil {
			logger.Error("failed to get flow", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to get flow: %v", err)))
			return
		}
		if f == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Flow not found"))
			return
		}

		render.JSON(w, r, response.Ok(f))
	}
}
