package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"SevaFlow/bot/flow"
	"SevaFlow/bot/whatsapp"
	"SevaFlow/entity"
	"SevaFlow/internal/lib/sl"
)

const maxWebhookBody = 1 << 20

// Receive ingests webhook deliveries. The response is always 200 once the
// payload is parseable: the carrier redelivers on anything else and flow
// errors are already degraded to fallback replies inside the engine.
func Receive(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.webhook")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("webhook core not available")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			logger.Error("failed to read webhook body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		batches, err := whatsapp.ParsePayload(body)
		if err != nil {
			logger.Error("failed to parse webhook payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		signature := r.Header.Get("X-Hub-Signature-256")

		for _, batch := range batches {
			company, err := handler.FindCompanyByPhoneNumberID(batch.PhoneNumberID)
			if err != nil {
				logger.Error("tenant lookup failed", sl.Err(err))
				continue
			}
			if company == nil {
				logger.Warn("no tenant for phone number",
					slog.String("phone_number_id", batch.PhoneNumberID))
				continue
			}

			if !whatsapp.VerifySignature(company.WhatsApp.AppSecret, body, signature) {
				logger.Warn("signature verification failed",
					slog.String("company_id", company.ID))
				continue
			}

			for i := range batch.Events {
				event := &batch.Events[i]
				event.CompanyID = company.ID
				processEvent(r, logger, handler, company, event)
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

func processEvent(r *http.Request, logger *slog.Logger, handler Core, company *entity.Company, event *entity.InboundEvent) {
	ctx := r.Context()

	intents, err := handler.HandleInbound(ctx, company, event)
	switch {
	case errors.Is(err, flow.ErrStaleSession):
		logger.Debug("duplicate delivery dropped", slog.String("phone", event.Phone))
		return
	case errors.Is(err, flow.ErrNoTriggerMatched):
		intents = []entity.OutboundIntent{{
			Phone: event.Phone,
			Kind:  entity.IntentText,
			Text:  handler.HelpMessage(company),
		}}
	case err != nil:
		logger.Error("inbound handling failed",
			slog.String("phone", event.Phone),
			sl.Err(err),
		)
		return
	}

	for _, intent := range intents {
		if err := handler.Send(ctx, company.WhatsApp, intent); err != nil {
			logger.Error("send failed",
				slog.String("phone", intent.Phone),
				slog.String("kind", intent.Kind),
				sl.Err(err),
			)
		}
	}
}
