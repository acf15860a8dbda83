package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"SevaFlow/entity"
	"SevaFlow/internal/lib/sl"
)

// Sender delivers outbound intents through the WhatsApp Cloud API using
// each tenant's own credentials.
type Sender struct {
	graphURL string
	client   *http.Client
	log      *slog.Logger
}

func NewSender(graphURL string, log *slog.Logger) *Sender {
	return &Sender{
		graphURL: graphURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      log.With(sl.Module("whatsapp.sender")),
	}
}

type textPayload struct {
	Body string `json:"body"`
}

type interactiveButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

type interactiveRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type interactiveSection struct {
	Title string           `json:"title,omitempty"`
	Rows  []interactiveRow `json:"rows"`
}

type interactivePayload struct {
	Type string `json:"type"`
	Body struct {
		Text string `json:"text"`
	} `json:"body"`
	Action struct {
		Buttons  []interactiveButton  `json:"buttons,omitempty"`
		Button   string               `json:"button,omitempty"`
		Sections []interactiveSection `json:"sections,omitempty"`
	} `json:"action"`
}

type messageRequest struct {
	MessagingProduct string              `json:"messaging_product"`
	To               string              `json:"to"`
	Type             string              `json:"type"`
	Text             *textPayload        `json:"text,omitempty"`
	Interactive      *interactivePayload `json:"interactive,omitempty"`
}

// Send posts one intent to the tenant's phone number. Send failures are
// returned, not retried: the carrier already retries webhook deliveries
// and duplicate sends read worse than a dropped prompt.
func (s *Sender) Send(ctx context.Context, account entity.WhatsAppAccount, intent entity.OutboundIntent) error {
	req := messageRequest{
		MessagingProduct: "whatsapp",
		To:               intent.Phone,
	}

	switch intent.Kind {
	case entity.IntentText:
		req.Type = "text"
		req.Text = &textPayload{Body: intent.Text}

	case entity.IntentButtons:
		req.Type = "interactive"
		interactive := &interactivePayload{Type: "button"}
		interactive.Body.Text = intent.Text
		for _, b := range intent.Buttons {
			btn := interactiveButton{Type: "reply"}
			btn.Reply.ID = b.ID
			btn.Reply.Title = b.Title
			interactive.Action.Buttons = append(interactive.Action.Buttons, btn)
		}
		req.Interactive = interactive

	case entity.IntentList:
		req.Type = "interactive"
		interactive := &interactivePayload{Type: "list"}
		interactive.Body.Text = intent.Text
		interactive.Action.Button = intent.ButtonText
		for _, section := range intent.Sections {
			out := interactiveSection{Title: section.Title}
			for _, row := range section.Rows {
				out.Rows = append(out.Rows, interactiveRow{
					ID:          row.ID,
					Title:       row.Title,
					Description: row.Description,
				})
			}
			interactive.Action.Sections = append(interactive.Action.Sections, out)
		}
		req.Interactive = interactive

	default:
		return fmt.Errorf("unknown intent kind %q", intent.Kind)
	}

	return s.post(ctx, account, req)
}

func (s *Sender) post(ctx context.Context, account entity.WhatsAppAccount, req messageRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.graphURL, account.PhoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+account.AccessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		s.log.Error("graph api rejected message",
			slog.Int("status", resp.StatusCode),
			slog.String("response", string(raw)),
		)
		return fmt.Errorf("graph api status %d", resp.StatusCode)
	}

	s.log.Debug("message sent",
		slog.String("to", req.To),
		slog.String("type", req.Type),
	)
	return nil
}
