package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"SevaFlow/entity"
)

// webhookPayload mirrors the Cloud API webhook envelope, limited to the
// fields the engine consumes.
type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Messages []webhookMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type webhookMessage struct {
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply"`
		ListReply *struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"list_reply"`
	} `json:"interactive"`
	Image *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	} `json:"image"`
	Document *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	} `json:"document"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// Inbound is one webhook batch resolved to a phone number id and the
// events it carried.
type Inbound struct {
	PhoneNumberID string
	Events        []entity.InboundEvent
}

// ParsePayload decodes a webhook POST body. Status updates and unknown
// message types decode to zero events, not errors: the carrier retries
// on non-200 and a permanently unparseable delivery would retry forever.
func ParsePayload(body []byte) ([]Inbound, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	var batches []Inbound
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			batch := Inbound{PhoneNumberID: change.Value.Metadata.PhoneNumberID}
			for _, msg := range change.Value.Messages {
				if event := parseMessage(msg); event != nil {
					batch.Events = append(batch.Events, *event)
				}
			}
			if len(batch.Events) > 0 {
				batches = append(batches, batch)
			}
		}
	}
	return batches, nil
}

func parseMessage(msg webhookMessage) *entity.InboundEvent {
	event := entity.InboundEvent{
		Phone:     msg.From,
		Timestamp: parseTimestamp(msg.Timestamp),
	}

	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return nil
		}
		event.Kind = entity.EventText
		event.Text = msg.Text.Body

	case "interactive":
		if msg.Interactive == nil {
			return nil
		}
		if reply := msg.Interactive.ButtonReply; reply != nil {
			event.Kind = entity.EventButtonClick
			event.Payload = reply.ID
			event.Text = reply.Title
		} else if reply := msg.Interactive.ListReply; reply != nil {
			event.Kind = entity.EventListSelection
			event.Payload = reply.ID
			event.Text = reply.Title
		} else {
			return nil
		}

	case "image":
		if msg.Image == nil {
			return nil
		}
		event.Kind = entity.EventImage
		event.MediaID = msg.Image.ID
		event.MimeType = msg.Image.MimeType

	case "document":
		if msg.Document == nil {
			return nil
		}
		event.Kind = entity.EventDocument
		event.MediaID = msg.Document.ID
		event.MimeType = msg.Document.MimeType

	case "location":
		if msg.Location == nil {
			return nil
		}
		event.Kind = entity.EventLocation
		event.Text = fmt.Sprintf("%f,%f", msg.Location.Latitude, msg.Location.Longitude)

	default:
		return nil
	}

	return &event
}

func parseTimestamp(raw string) time.Time {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(seconds, 0)
}

// VerifySignature checks the X-Hub-Signature-256 header against the raw
// body using the tenant's app secret. Comparison is constant time.
func VerifySignature(appSecret string, body []byte, header string) bool {
	if appSecret == "" || header == "" {
		return false
	}
	expected := strings.TrimPrefix(header, "sha256=")

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(expected))
}
