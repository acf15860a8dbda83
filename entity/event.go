package entity

import "time"

// Inbound event kinds, as delivered by the WhatsApp webhook.
const (
	EventText          = "text"
	EventButtonClick   = "button_click"
	EventListSelection = "list_selection"
	EventImage         = "image"
	EventDocument      = "document"
	EventLocation      = "location"
)

// InboundEvent is one citizen message after webhook parsing. For clicks and
// selections Payload carries the machine id and Text the human title; for
// media MediaID carries the carrier media reference.
type InboundEvent struct {
	CompanyID string    `json:"companyId"`
	Phone     string    `json:"phone"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	MediaID   string    `json:"mediaId,omitempty"`
	MimeType  string    `json:"mimeType,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Outbound intent kinds.
const (
	IntentText    = "text"
	IntentButtons = "buttons"
	IntentList    = "list"
)

// OutboundButton is a rendered reply button, already truncated to carrier
// limits.
type OutboundButton struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// OutboundRow is a rendered list row.
type OutboundRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// OutboundSection is a rendered list section.
type OutboundSection struct {
	Title string        `json:"title"`
	Rows  []OutboundRow `json:"rows"`
}

// OutboundIntent is what the engine wants sent. It is carrier-shaped but
// transport-free; the sender turns it into Graph API calls.
type OutboundIntent struct {
	Phone string `json:"phone"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`

	Buttons []OutboundButton `json:"buttons,omitempty"`

	ButtonText string            `json:"buttonText,omitempty"`
	Sections   []OutboundSection `json:"sections,omitempty"`
}
