package entity

import "time"

// WhatsAppAccount holds a tenant's Cloud API credentials. AppSecret signs
// inbound webhooks, AccessToken authorizes outbound sends.
type WhatsAppAccount struct {
	PhoneNumberID string `json:"phoneNumberId" bson:"phone_number_id"`
	AccessToken   string `json:"-" bson:"access_token"`
	AppSecret     string `json:"-" bson:"app_secret"`
	VerifyToken   string `json:"-" bson:"verify_token"`
}

// Company is one tenant. Every flow, session, record and counter hangs off
// a company id; nothing crosses tenants.
type Company struct {
	ID   string `json:"id" bson:"_id,omitempty"`
	Name string `json:"name" bson:"name" validate:"required"`

	WhatsApp WhatsAppAccount `json:"whatsapp" bson:"whatsapp"`

	// Reply used when no trigger matches and no session is active.
	HelpMessage string `json:"helpMessage,omitempty" bson:"help_message,omitempty"`

	IsActive  bool      `json:"isActive" bson:"is_active"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
