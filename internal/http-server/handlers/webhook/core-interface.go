package webhook

import (
	"context"

	"SevaFlow/entity"
)

// Core is what the webhook needs from the rest of the system: tenant
// resolution, flow execution and outbound delivery.
type Core interface {
	FindCompanyByPhoneNumberID(phoneNumberID string) (*entity.Company, error)
	HandleInbound(ctx context.Context, company *entity.Company, event *entity.InboundEvent) ([]entity.OutboundIntent, error)
	Send(ctx context.Context, account entity.WhatsAppAccount, intent entity.OutboundIntent) error
	HelpMessage(company *entity.Company) string
}
