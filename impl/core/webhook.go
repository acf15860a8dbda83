package core

import (
	"context"
	"fmt"

	"SevaFlow/entity"
)

func (c *Core) FindCompanyByPhoneNumberID(phoneNumberID string) (*entity.Company, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository not available")
	}
	return c.repo.FindCompanyByPhoneNumberID(phoneNumberID)
}

func (c *Core) HandleInbound(ctx context.Context, company *entity.Company, event *entity.InboundEvent) ([]entity.OutboundIntent, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("engine not available")
	}
	return c.engine.HandleInbound(ctx, company, event)
}

func (c *Core) Send(ctx context.Context, account entity.WhatsAppAccount, intent entity.OutboundIntent) error {
	if c.sender == nil {
		return fmt.Errorf("sender not available")
	}
	return c.sender.Send(ctx, account, intent)
}

// HelpMessage returns the tenant's configured fallback reply, or the
// deployment default.
func (c *Core) HelpMessage(company *entity.Company) string {
	if company != nil && company.HelpMessage != "" {
		return company.HelpMessage
	}
	return c.helpDefault
}
