package core

import (
	"fmt"

	"SevaFlow/entity"
)

// CreateFlow mints a display code, stores the flow and drops the tenant's
// cached flow list.
func (c *Core) CreateFlow(companyID string, f *entity.FlowDefinition) (*entity.FlowDefinition, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository not available")
	}

	f.CompanyID = companyID
	if f.FlowCode == "" && c.issuer != nil {
		code, err := c.issuer.NextFlowCode()
		if err != nil {
			return nil, fmt.Errorf("mint flow code: %w", err)
		}
		f.FlowCode = code
	}

	if _, err := c.repo.InsertFlow(f); err != nil {
		return nil, err
	}
	c.invalidateFlows(companyID)
	return f, nil
}

func (c *Core) GetFlow(companyID, flowID string) (*entity.FlowDefinition, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository not available")
	}
	return c.repo.FindFlowByID(companyID, flowID)
}

func (c *Core) ListFlows(companyID string) ([]entity.FlowDefinition, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository not available")
	}
	return c.repo.ListFlows(companyID)
}

func (c *Core) UpdateFlow(companyID string, f *entity.FlowDefinition) error {
	if c.repo == nil {
		return fmt.Errorf("repository not available")
	}
	f.CompanyID = companyID
	if err := c.repo.UpdateFlow(f); err != nil {
		return err
	}
	c.invalidateFlows(companyID)
	return nil
}

func (c *Core) DeleteFlow(companyID, flowID string) error {
	if c.repo == nil {
		return fmt.Errorf("repository not available")
	}
	if err := c.repo.SoftDeleteFlow(companyID, flowID); err != nil {
		return err
	}
	c.invalidateFlows(companyID)
	return nil
}

func (c *Core) SetFlowActive(companyID, flowID string, active bool) error {
	if c.repo == nil {
		return fmt.Errorf("repository not available")
	}
	if err := c.repo.SetFlowActive(companyID, flowID, active); err != nil {
		return err
	}
	c.invalidateFlows(companyID)
	return nil
}
