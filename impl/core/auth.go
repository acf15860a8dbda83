package core

import (
	"fmt"

	"SevaFlow/entity"
)

func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository not available")
	}
	return c.repo.AuthenticateByToken(token)
}

func (c *Core) GenerateApiKey(username, companyID string) (string, error) {
	if c.repo == nil {
		return "", fmt.Errorf("repository not available")
	}
	return c.repo.GenerateApiKey(username, companyID)
}
