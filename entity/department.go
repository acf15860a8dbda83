package entity

import "time"

// Department is a tenant service desk. Active departments feed dynamic
// list steps.
type Department struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	CompanyID string `json:"companyId" bson:"company_id"`

	Name        string `json:"name" bson:"name" validate:"required"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	IsActive    bool   `json:"isActive" bson:"is_active"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
