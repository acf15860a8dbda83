package entity

import (
	"SevaFlow/internal/lib/validate"
	"net/http"
	"time"
)

// UserAuth is an API key holder for the authoring endpoints. Token is the
// Bearer value; CompanyID scopes what the key may touch (empty means all).
type UserAuth struct {
	Username  string    `json:"username" bson:"username" validate:"required"`
	Name      string    `json:"name" bson:"name" validate:"omitempty"`
	Email     string    `json:"email" bson:"email" validate:"omitempty"`
	CompanyID string    `json:"companyId" bson:"company_id" validate:"omitempty"`
	Token     string    `json:"token" bson:"token" validate:"required,min=1"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

func (u *UserAuth) Bind(_ *http.Request) error {
	return validate.Struct(u)
}
