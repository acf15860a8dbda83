package flows

import (
	"SevaFlow/entity"
	"SevaFlow/internal/lib/api/cont"
	"net/http"
)

// Core is the authoring surface behind the flow endpoints.
type Core interface {
	CreateFlow(companyID string, f *entity.FlowDefinition) (*entity.FlowDefinition, error)
	GetFlow(companyID, flowID string) (*entity.FlowDefinition, error)
	ListFlows(companyID string) ([]entity.FlowDefinition, error)
	UpdateFlow(companyID string, f *entity.FlowDefinition) error
	DeleteFlow(companyID, flowID string) error
	SetFlowActive(companyID, flowID string, active bool) error
}

// resolveCompany picks the tenant a request operates on. Keys bound to a
// company are pinned to it; unbound keys must name one explicitly.
func resolveCompany(r *http.Request) string {
	if user := cont.GetUser(r.Context()); user != nil && user.CompanyID != "" {
		return user.CompanyID
	}
	return r.URL.Query().Get("company")
}
