package flow

import (
	"SevaFlow/entity"
	"context"
	"errors"
)

// Engine errors callers branch on.
var (
	// ErrNoTriggerMatched means the message starts nothing and no session
	// is active; the caller replies with the tenant help message.
	ErrNoTriggerMatched = errors.New("no trigger matched")

	// ErrStaleSession means another delivery of the same message won the
	// session write; the loser's output is dropped.
	ErrStaleSession = errors.New("session advanced concurrently")
)

// FlowSource supplies flow definitions. Backed by mongo, usually through
// the redis read-through cache.
type FlowSource interface {
	FindActiveFlowsByCompany(companyID string) ([]entity.FlowDefinition, error)
	FindFlowByID(companyID, flowID string) (*entity.FlowDefinition, error)
	IncrementFlowUsage(flowID string) error
}

// SessionStore persists citizen sessions. AdvanceSession must be atomic on
// the (company, phone, current_step) triple: it returns false without
// writing when the session no longer sits on expectStep.
type SessionStore interface {
	LoadSession(companyID, phone string) (*entity.Session, error)
	PutSession(session *entity.Session) error
	AdvanceSession(session *entity.Session, expectStep string) (bool, error)
	DeleteSession(companyID, phone string) error
}

// RefIssuer mints citizen-facing reference ids.
type RefIssuer interface {
	NextGrievanceID(companyID string) (string, error)
	NextAppointmentID(companyID string) (string, error)
}

// RecordStore persists and resolves the records flows mint.
type RecordStore interface {
	InsertGrievance(g *entity.Grievance) error
	FindGrievanceByRef(companyID, ref string) (*entity.Grievance, error)
	InsertAppointment(a *entity.Appointment) error
	FindAppointmentByRef(companyID, ref string) (*entity.Appointment, error)
}

// DepartmentSource feeds dynamic list steps.
type DepartmentSource interface {
	FindActiveDepartments(companyID string) ([]entity.Department, error)
	FindDepartmentByID(companyID, departmentID string) (*entity.Department, error)
}

// ActionInvoker executes api_call steps against external systems.
type ActionInvoker interface {
	Invoke(ctx context.Context, cfg entity.APIConfig, data map[string]string) (string, error)
}
