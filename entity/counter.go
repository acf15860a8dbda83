package entity

// Counter kinds used for reference ids.
const (
	CounterGrievance   = "grievanceId"
	CounterAppointment = "appointmentId"
	CounterUser        = "userId"
	CounterFlow        = "flowId"
)

// ReferenceCounter is one monotonic sequence, scoped per company (global
// sequences have no company id). Value only ever grows; gaps from abandoned
// flows are fine, reuse is not.
type ReferenceCounter struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	Kind      string `json:"kind" bson:"kind"`
	CompanyID string `json:"companyId,omitempty" bson:"company_id,omitempty"`
	Value     int64  `json:"value" bson:"value"`
}
