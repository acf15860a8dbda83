package entity

import "time"

// Grievance statuses.
const (
	GrievancePending    = "pending"
	GrievanceInProgress = "in_progress"
	GrievanceResolved   = "resolved"
	GrievanceRejected   = "rejected"
)

// Grievance is a citizen complaint minted when a flow reaches its
// confirmation step. GrievanceID is the citizen-facing reference (GRV...).
type Grievance struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	GrievanceID string `json:"grievanceId" bson:"grievance_id"`
	CompanyID   string `json:"companyId" bson:"company_id"`

	CitizenName  string `json:"citizenName,omitempty" bson:"citizen_name,omitempty"`
	CitizenPhone string `json:"citizenPhone" bson:"citizen_phone"`

	DepartmentID string `json:"departmentId,omitempty" bson:"department_id,omitempty"`
	Category     string `json:"category,omitempty" bson:"category,omitempty"`
	Description  string `json:"description,omitempty" bson:"description,omitempty"`
	Location     string `json:"location,omitempty" bson:"location,omitempty"`
	MediaID      string `json:"mediaId,omitempty" bson:"media_id,omitempty"`

	Status     string `json:"status" bson:"status"`
	AssignedTo string `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`
	Remarks    string `json:"remarks,omitempty" bson:"remarks,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
