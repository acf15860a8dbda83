package entity

import "time"

// Appointment statuses.
const (
	AppointmentRequested = "requested"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a visit request minted from an appointment flow.
// AppointmentID is the citizen-facing reference (APT...).
type Appointment struct {
	ID            string `json:"id" bson:"_id,omitempty"`
	AppointmentID string `json:"appointmentId" bson:"appointment_id"`
	CompanyID     string `json:"companyId" bson:"company_id"`

	CitizenName  string `json:"citizenName,omitempty" bson:"citizen_name,omitempty"`
	CitizenPhone string `json:"citizenPhone" bson:"citizen_phone"`

	DepartmentID  string `json:"departmentId,omitempty" bson:"department_id,omitempty"`
	Purpose       string `json:"purpose,omitempty" bson:"purpose,omitempty"`
	PreferredDate string `json:"preferredDate,omitempty" bson:"preferred_date,omitempty"`
	PreferredTime string `json:"preferredTime,omitempty" bson:"preferred_time,omitempty"`

	Status     string `json:"status" bson:"status"`
	AssignedTo string `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`
	Remarks    string `json:"remarks,omitempty" bson:"remarks,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
