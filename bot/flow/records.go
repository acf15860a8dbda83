package flow

import (
	"fmt"
	"strings"
	"time"

	"SevaFlow/entity"
)

// Step and payload naming conventions record minting keys off. Flows
// follow these prefixes by authoring convention; a custom flow that does
// not use them simply never mints records.
const (
	grievanceConfirmPrefix = "grievance_confirm"
	grievanceSuccessPrefix = "grievance_success"
	grievanceYesPrefix     = "confirm_yes"

	appointmentConfirmPrefix   = "appointment_confirm"
	appointmentSubmittedPrefix = "appointment_submitted"
	appointmentYesPrefix       = "appt_confirm_yes"

	trackResultPrefix = "track_result"
)

// Recorder mints grievance and appointment records at confirmation
// transitions and resolves status lookups for tracking steps.
type Recorder struct {
	records     RecordStore
	refs        RefIssuer
	departments DepartmentSource
}

func NewRecorder(records RecordStore, refs RefIssuer, departments DepartmentSource) *Recorder {
	return &Recorder{records: records, refs: refs, departments: departments}
}

// MintOnTransition creates a record when the transition is a confirmed
// grievance or appointment submission. It writes the reference id and
// related placeholders into session data and returns true when a record
// was created. Callers must only invoke this after winning the session
// write, otherwise duplicate deliveries mint duplicate records.
func (r *Recorder) MintOnTransition(session *entity.Session, fromStepID, toStepID, payload string) (bool, error) {
	if strings.HasPrefix(fromStepID, grievanceConfirmPrefix) &&
		strings.HasPrefix(toStepID, grievanceSuccessPrefix) &&
		strings.HasPrefix(payload, grievanceYesPrefix) {
		return true, r.mintGrievance(session)
	}

	if strings.HasPrefix(fromStepID, appointmentConfirmPrefix) &&
		strings.HasPrefix(toStepID, appointmentSubmittedPrefix) &&
		strings.HasPrefix(payload, appointmentYesPrefix) {
		return true, r.mintAppointment(session)
	}

	return false, nil
}

func (r *Recorder) mintGrievance(session *entity.Session) error {
	ref, err := r.refs.NextGrievanceID(session.CompanyID)
	if err != nil {
		return fmt.Errorf("mint grievance id: %w", err)
	}

	g := &entity.Grievance{
		GrievanceID:  ref,
		CompanyID:    session.CompanyID,
		CitizenName:  session.Data["name"],
		CitizenPhone: session.Phone,
		DepartmentID: session.Data["departmentId"],
		Category:     session.Data["category"],
		Description:  session.Data["description"],
		Location:     session.Data["location"],
		MediaID:      session.Data["mediaId"],
		Status:       entity.GrievancePending,
	}
	if err := r.records.InsertGrievance(g); err != nil {
		return fmt.Errorf("store grievance: %w", err)
	}

	session.Set("grievanceId", ref)
	session.Set("refNumber", ref)
	session.Set("date", time.Now().Format("02/01/2006"))
	if session.Data["department"] == "" && g.DepartmentID != "" {
		if d, err := r.departments.FindDepartmentByID(session.CompanyID, g.DepartmentID); err == nil && d != nil {
			session.Set("department", d.Name)
		}
	}
	return nil
}

func (r *Recorder) mintAppointment(session *entity.Session) error {
	ref, err := r.refs.NextAppointmentID(session.CompanyID)
	if err != nil {
		return fmt.Errorf("mint appointment id: %w", err)
	}

	a := &entity.Appointment{
		AppointmentID: ref,
		CompanyID:     session.CompanyID,
		CitizenName:   session.Data["name"],
		CitizenPhone:  session.Phone,
		DepartmentID:  session.Data["departmentId"],
		Purpose:       session.Data["purpose"],
		PreferredDate: session.Data["preferredDate"],
		PreferredTime: session.Data["preferredTime"],
		Status:        entity.AppointmentRequested,
	}
	if err := r.records.InsertAppointment(a); err != nil {
		return fmt.Errorf("store appointment: %w", err)
	}

	session.Set("appointmentId", ref)
	session.Set("refNumber", ref)
	session.Set("status", a.Status)
	session.Set("date", time.Now().Format("02/01/2006"))
	return nil
}

// ResolveTracking loads the record behind session.Data["refNumber"] into
// the placeholders a track_result step renders. Unknown or malformed
// references resolve to Not Found text, never an error: the citizen typed
// the reference, a typo is not a system fault.
func (r *Recorder) ResolveTracking(session *entity.Session) error {
	ref := strings.ToUpper(strings.TrimSpace(session.Data["refNumber"]))
	session.Set("refNumber", ref)

	notFound := func(kind string) {
		session.Set("recordType", kind)
		session.Set("status", "Not Found")
		session.Set("assignedTo", "-")
		session.Set("remarks", "No record found for this reference number.")
	}

	switch {
	case strings.HasPrefix(ref, "GRV"):
		g, err := r.records.FindGrievanceByRef(session.CompanyID, ref)
		if err != nil {
			return fmt.Errorf("lookup grievance: %w", err)
		}
		if g == nil {
			notFound("Grievance")
			return nil
		}
		session.Set("recordType", "Grievance")
		session.Set("status", g.Status)
		session.Set("assignedTo", orDash(g.AssignedTo))
		session.Set("remarks", orDash(g.Remarks))

	case strings.HasPrefix(ref, "APT"):
		a, err := r.records.FindAppointmentByRef(session.CompanyID, ref)
		if err != nil {
			return fmt.Errorf("lookup appointment: %w", err)
		}
		if a == nil {
			notFound("Appointment")
			return nil
		}
		session.Set("recordType", "Appointment")
		session.Set("status", a.Status)
		session.Set("assignedTo", orDash(a.AssignedTo))
		session.Set("remarks", orDash(a.Remarks))

	default:
		notFound("Unknown")
	}
	return nil
}

// IsTrackingStep reports whether entering the step requires a record
// lookup first.
func IsTrackingStep(stepID string) bool {
	return strings.HasPrefix(stepID, trackResultPrefix)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
