package flow

import (
	"fmt"

	"SevaFlow/entity"
)

// SequenceSource is the atomic counter backing reference ids.
type SequenceSource interface {
	NextSequence(kind, companyID string) (int64, error)
}

// Issuer formats citizen-facing reference ids from monotonic sequences.
// Grievance and appointment sequences are per tenant; user and flow codes
// draw from global sequences. Width is a floor, not a ceiling: sequences
// past the pad width keep growing digits instead of wrapping.
type Issuer struct {
	seq SequenceSource
}

func NewIssuer(seq SequenceSource) *Issuer {
	return &Issuer{seq: seq}
}

func (i *Issuer) NextGrievanceID(companyID string) (string, error) {
	n, err := i.seq.NextSequence(entity.CounterGrievance, companyID)
	if err != nil {
		return "", fmt.Errorf("grievance sequence: %w", err)
	}
	return fmt.Sprintf("GRV%08d", n), nil
}

func (i *Issuer) NextAppointmentID(companyID string) (string, error) {
	n, err := i.seq.NextSequence(entity.CounterAppointment, companyID)
	if err != nil {
		return "", fmt.Errorf("appointment sequence: %w", err)
	}
	return fmt.Sprintf("APT%08d", n), nil
}

func (i *Issuer) NextUserID() (string, error) {
	n, err := i.seq.NextSequence(entity.CounterUser, "")
	if err != nil {
		return "", fmt.Errorf("user sequence: %w", err)
	}
	return fmt.Sprintf("USER%06d", n), nil
}

// NextFlowCode mints a display code for a new flow. Codes are labels, not
// keys: duplicates across copied flows are tolerated on purpose.
func (i *Issuer) NextFlowCode() (string, error) {
	n, err := i.seq.NextSequence(entity.CounterFlow, "")
	if err != nil {
		return "", fmt.Errorf("flow sequence: %w", err)
	}
	return fmt.Sprintf("FLOW%06d", n), nil
}
