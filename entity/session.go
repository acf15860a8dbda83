package entity

import "time"

// Session statuses.
const (
	SessionActive    = "ACTIVE"
	SessionCompleted = "COMPLETED"
	SessionExpired   = "EXPIRED"
	SessionError     = "ERROR"
)

// Session is one citizen's position inside a flow. At most one active
// session exists per (company, phone); the key is CompanyID+Phone.
// Expiry is lazy: nothing reaps sessions in the background, a session is
// expired the moment it is loaded past its deadline.
type Session struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	CompanyID string `json:"companyId" bson:"company_id"`
	Phone     string `json:"phone" bson:"phone"`

	FlowID      string `json:"flowId" bson:"flow_id"`
	FlowVersion int    `json:"flowVersion" bson:"flow_version"`
	CurrentStep string `json:"currentStep" bson:"current_step"`
	Status      string `json:"status" bson:"status"`

	// Collected answers keyed by saveToField names, plus engine-written
	// keys (refNumber, departmentId, grievanceId, ...). Values stay
	// strings; numeric comparison parses on demand.
	Data map[string]string `json:"data" bson:"data"`

	Language   string `json:"language,omitempty" bson:"language,omitempty"`
	RetryCount int    `json:"retryCount" bson:"retry_count"`

	StartedAt      time.Time `json:"startedAt" bson:"started_at"`
	LastActivityAt time.Time `json:"lastActivityAt" bson:"last_activity_at"`
	ExpiresAt      time.Time `json:"expiresAt" bson:"expires_at"`
}

// ExpiredAt reports whether the session deadline passed at the given moment.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Touch refreshes activity and pushes the deadline out by timeout.
func (s *Session) Touch(now time.Time, timeout time.Duration) {
	s.LastActivityAt = now
	s.ExpiresAt = now.Add(timeout)
}

// Set writes one data key, allocating the map on first use.
func (s *Session) Set(key, value string) {
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
}
