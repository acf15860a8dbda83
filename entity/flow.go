package entity

import "time"

// Step types. Exactly one type-specific config is populated per step.
const (
	StepMessage   = "message"
	StepButtons   = "buttons"
	StepList      = "list"
	StepInput     = "input"
	StepMedia     = "media"
	StepCondition = "condition"
	StepAPICall   = "api_call"
)

// Flow categories.
const (
	FlowGrievance   = "grievance"
	FlowAppointment = "appointment"
	FlowTracking    = "tracking"
	FlowCustom      = "custom"
)

// Trigger match types.
const (
	TriggerKeyword       = "keyword"
	TriggerButtonClick   = "button_click"
	TriggerMenuSelection = "menu_selection"
	TriggerWebhook       = "webhook"
)

// Expected response match types.
const (
	MatchText          = "text"
	MatchButtonClick   = "button_click"
	MatchListSelection = "list_selection"
	MatchAny           = "any"
)

// List sources. A dynamic list is populated from the company's active
// departments at run time instead of authored sections.
const (
	ListSourceManual      = "manual"
	ListSourceDepartments = "departments"
)

// StepButton is one reply button on a buttons step.
type StepButton struct {
	ID         string `json:"id" bson:"id" validate:"required"`
	Title      string `json:"title" bson:"title" validate:"required"`
	NextStepID string `json:"nextStepId,omitempty" bson:"next_step_id,omitempty"`
}

// ListRow is one selectable row inside a list section.
type ListRow struct {
	ID          string `json:"id" bson:"id" validate:"required"`
	Title       string `json:"title" bson:"title" validate:"required"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	NextStepID  string `json:"nextStepId,omitempty" bson:"next_step_id,omitempty"`
}

// ListSection groups rows under a title.
type ListSection struct {
	Title string    `json:"title" bson:"title"`
	Rows  []ListRow `json:"rows" bson:"rows"`
}

// ListConfig configures a list step.
type ListConfig struct {
	ListSource string        `json:"listSource,omitempty" bson:"list_source,omitempty"`
	ButtonText string        `json:"buttonText" bson:"button_text"`
	Sections   []ListSection `json:"sections,omitempty" bson:"sections,omitempty"`
}

// InputValidation is the rule applied to citizen input on an input step.
type InputValidation struct {
	Required     bool   `json:"required" bson:"required"`
	MinLength    int    `json:"minLength,omitempty" bson:"min_length,omitempty"`
	MaxLength    int    `json:"maxLength,omitempty" bson:"max_length,omitempty"`
	Pattern      string `json:"pattern,omitempty" bson:"pattern,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty" bson:"error_message,omitempty"`
}

// InputConfig configures an input step.
type InputConfig struct {
	InputType   string           `json:"inputType" bson:"input_type"`
	Validation  *InputValidation `json:"validation,omitempty" bson:"validation,omitempty"`
	SaveToField string           `json:"saveToField" bson:"save_to_field"`
	NextStepID  string           `json:"nextStepId,omitempty" bson:"next_step_id,omitempty"`
}

// Input kinds accepted by input steps.
const (
	InputText     = "text"
	InputNumber   = "number"
	InputEmail    = "email"
	InputPhone    = "phone"
	InputDate     = "date"
	InputImage    = "image"
	InputDocument = "document"
	InputLocation = "location"
)

// MediaConfig configures a media step.
type MediaConfig struct {
	MediaType   string `json:"mediaType" bson:"media_type"`
	Optional    bool   `json:"optional" bson:"optional"`
	SaveToField string `json:"saveToField,omitempty" bson:"save_to_field,omitempty"`
	NextStepID  string `json:"nextStepId,omitempty" bson:"next_step_id,omitempty"`
}

// Condition operators.
const (
	OpEquals      = "equals"
	OpContains    = "contains"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpExists      = "exists"
)

// ConditionConfig configures a condition step. Condition steps consume no
// inbound event; they branch immediately on entry.
type ConditionConfig struct {
	Field       string `json:"field" bson:"field"`
	Operator    string `json:"operator" bson:"operator"`
	Value       string `json:"value,omitempty" bson:"value,omitempty"`
	TrueStepID  string `json:"trueStepId" bson:"true_step_id"`
	FalseStepID string `json:"falseStepId" bson:"false_step_id"`
}

// APIConfig configures an api_call step. Endpoint and body may contain
// placeholders resolved against session data before invocation.
type APIConfig struct {
	Method         string            `json:"method" bson:"method"`
	Endpoint       string            `json:"endpoint" bson:"endpoint"`
	Headers        map[string]string `json:"headers,omitempty" bson:"headers,omitempty"`
	Body           string            `json:"body,omitempty" bson:"body,omitempty"`
	SaveResponseTo string            `json:"saveResponseTo,omitempty" bson:"save_response_to,omitempty"`
	NextStepID     string            `json:"nextStepId,omitempty" bson:"next_step_id,omitempty"`
}

// ExpectedResponse routes a step based on what the citizen actually sent,
// taking precedence over the step's default next step. A wildcard ("any")
// entry is always evaluated after the exact entries.
type ExpectedResponse struct {
	Type       string `json:"type" bson:"type"`
	Value      string `json:"value" bson:"value"`
	NextStepID string `json:"nextStepId,omitempty" bson:"next_step_id,omitempty"`
}

// FlowStep is one node of a flow graph. StepType selects which config is
// populated; the rest stay nil.
type FlowStep struct {
	StepID   string `json:"stepId" bson:"step_id" validate:"required"`
	StepType string `json:"stepType" bson:"step_type" validate:"required"`
	StepName string `json:"stepName" bson:"step_name"`

	MessageText string `json:"messageText,omitempty" bson:"message_text,omitempty"`

	Buttons         []StepButton     `json:"buttons,omitempty" bson:"buttons,omitempty"`
	ListConfig      *ListConfig      `json:"listConfig,omitempty" bson:"list_config,omitempty"`
	InputConfig     *InputConfig     `json:"inputConfig,omitempty" bson:"input_config,omitempty"`
	MediaConfig     *MediaConfig     `json:"mediaConfig,omitempty" bson:"media_config,omitempty"`
	ConditionConfig *ConditionConfig `json:"conditionConfig,omitempty" bson:"condition_config,omitempty"`
	APIConfig       *APIConfig       `json:"apiConfig,omitempty" bson:"api_config,omitempty"`

	ExpectedResponses []ExpectedResponse `json:"expectedResponses,omitempty" bson:"expected_responses,omitempty"`

	// Default next step when no expected response overrides it. Empty
	// means terminal for non-branching steps.
	NextStepID string `json:"nextStepId,omitempty" bson:"next_step_id,omitempty"`
}

// FlowTrigger starts a flow when an inbound message matches it. Keyword
// triggers match case-insensitively against normalized text; click triggers
// match the payload identifier.
type FlowTrigger struct {
	TriggerType  string `json:"triggerType" bson:"trigger_type" validate:"required"`
	TriggerValue string `json:"triggerValue" bson:"trigger_value" validate:"required"`
	StartStepID  string `json:"startStepId" bson:"start_step_id" validate:"required"`
}

// FlowSettings are per-flow execution knobs.
type FlowSettings struct {
	SessionTimeoutMinutes int    `json:"sessionTimeout" bson:"session_timeout"`
	MaxRetries            int    `json:"maxRetries" bson:"max_retries"`
	ErrorFallbackMessage  string `json:"errorFallbackMessage" bson:"error_fallback_message"`
}

// FlowDefinition is a company-owned conversation graph. FlowCode is a
// human-friendly code and is deliberately NOT unique (copying flows in
// production caused duplicate-key incidents); ID is the durable key.
type FlowDefinition struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	FlowCode  string `json:"flowCode,omitempty" bson:"flow_code,omitempty"`
	CompanyID string `json:"companyId" bson:"company_id" validate:"required"`

	FlowName string `json:"flowName" bson:"flow_name" validate:"required"`
	FlowType string `json:"flowType" bson:"flow_type" validate:"required,oneof=grievance appointment tracking custom"`
	IsActive bool   `json:"isActive" bson:"is_active"`
	Version  int    `json:"version" bson:"version"`

	StartStepID string        `json:"startStepId" bson:"start_step_id" validate:"required"`
	Steps       []FlowStep    `json:"steps" bson:"steps" validate:"required,min=1,dive"`
	Triggers    []FlowTrigger `json:"triggers" bson:"triggers" validate:"required,min=1,dive"`

	SupportedLanguages []string `json:"supportedLanguages,omitempty" bson:"supported_languages,omitempty"`
	DefaultLanguage    string   `json:"defaultLanguage,omitempty" bson:"default_language,omitempty"`

	Settings FlowSettings `json:"settings" bson:"settings"`

	UsageCount int64      `json:"usageCount" bson:"usage_count"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty" bson:"last_used_at,omitempty"`

	IsDeleted bool       `json:"isDeleted" bson:"is_deleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" bson:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updated_at"`
}

// Step returns the step with the given id, or nil.
func (f *FlowDefinition) Step(stepID string) *FlowStep {
	for i := range f.Steps {
		if f.Steps[i].StepID == stepID {
			return &f.Steps[i]
		}
	}
	return nil
}

// StartStepFor returns the trigger's start step, falling back to the
// flow-level start step when the trigger does not name one.
func (f *FlowDefinition) StartStepFor(t *FlowTrigger) string {
	if t != nil && t.StartStepID != "" {
		return t.StartStepID
	}
	return f.StartStepID
}

// Language returns lang when the flow supports it, else the flow default.
func (f *FlowDefinition) Language(lang string) string {
	for _, l := range f.SupportedLanguages {
		if l == lang {
			return lang
		}
	}
	return f.DefaultLanguage
}

// Default execution settings applied when a flow leaves them zero.
const (
	DefaultSessionTimeoutMinutes = 30
	DefaultMaxRetries            = 3
	DefaultFallbackMessage       = "We encountered an error. Please try again."
)

// SessionTimeout returns the configured timeout with the default applied.
func (s FlowSettings) SessionTimeout() time.Duration {
	minutes := s.SessionTimeoutMinutes
	if minutes <= 0 {
		minutes = DefaultSessionTimeoutMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// RetryLimit returns the configured retry ceiling with the default applied.
func (s FlowSettings) RetryLimit() int {
	if s.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return s.MaxRetries
}

// Fallback returns the configured fallback text with the default applied.
func (s FlowSettings) Fallback() string {
	if s.ErrorFallbackMessage == "" {
		return DefaultFallbackMessage
	}
	return s.ErrorFallbackMessage
}
