package flow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SevaFlow/entity"
)

type fakeFlows struct {
	flows []entity.FlowDefinition
	usage map[string]int
}

func (f *fakeFlows) FindActiveFlowsByCompany(companyID string) ([]entity.FlowDefinition, error) {
	var out []entity.FlowDefinition
	for _, fl := range f.flows {
		if fl.CompanyID == companyID && fl.IsActive {
			out = append(out, fl)
		}
	}
	return out, nil
}

func (f *fakeFlows) FindFlowByID(companyID, flowID string) (*entity.FlowDefinition, error) {
	for i := range f.flows {
		if f.flows[i].ID == flowID && f.flows[i].CompanyID == companyID {
			return &f.flows[i], nil
		}
	}
	return nil, nil
}

func (f *fakeFlows) IncrementFlowUsage(flowID string) error {
	if f.usage == nil {
		f.usage = map[string]int{}
	}
	f.usage[flowID]++
	return nil
}

type fakeSessions struct {
	sessions    map[string]*entity.Session
	loseAdvance bool
}

func sessionKey(companyID, phone string) string {
	return companyID + "/" + phone
}

func (s *fakeSessions) LoadSession(companyID, phone string) (*entity.Session, error) {
	stored, ok := s.sessions[sessionKey(companyID, phone)]
	if !ok {
		return nil, nil
	}
	cp := *stored
	cp.Data = map[string]string{}
	for k, v := range stored.Data {
		cp.Data[k] = v
	}
	return &cp, nil
}

func (s *fakeSessions) PutSession(session *entity.Session) error {
	if s.sessions == nil {
		s.sessions = map[string]*entity.Session{}
	}
	cp := *session
	s.sessions[sessionKey(session.CompanyID, session.Phone)] = &cp
	return nil
}

func (s *fakeSessions) AdvanceSession(session *entity.Session, expectStep string) (bool, error) {
	if s.loseAdvance {
		return false, nil
	}
	stored, ok := s.sessions[sessionKey(session.CompanyID, session.Phone)]
	if !ok || stored.CurrentStep != expectStep || stored.Status != entity.SessionActive {
		return false, nil
	}
	cp := *session
	s.sessions[sessionKey(session.CompanyID, session.Phone)] = &cp
	return true, nil
}

func (s *fakeSessions) DeleteSession(companyID, phone string) error {
	delete(s.sessions, sessionKey(companyID, phone))
	return nil
}

type fakeRecords struct {
	grievances   []entity.Grievance
	appointments []entity.Appointment
}

func (r *fakeRecords) InsertGrievance(g *entity.Grievance) error {
	r.grievances = append(r.grievances, *g)
	return nil
}

func (r *fakeRecords) FindGrievanceByRef(companyID, ref string) (*entity.Grievance, error) {
	for i := range r.grievances {
		if r.grievances[i].CompanyID == companyID && r.grievances[i].GrievanceID == ref {
			return &r.grievances[i], nil
		}
	}
	return nil, nil
}

func (r *fakeRecords) InsertAppointment(a *entity.Appointment) error {
	r.appointments = append(r.appointments, *a)
	return nil
}

func (r *fakeRecords) FindAppointmentByRef(companyID, ref string) (*entity.Appointment, error) {
	for i := range r.appointments {
		if r.appointments[i].CompanyID == companyID && r.appointments[i].AppointmentID == ref {
			return &r.appointments[i], nil
		}
	}
	return nil, nil
}

type fakeDepartments struct {
	departments []entity.Department
}

func (d *fakeDepartments) FindActiveDepartments(companyID string) ([]entity.Department, error) {
	var out []entity.Department
	for _, dept := range d.departments {
		if dept.CompanyID == companyID && dept.IsActive {
			out = append(out, dept)
		}
	}
	return out, nil
}

func (d *fakeDepartments) FindDepartmentByID(companyID, id string) (*entity.Department, error) {
	for i := range d.departments {
		if d.departments[i].ID == id && d.departments[i].CompanyID == companyID {
			return &d.departments[i], nil
		}
	}
	return nil, nil
}

type fakeInvoker struct {
	result string
	err    error
	calls  int
}

func (f *fakeInvoker) Invoke(_ context.Context, _ entity.APIConfig, _ map[string]string) (string, error) {
	f.calls++
	return f.result, f.err
}

type engineFixture struct {
	engine      *Engine
	flows       *fakeFlows
	sessions    *fakeSessions
	records     *fakeRecords
	departments *fakeDepartments
	invoker     *fakeInvoker
	company     *entity.Company
}

func grievanceFlow() entity.FlowDefinition {
	return entity.FlowDefinition{
		ID:          "flow-grv",
		CompanyID:   "city-1",
		FlowName:    "Grievance intake",
		FlowType:    entity.FlowGrievance,
		IsActive:    true,
		Version:     3,
		StartStepID: "welcome",
		Triggers: []entity.FlowTrigger{
			{TriggerType: entity.TriggerKeyword, TriggerValue: "complaint", StartStepID: "welcome"},
		},
		Steps: []entity.FlowStep{
			{
				StepID:      "welcome",
				StepType:    entity.StepButtons,
				MessageText: "Hello {name}! What would you like to do?",
				Buttons: []entity.StepButton{
					{ID: "new", Title: "New complaint", NextStepID: "ask_desc"},
				},
			},
			{
				StepID:      "ask_desc",
				StepType:    entity.StepInput,
				MessageText: "Describe the issue.",
				InputConfig: &entity.InputConfig{
					InputType:   entity.InputText,
					SaveToField: "description",
					Validation:  &entity.InputValidation{Required: true, MinLength: 5, ErrorMessage: "Too short"},
					NextStepID:  "grievance_confirm_1",
				},
			},
			{
				StepID:      "grievance_confirm_1",
				StepType:    entity.StepButtons,
				MessageText: "Submit: {description}?",
				Buttons: []entity.StepButton{
					{ID: "confirm_yes_1", Title: "Yes", NextStepID: "grievance_success_1"},
					{ID: "confirm_no_1", Title: "No", NextStepID: "welcome"},
				},
			},
			{
				StepID:      "grievance_success_1",
				StepType:    entity.StepMessage,
				MessageText: "Registered. Your reference is {grievanceId}.",
			},
		},
		Settings: entity.FlowSettings{MaxRetries: 2},
	}
}

func newFixture(t *testing.T, flows ...entity.FlowDefinition) *engineFixture {
	t.Helper()
	fx := &engineFixture{
		flows:       &fakeFlows{flows: flows},
		sessions:    &fakeSessions{sessions: map[string]*entity.Session{}},
		records:     &fakeRecords{},
		departments: &fakeDepartments{},
		invoker:     &fakeInvoker{},
		company:     &entity.Company{ID: "city-1", Name: "Greenfield Municipality"},
	}
	interp := fixedInterpolator()
	renderer := NewRenderer(interp, fx.departments)
	recorder := NewRecorder(fx.records, NewIssuer(&fakeSequences{}), fx.departments)
	fx.engine = NewEngine(fx.flows, fx.sessions, renderer, recorder, fx.invoker, 20, discardLogger())
	return fx
}

func (fx *engineFixture) handle(t *testing.T, event *entity.InboundEvent) []entity.OutboundIntent {
	t.Helper()
	event.CompanyID = fx.company.ID
	intents, err := fx.engine.HandleInbound(context.Background(), fx.company, event)
	require.NoError(t, err)
	return intents
}

func TestEngine_TriggerStartsFlow(t *testing.T) {
	fx := newFixture(t, grievanceFlow())

	intents := fx.handle(t, &entity.InboundEvent{Phone: "919900112233", Kind: entity.EventText, Text: "Complaint"})

	require.Len(t, intents, 1)
	assert.Equal(t, entity.IntentButtons, intents[0].Kind)
	assert.Contains(t, intents[0].Text, "What would you like to do?")

	session := fx.sessions.sessions[sessionKey("city-1", "919900112233")]
	require.NotNil(t, session)
	assert.Equal(t, "welcome", session.CurrentStep)
	assert.Equal(t, 3, session.FlowVersion)
	assert.Equal(t, 1, fx.flows.usage["flow-grv"])
}

func TestEngine_NoTriggerNoSession(t *testing.T) {
	fx := newFixture(t, grievanceFlow())

	_, err := fx.engine.HandleInbound(context.Background(), fx.company,
		&entity.InboundEvent{CompanyID: "city-1", Phone: "919900112233", Kind: entity.EventText, Text: "hello?"})

	assert.ErrorIs(t, err, ErrNoTriggerMatched)
}

func TestEngine_FullGrievanceRun(t *testing.T) {
	fx := newFixture(t, grievanceFlow())
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "complaint"})
	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventButtonClick, Payload: "new"})

	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "Streetlight broken on Main Rd"})
	require.Len(t, intents, 1)
	assert.Contains(t, intents[0].Text, "Submit: Streetlight broken on Main Rd?")

	intents = fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventButtonClick, Payload: "confirm_yes_1", Text: "Yes"})
	require.Len(t, intents, 1)
	assert.Equal(t, "Registered. Your reference is GRV00000001.", intents[0].Text)

	// Record minted once, session gone after the terminal step.
	require.Len(t, fx.records.grievances, 1)
	assert.Equal(t, "GRV00000001", fx.records.grievances[0].GrievanceID)
	assert.Equal(t, "Streetlight broken on Main Rd", fx.records.grievances[0].Description)
	assert.Nil(t, fx.sessions.sessions[sessionKey("city-1", phone)])
}

func TestEngine_InvalidInputRetriesThenFallsBack(t *testing.T) {
	fx := newFixture(t, grievanceFlow())
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "complaint"})
	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventButtonClick, Payload: "new"})

	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "bad"})
	require.NotEmpty(t, intents)
	assert.Equal(t, "Too short", intents[0].Text)
	assert.Equal(t, 1, fx.sessions.sessions[sessionKey("city-1", phone)].RetryCount)

	// MaxRetries is 2: the second failure exhausts the budget.
	intents = fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "bad"})
	require.Len(t, intents, 1)
	assert.Equal(t, entity.DefaultFallbackMessage, intents[0].Text)
	assert.Nil(t, fx.sessions.sessions[sessionKey("city-1", phone)])
	assert.Empty(t, fx.records.grievances)
}

func TestEngine_StaleSessionDropsOutput(t *testing.T) {
	fx := newFixture(t, grievanceFlow())
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "complaint"})
	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventButtonClick, Payload: "new"})
	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "Streetlight broken on Main Rd"})

	fx.sessions.loseAdvance = true
	_, err := fx.engine.HandleInbound(context.Background(), fx.company,
		&entity.InboundEvent{CompanyID: "city-1", Phone: phone, Kind: entity.EventButtonClick, Payload: "confirm_yes_1"})

	assert.ErrorIs(t, err, ErrStaleSession)
	// The loser never minted.
	assert.Empty(t, fx.records.grievances)
}

func TestEngine_ExpiredSessionIsDiscarded(t *testing.T) {
	fx := newFixture(t, grievanceFlow())
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "complaint"})
	stored := fx.sessions.sessions[sessionKey("city-1", phone)]
	stored.ExpiresAt = time.Now().Add(-time.Minute)

	// A non-trigger message against an expired session is unroutable.
	_, err := fx.engine.HandleInbound(context.Background(), fx.company,
		&entity.InboundEvent{CompanyID: "city-1", Phone: phone, Kind: entity.EventButtonClick, Payload: "new"})

	assert.ErrorIs(t, err, ErrNoTriggerMatched)
	assert.Nil(t, fx.sessions.sessions[sessionKey("city-1", phone)])
}

func TestEngine_TriggerRestartsMidFlow(t *testing.T) {
	fx := newFixture(t, grievanceFlow())
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "complaint"})
	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventButtonClick, Payload: "new"})

	// The keyword outranks the waiting input step.
	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "complaint"})
	require.Len(t, intents, 1)
	assert.Equal(t, entity.IntentButtons, intents[0].Kind)
	assert.Equal(t, "welcome", fx.sessions.sessions[sessionKey("city-1", phone)].CurrentStep)
}

func conditionFlow() entity.FlowDefinition {
	return entity.FlowDefinition{
		ID:          "flow-cond",
		CompanyID:   "city-1",
		FlowName:    "Routing",
		FlowType:    entity.FlowCustom,
		IsActive:    true,
		Version:     1,
		StartStepID: "ask_dept",
		Triggers: []entity.FlowTrigger{
			{TriggerType: entity.TriggerKeyword, TriggerValue: "route", StartStepID: "ask_dept"},
		},
		Steps: []entity.FlowStep{
			{
				StepID:      "ask_dept",
				StepType:    entity.StepInput,
				MessageText: "Which department?",
				InputConfig: &entity.InputConfig{
					InputType:   entity.InputText,
					SaveToField: "departmentId",
					NextStepID:  "branch",
				},
			},
			{
				StepID:   "branch",
				StepType: entity.StepCondition,
				ConditionConfig: &entity.ConditionConfig{
					Field:       "departmentId",
					Operator:    entity.OpEquals,
					Value:       "water",
					TrueStepID:  "water_msg",
					FalseStepID: "other_msg",
				},
			},
			{StepID: "water_msg", StepType: entity.StepMessage, MessageText: "Water team will call you."},
			{StepID: "other_msg", StepType: entity.StepMessage, MessageText: "Forwarded to the general desk."},
		},
	}
}

func TestEngine_ConditionBranches(t *testing.T) {
	fx := newFixture(t, conditionFlow())
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "route"})
	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "water"})

	require.Len(t, intents, 1)
	assert.Equal(t, "Water team will call you.", intents[0].Text)
	// Terminal message: session completed and removed.
	assert.Nil(t, fx.sessions.sessions[sessionKey("city-1", phone)])
}

func apiCallFlow() entity.FlowDefinition {
	return entity.FlowDefinition{
		ID:          "flow-api",
		CompanyID:   "city-1",
		FlowName:    "Escalation",
		FlowType:    entity.FlowCustom,
		IsActive:    true,
		Version:     1,
		StartStepID: "notify",
		Triggers: []entity.FlowTrigger{
			{TriggerType: entity.TriggerKeyword, TriggerValue: "escalate", StartStepID: "notify"},
		},
		Steps: []entity.FlowStep{
			{
				StepID:   "notify",
				StepType: entity.StepAPICall,
				APIConfig: &entity.APIConfig{
					Method:         "POST",
					Endpoint:       "https://upstream.example/escalations",
					SaveResponseTo: "ticket",
					NextStepID:     "done",
				},
			},
			{StepID: "done", StepType: entity.StepMessage, MessageText: "Escalated: {ticket}"},
		},
	}
}

func TestEngine_APICallChain(t *testing.T) {
	fx := newFixture(t, apiCallFlow())
	fx.invoker.result = "TKT-99"

	intents := fx.handle(t, &entity.InboundEvent{Phone: "919900112233", Kind: entity.EventText, Text: "escalate"})

	assert.Equal(t, 1, fx.invoker.calls)
	require.Len(t, intents, 1)
	assert.Equal(t, "Escalated: TKT-99", intents[0].Text)
}

func TestEngine_APICallFailureFallsBack(t *testing.T) {
	fx := newFixture(t, apiCallFlow())
	fx.invoker.err = fmt.Errorf("upstream down")

	intents := fx.handle(t, &entity.InboundEvent{Phone: "919900112233", Kind: entity.EventText, Text: "escalate"})

	require.Len(t, intents, 1)
	assert.Equal(t, entity.DefaultFallbackMessage, intents[0].Text)
	assert.Nil(t, fx.sessions.sessions[sessionKey("city-1", "919900112233")])
}

func trackingFlow() entity.FlowDefinition {
	return entity.FlowDefinition{
		ID:          "flow-track",
		CompanyID:   "city-1",
		FlowName:    "Track status",
		FlowType:    entity.FlowTracking,
		IsActive:    true,
		Version:     1,
		StartStepID: "ask_ref",
		Triggers: []entity.FlowTrigger{
			{TriggerType: entity.TriggerKeyword, TriggerValue: "track", StartStepID: "ask_ref"},
		},
		Steps: []entity.FlowStep{
			{
				StepID:      "ask_ref",
				StepType:    entity.StepInput,
				MessageText: "Send your reference number.",
				InputConfig: &entity.InputConfig{
					InputType:   entity.InputText,
					SaveToField: "refNumber",
					NextStepID:  "track_result_1",
				},
			},
			{
				StepID:      "track_result_1",
				StepType:    entity.StepMessage,
				MessageText: "{recordType} {refNumber}: {status} (assigned: {assignedTo})",
			},
		},
	}
}

func TestEngine_TrackingLooksUpRecord(t *testing.T) {
	fx := newFixture(t, trackingFlow())
	fx.records.grievances = append(fx.records.grievances, entity.Grievance{
		CompanyID:   "city-1",
		GrievanceID: "GRV00000042",
		Status:      entity.GrievanceInProgress,
		AssignedTo:  "Ward Officer",
	})
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "track"})
	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "grv00000042"})

	require.Len(t, intents, 1)
	assert.Equal(t, "Grievance GRV00000042: in_progress (assigned: Ward Officer)", intents[0].Text)
}

func TestEngine_TrackingUnknownRefIsNotFound(t *testing.T) {
	fx := newFixture(t, trackingFlow())
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "track"})
	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "GRV99999999"})

	require.Len(t, intents, 1)
	assert.Contains(t, intents[0].Text, "Not Found")
}

func departmentListFlow() entity.FlowDefinition {
	return entity.FlowDefinition{
		ID:          "flow-dept",
		CompanyID:   "city-1",
		FlowName:    "Department pick",
		FlowType:    entity.FlowGrievance,
		IsActive:    true,
		Version:     1,
		StartStepID: "pick_dept",
		Triggers: []entity.FlowTrigger{
			{TriggerType: entity.TriggerKeyword, TriggerValue: "departments", StartStepID: "pick_dept"},
		},
		Steps: []entity.FlowStep{
			{
				StepID:      "pick_dept",
				StepType:    entity.StepList,
				MessageText: "Choose a department",
				ListConfig: &entity.ListConfig{
					ListSource: entity.ListSourceDepartments,
					ButtonText: "Departments",
				},
				NextStepID: "dept_done",
			},
			{StepID: "dept_done", StepType: entity.StepMessage, MessageText: "Routed to {department}."},
		},
	}
}

func TestEngine_DynamicDepartmentList(t *testing.T) {
	fx := newFixture(t, departmentListFlow())
	fx.departments.departments = []entity.Department{
		{ID: "d-water", CompanyID: "city-1", Name: "Water Supply", IsActive: true},
		{ID: "d-roads", CompanyID: "city-1", Name: "Roads", IsActive: true},
	}
	phone := "919900112233"

	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "departments"})
	require.Len(t, intents, 1)
	require.Len(t, intents[0].Sections, 1)
	require.Len(t, intents[0].Sections[0].Rows, 2)
	assert.Equal(t, "grv_dept_d-water", intents[0].Sections[0].Rows[0].ID)

	intents = fx.handle(t, &entity.InboundEvent{
		Phone: phone, Kind: entity.EventListSelection,
		Payload: "grv_dept_d-water", Text: "Water Supply",
	})
	require.Len(t, intents, 1)
	assert.Equal(t, "Routed to Water Supply.", intents[0].Text)
}

func TestEngine_ButtonRePromptUsesFlowFallback(t *testing.T) {
	f := grievanceFlow()
	f.Settings.ErrorFallbackMessage = "कृपया दिए गए विकल्पों में से चुनें।"
	fx := newFixture(t, f)
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "complaint"})

	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "what?"})
	require.NotEmpty(t, intents)
	// The hint is the flow's own fallback, not engine-baked English.
	assert.Equal(t, "कृपया दिए गए विकल्पों में से चुनें।", intents[0].Text)
	// The step is re-rendered after the hint.
	require.Len(t, intents, 2)
	assert.Equal(t, entity.IntentButtons, intents[1].Kind)
}

func TestEngine_ListRePromptUsesFlowFallback(t *testing.T) {
	f := departmentListFlow()
	f.Settings.ErrorFallbackMessage = "Kripya yadi se vibhag chunen."
	fx := newFixture(t, f)
	fx.departments.departments = []entity.Department{
		{ID: "d-water", CompanyID: "city-1", Name: "Water Supply", IsActive: true},
	}
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "departments"})

	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventListSelection, Payload: "bogus_row"})
	require.NotEmpty(t, intents)
	assert.Equal(t, "Kripya yadi se vibhag chunen.", intents[0].Text)
}

func TestEngine_APICallRetriesExhaustBudget(t *testing.T) {
	f := apiCallFlow()
	f.Settings.MaxRetries = 3
	fx := newFixture(t, f)
	fx.invoker.err = fmt.Errorf("upstream down")

	intents := fx.handle(t, &entity.InboundEvent{Phone: "919900112233", Kind: entity.EventText, Text: "escalate"})

	// Every attempt in the budget runs before the fallback goes out.
	assert.Equal(t, 3, fx.invoker.calls)
	require.Len(t, intents, 1)
	assert.Equal(t, entity.DefaultFallbackMessage, intents[0].Text)
	assert.Nil(t, fx.sessions.sessions[sessionKey("city-1", "919900112233")])
}

func TestEngine_InputWithoutDestinationFailsSession(t *testing.T) {
	f := grievanceFlow()
	f.Steps[1].InputConfig.NextStepID = ""
	fx := newFixture(t, f)
	phone := "919900112233"

	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "complaint"})
	fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventButtonClick, Payload: "new"})

	// Valid input with nowhere to route is terminal, not a retry loop.
	intents := fx.handle(t, &entity.InboundEvent{Phone: phone, Kind: entity.EventText, Text: "Streetlight broken on Main Rd"})
	require.Len(t, intents, 1)
	assert.Equal(t, entity.DefaultFallbackMessage, intents[0].Text)
	assert.Nil(t, fx.sessions.sessions[sessionKey("city-1", phone)])
	assert.Empty(t, fx.records.grievances)
}
