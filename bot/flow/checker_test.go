package flow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SevaFlow/entity"
)

func validFlow() *entity.FlowDefinition {
	return &entity.FlowDefinition{
		ID:          "flow-1",
		CompanyID:   "city-1",
		FlowName:    "Grievance intake",
		FlowType:    entity.FlowGrievance,
		StartStepID: "welcome",
		Triggers: []entity.FlowTrigger{
			{TriggerType: entity.TriggerKeyword, TriggerValue: "complaint", StartStepID: "welcome"},
		},
		Steps: []entity.FlowStep{
			{
				StepID:      "welcome",
				StepType:    entity.StepButtons,
				MessageText: "What would you like to do?",
				Buttons: []entity.StepButton{
					{ID: "new", Title: "New complaint", NextStepID: "ask_desc"},
					{ID: "cancel", Title: "Cancel"},
				},
				NextStepID: "ask_desc",
			},
			{
				StepID:   "ask_desc",
				StepType: entity.StepInput,
				InputConfig: &entity.InputConfig{
					InputType:   entity.InputText,
					SaveToField: "description",
					NextStepID:  "done",
				},
				MessageText: "Describe the issue.",
			},
			{
				StepID:      "done",
				StepType:    entity.StepMessage,
				MessageText: "Thank you.",
			},
		},
	}
}

func messagesOf(issues []Issue) string {
	var parts []string
	for _, i := range issues {
		parts = append(parts, i.String())
	}
	return strings.Join(parts, "; ")
}

func TestCheckFlow_ValidFlowPasses(t *testing.T) {
	issues := CheckFlow(validFlow())
	assert.Empty(t, issues, messagesOf(issues))
}

func TestCheckFlow_DanglingReference(t *testing.T) {
	f := validFlow()
	f.Steps[1].InputConfig.NextStepID = "missing"

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), `unknown step "missing"`)
}

func TestCheckFlow_UnknownStartStep(t *testing.T) {
	f := validFlow()
	f.StartStepID = "nope"

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), "startStepId")
}

func TestCheckFlow_TooManyButtons(t *testing.T) {
	f := validFlow()
	f.Steps[0].Buttons = []entity.StepButton{
		{ID: "a", Title: "A"}, {ID: "b", Title: "B"},
		{ID: "c", Title: "C"}, {ID: "d", Title: "D"},
	}

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), "too many buttons")
}

func TestCheckFlow_ButtonTitleTooLong(t *testing.T) {
	f := validFlow()
	f.Steps[0].Buttons[0].Title = strings.Repeat("x", MaxButtonTitle+1)

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), "title exceeds")
}

func TestCheckFlow_BadPattern(t *testing.T) {
	f := validFlow()
	f.Steps[1].InputConfig.Validation = &entity.InputValidation{Pattern: "([unclosed"}

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), "does not compile")
}

func TestCheckFlow_InputNeedsDestination(t *testing.T) {
	f := validFlow()
	f.Steps[1].InputConfig.NextStepID = ""

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), "no destination")
}

func TestCheckFlow_DuplicateStepIDs(t *testing.T) {
	f := validFlow()
	f.Steps = append(f.Steps, entity.FlowStep{
		StepID: "done", StepType: entity.StepMessage, MessageText: "again",
	})

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), "duplicate step id")
}

func TestCheckFlow_ConditionNeedsBothBranches(t *testing.T) {
	f := validFlow()
	f.Steps = append(f.Steps, entity.FlowStep{
		StepID:   "branch",
		StepType: entity.StepCondition,
		ConditionConfig: &entity.ConditionConfig{
			Field:      "departmentId",
			Operator:   entity.OpExists,
			TrueStepID: "done",
		},
	})

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), "both branches")
}

func TestCheckFlow_DynamicListSkipsSectionChecks(t *testing.T) {
	f := validFlow()
	f.Steps = append(f.Steps, entity.FlowStep{
		StepID:      "pick_dept",
		StepType:    entity.StepList,
		MessageText: "Choose a department",
		ListConfig: &entity.ListConfig{
			ListSource: entity.ListSourceDepartments,
			ButtonText: "Departments",
		},
		NextStepID: "done",
	})

	issues := CheckFlow(f)
	assert.Empty(t, issues, messagesOf(issues))
}

func TestCheckFlow_ListLimits(t *testing.T) {
	rows := make([]entity.ListRow, MaxRowsPerSection+1)
	for i := range rows {
		rows[i] = entity.ListRow{ID: strings.Repeat("r", i+1), Title: "Row"}
	}
	f := validFlow()
	f.Steps = append(f.Steps, entity.FlowStep{
		StepID:      "big_list",
		StepType:    entity.StepList,
		MessageText: "Pick",
		ListConfig: &entity.ListConfig{
			ButtonText: "Pick",
			Sections:   []entity.ListSection{{Title: "All", Rows: rows}},
		},
		NextStepID: "done",
	})

	issues := CheckFlow(f)
	require.NotEmpty(t, issues)
	assert.Contains(t, messagesOf(issues), "too many rows")
}
