package flow

import (
	"fmt"
	"regexp"

	"SevaFlow/entity"
)

// Issue is one authoring defect found in a flow definition.
type Issue struct {
	StepID  string `json:"stepId,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.StepID == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.StepID, i.Message)
}

// CheckFlow validates a flow definition before it is persisted: structural
// platform limits, reference integrity of the step graph, and per-type
// config sanity. An empty result means the flow is publishable. Run-time
// never trusts these checks alone; rendering still truncates and missing
// steps still fall back, because older flow versions predate the checker.
func CheckFlow(f *entity.FlowDefinition) []Issue {
	var issues []Issue
	add := func(stepID, format string, args ...any) {
		issues = append(issues, Issue{StepID: stepID, Message: fmt.Sprintf(format, args...)})
	}

	if len(f.Steps) == 0 {
		add("", "flow has no steps")
		return issues
	}
	if len(f.Triggers) == 0 {
		add("", "flow has no triggers")
	}

	steps := make(map[string]*entity.FlowStep, len(f.Steps))
	for i := range f.Steps {
		s := &f.Steps[i]
		if s.StepID == "" {
			add("", "step %d has no id", i)
			continue
		}
		if _, dup := steps[s.StepID]; dup {
			add(s.StepID, "duplicate step id")
			continue
		}
		steps[s.StepID] = s
	}

	ref := func(stepID, field, target string) {
		if target == "" {
			return
		}
		if _, ok := steps[target]; !ok {
			add(stepID, "%s references unknown step %q", field, target)
		}
	}

	if f.StartStepID == "" {
		add("", "flow has no start step")
	} else {
		ref("", "startStepId", f.StartStepID)
	}

	for i := range f.Triggers {
		t := &f.Triggers[i]
		if t.TriggerValue == "" {
			add("", "trigger %d has no value", i)
		}
		ref("", fmt.Sprintf("trigger %d startStepId", i), t.StartStepID)
	}

	for id, s := range steps {
		checkStep(id, s, ref, add)
	}

	return issues
}

func checkStep(id string, s *entity.FlowStep, ref func(stepID, field, target string), add func(stepID, format string, args ...any)) {
	ref(id, "nextStepId", s.NextStepID)
	for i, er := range s.ExpectedResponses {
		ref(id, fmt.Sprintf("expectedResponses[%d]", i), er.NextStepID)
		if er.Type != entity.MatchAny && er.Value == "" {
			add(id, "expectedResponses[%d] has no value", i)
		}
	}

	switch s.StepType {
	case entity.StepMessage:
		if s.MessageText == "" {
			add(id, "message step has no text")
		}

	case entity.StepButtons:
		if len(s.Buttons) == 0 {
			add(id, "buttons step has no buttons")
		}
		if len(s.Buttons) > MaxButtons {
			add(id, "too many buttons: %d, max %d", len(s.Buttons), MaxButtons)
		}
		for i, b := range s.Buttons {
			if b.ID == "" || b.Title == "" {
				add(id, "button %d needs id and title", i)
			}
			if len([]rune(b.Title)) > MaxButtonTitle {
				add(id, "button %q title exceeds %d chars", b.ID, MaxButtonTitle)
			}
			ref(id, fmt.Sprintf("button %q", b.ID), b.NextStepID)
		}

	case entity.StepList:
		checkListStep(id, s, ref, add)

	case entity.StepInput:
		if s.InputConfig == nil {
			add(id, "input step has no inputConfig")
			return
		}
		if s.InputConfig.SaveToField == "" {
			add(id, "input step has no saveToField")
		}
		if s.InputConfig.NextStepID == "" && s.NextStepID == "" && len(s.ExpectedResponses) == 0 {
			add(id, "input step has no destination")
		}
		ref(id, "inputConfig.nextStepId", s.InputConfig.NextStepID)
		if v := s.InputConfig.Validation; v != nil && v.Pattern != "" {
			if _, err := regexp.Compile(v.Pattern); err != nil {
				add(id, "validation pattern does not compile: %v", err)
			}
		}

	case entity.StepMedia:
		if s.MediaConfig == nil {
			add(id, "media step has no mediaConfig")
			return
		}
		ref(id, "mediaConfig.nextStepId", s.MediaConfig.NextStepID)

	case entity.StepCondition:
		if s.ConditionConfig == nil {
			add(id, "condition step has no conditionConfig")
			return
		}
		c := s.ConditionConfig
		if c.Field == "" {
			add(id, "condition step has no field")
		}
		if c.TrueStepID == "" || c.FalseStepID == "" {
			add(id, "condition step needs both branches")
		}
		ref(id, "conditionConfig.trueStepId", c.TrueStepID)
		ref(id, "conditionConfig.falseStepId", c.FalseStepID)

	case entity.StepAPICall:
		if s.APIConfig == nil {
			add(id, "api_call step has no apiConfig")
			return
		}
		if s.APIConfig.Method == "" || s.APIConfig.Endpoint == "" {
			add(id, "api_call step needs method and endpoint")
		}
		ref(id, "apiConfig.nextStepId", s.APIConfig.NextStepID)

	default:
		add(id, "unknown step type %q", s.StepType)
	}
}

func checkListStep(id string, s *entity.FlowStep, ref func(stepID, field, target string), add func(stepID, format string, args ...any)) {
	cfg := s.ListConfig
	if cfg == nil {
		add(id, "list step has no listConfig")
		return
	}
	if len([]rune(cfg.ButtonText)) > MaxListButtonText {
		add(id, "list button text exceeds %d chars", MaxListButtonText)
	}

	// Dynamic lists materialize rows at run time; there is nothing static
	// to check beyond the source name.
	if cfg.ListSource != "" && cfg.ListSource != entity.ListSourceManual {
		if cfg.ListSource != entity.ListSourceDepartments {
			add(id, "unknown list source %q", cfg.ListSource)
		}
		return
	}

	if len(cfg.Sections) == 0 {
		add(id, "list step has no sections")
	}
	if len(cfg.Sections) > MaxSections {
		add(id, "too many sections: %d, max %d", len(cfg.Sections), MaxSections)
	}
	for si, section := range cfg.Sections {
		if len([]rune(section.Title)) > MaxSectionTitle {
			add(id, "section %d title exceeds %d chars", si, MaxSectionTitle)
		}
		if len(section.Rows) == 0 {
			add(id, "section %d has no rows", si)
		}
		if len(section.Rows) > MaxRowsPerSection {
			add(id, "section %d has too many rows: %d, max %d", si, len(section.Rows), MaxRowsPerSection)
		}
		for _, row := range section.Rows {
			if row.ID == "" || row.Title == "" {
				add(id, "section %d row needs id and title", si)
			}
			if len([]rune(row.Title)) > MaxRowTitle {
				add(id, "row %q title exceeds %d chars", row.ID, MaxRowTitle)
			}
			if len([]rune(row.Description)) > MaxRowDescription {
				add(id, "row %q description exceeds %d chars", row.ID, MaxRowDescription)
			}
			ref(id, fmt.Sprintf("row %q", row.ID), row.NextStepID)
		}
	}
}
