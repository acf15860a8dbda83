package flow

import (
	"fmt"

	"SevaFlow/entity"
)

// Row ids of dynamic department lists carry this prefix so the routing
// side can recognize a department pick and resolve it back to a record.
const DepartmentRowPrefix = "grv_dept_"

// Renderer turns flow steps into outbound intents: placeholder
// interpolation, platform truncation, and dynamic list materialization.
type Renderer struct {
	interp      *Interpolator
	departments DepartmentSource
}

func NewRenderer(interp *Interpolator, departments DepartmentSource) *Renderer {
	return &Renderer{interp: interp, departments: departments}
}

// Render produces the outbound intent for entering a step. Condition and
// api_call steps render nothing; they advance silently. Text is truncated
// after interpolation since placeholder values can blow past authored
// lengths.
func (r *Renderer) Render(step *entity.FlowStep, session *entity.Session) (*entity.OutboundIntent, error) {
	text := Truncate(r.interp.Apply(step.MessageText, session.Data), MaxBodyLength)

	switch step.StepType {
	case entity.StepMessage, entity.StepInput, entity.StepMedia:
		if text == "" {
			return nil, nil
		}
		return &entity.OutboundIntent{
			Phone: session.Phone,
			Kind:  entity.IntentText,
			Text:  text,
		}, nil

	case entity.StepButtons:
		intent := &entity.OutboundIntent{
			Phone: session.Phone,
			Kind:  entity.IntentButtons,
			Text:  text,
		}
		for i, b := range step.Buttons {
			if i >= MaxButtons {
				break
			}
			intent.Buttons = append(intent.Buttons, entity.OutboundButton{
				ID:    Truncate(b.ID, MaxIDLength),
				Title: Truncate(r.interp.Apply(b.Title, session.Data), MaxButtonTitle),
			})
		}
		return intent, nil

	case entity.StepList:
		return r.renderList(step, session, text)

	case entity.StepCondition, entity.StepAPICall:
		return nil, nil
	}

	return nil, fmt.Errorf("unknown step type %q", step.StepType)
}

func (r *Renderer) renderList(step *entity.FlowStep, session *entity.Session, text string) (*entity.OutboundIntent, error) {
	cfg := step.ListConfig
	if cfg == nil {
		return nil, fmt.Errorf("list step %s has no config", step.StepID)
	}

	intent := &entity.OutboundIntent{
		Phone:      session.Phone,
		Kind:       entity.IntentList,
		Text:       text,
		ButtonText: Truncate(cfg.ButtonText, MaxListButtonText),
	}
	if intent.ButtonText == "" {
		intent.ButtonText = "Select"
	}

	if cfg.ListSource == entity.ListSourceDepartments {
		section, err := r.departmentSection(session.CompanyID)
		if err != nil {
			return nil, err
		}
		intent.Sections = []entity.OutboundSection{section}
		return intent, nil
	}

	for i, section := range cfg.Sections {
		if i >= MaxSections {
			break
		}
		out := entity.OutboundSection{Title: Truncate(section.Title, MaxSectionTitle)}
		for j, row := range section.Rows {
			if j >= MaxRowsPerSection {
				break
			}
			out.Rows = append(out.Rows, entity.OutboundRow{
				ID:          Truncate(row.ID, MaxIDLength),
				Title:       Truncate(r.interp.Apply(row.Title, session.Data), MaxRowTitle),
				Description: Truncate(r.interp.Apply(row.Description, session.Data), MaxRowDescription),
			})
		}
		intent.Sections = append(intent.Sections, out)
	}
	return intent, nil
}

func (r *Renderer) departmentSection(companyID string) (entity.OutboundSection, error) {
	section := entity.OutboundSection{Title: "Departments"}

	departments, err := r.departments.FindActiveDepartments(companyID)
	if err != nil {
		return section, fmt.Errorf("load departments: %w", err)
	}

	for i, d := range departments {
		if i >= MaxRowsPerSection {
			break
		}
		section.Rows = append(section.Rows, entity.OutboundRow{
			ID:          DepartmentRowPrefix + d.ID,
			Title:       Truncate(d.Name, MaxRowTitle),
			Description: Truncate(d.Description, MaxRowDescription),
		})
	}
	return section, nil
}
