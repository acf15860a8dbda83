package flow

import "SevaFlow/entity"

// TriggerMatch is a resolved entry point into a flow.
type TriggerMatch struct {
	Flow    *entity.FlowDefinition
	Trigger *entity.FlowTrigger
}

// MatchTrigger scans the tenant's active flows for a trigger matching the
// event. Keyword triggers compare case-insensitively against the full
// normalized text; click and selection triggers compare the payload id.
// Scan order is the store's flow order, first match wins, so routing is
// deterministic for a given flow set.
func MatchTrigger(flows []entity.FlowDefinition, event *entity.InboundEvent) *TriggerMatch {
	text := NormalizeText(event.Text)

	for i := range flows {
		f := &flows[i]
		for j := range f.Triggers {
			t := &f.Triggers[j]
			if triggerHits(t, event, text) {
				return &TriggerMatch{Flow: f, Trigger: t}
			}
		}
	}
	return nil
}

func triggerHits(t *entity.FlowTrigger, event *entity.InboundEvent, text string) bool {
	switch t.TriggerType {
	case entity.TriggerKeyword:
		return event.Kind == entity.EventText && text == NormalizeText(t.TriggerValue)
	case entity.TriggerButtonClick:
		return event.Kind == entity.EventButtonClick && event.Payload == t.TriggerValue
	case entity.TriggerMenuSelection:
		return event.Kind == entity.EventListSelection && event.Payload == t.TriggerValue
	}
	// Webhook triggers are fired by the API, never by citizen messages.
	return false
}
