package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"SevaFlow/entity"
	"SevaFlow/internal/lib/sl"
	"SevaFlow/internal/metrics"
)

// Engine drives flow definitions against inbound citizen events. It is a
// pure interpreter: all side effects go through the injected stores and
// every reply comes back as an intent for the caller to send.
type Engine struct {
	flows    FlowSource
	sessions SessionStore
	renderer *Renderer
	recorder *Recorder
	invoker  ActionInvoker
	log      *slog.Logger

	// Ceiling on silent auto-transitions per event; a condition cycle in
	// an authored flow must not spin the interpreter forever.
	maxTransitions int
}

func NewEngine(
	flows FlowSource,
	sessions SessionStore,
	renderer *Renderer,
	recorder *Recorder,
	invoker ActionInvoker,
	maxTransitions int,
	log *slog.Logger,
) *Engine {
	if maxTransitions <= 0 {
		maxTransitions = 20
	}
	return &Engine{
		flows:          flows,
		sessions:       sessions,
		renderer:       renderer,
		recorder:       recorder,
		invoker:        invoker,
		maxTransitions: maxTransitions,
		log:            log.With(sl.Module("flow.engine")),
	}
}

// HandleInbound processes one citizen event and returns the replies to
// send. ErrNoTriggerMatched means nothing applies and the caller should
// answer with the tenant help message. ErrStaleSession means a concurrent
// duplicate already handled this message and nothing should be sent.
func (e *Engine) HandleInbound(ctx context.Context, company *entity.Company, event *entity.InboundEvent) ([]entity.OutboundIntent, error) {
	metrics.InboundEvents.WithLabelValues(event.Kind).Inc()

	logger := e.log.With(
		slog.String("company_id", company.ID),
		slog.String("phone", event.Phone),
	)

	session, err := e.sessions.LoadSession(company.ID, event.Phone)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	now := time.Now()
	if session != nil && (session.ExpiredAt(now) || session.Status != entity.SessionActive) {
		logger.Debug("discarding stale session", slog.String("status", session.Status))
		if err := e.sessions.DeleteSession(company.ID, event.Phone); err != nil {
			return nil, fmt.Errorf("drop expired session: %w", err)
		}
		session = nil
	}

	// Triggers outrank active sessions so a citizen can always restart
	// with a keyword instead of being stuck mid-flow.
	flows, err := e.flows.FindActiveFlowsByCompany(company.ID)
	if err != nil {
		return nil, fmt.Errorf("load flows: %w", err)
	}
	if match := MatchTrigger(flows, event); match != nil {
		return e.startFlow(ctx, logger, company, event, match)
	}

	if session == nil {
		return nil, ErrNoTriggerMatched
	}

	return e.continueFlow(ctx, logger, company, event, session)
}

func (e *Engine) startFlow(ctx context.Context, logger *slog.Logger, company *entity.Company, event *entity.InboundEvent, match *TriggerMatch) ([]entity.OutboundIntent, error) {
	f := match.Flow
	startStep := f.StartStepFor(match.Trigger)
	if f.Step(startStep) == nil {
		return nil, fmt.Errorf("flow %s: start step %q not found", f.ID, startStep)
	}

	logger.Info("starting flow",
		slog.String("flow_id", f.ID),
		slog.String("flow_type", f.FlowType),
		slog.String("start_step", startStep),
	)
	metrics.TriggerMatches.WithLabelValues(f.FlowType).Inc()

	if err := e.flows.IncrementFlowUsage(f.ID); err != nil {
		logger.Warn("usage counter update failed", sl.Err(err))
	}

	now := time.Now()
	session := &entity.Session{
		CompanyID:   company.ID,
		Phone:       event.Phone,
		FlowID:      f.ID,
		FlowVersion: f.Version,
		CurrentStep: startStep,
		Status:      entity.SessionActive,
		Data:        map[string]string{},
		Language:    f.DefaultLanguage,
		StartedAt:   now,
	}
	session.Touch(now, f.Settings.SessionTimeout())
	if company.Name != "" {
		session.Set("companyName", company.Name)
	}

	intents, err := e.enterChain(ctx, logger, f, session, startStep)
	if err != nil {
		return e.failSession(logger, f, session, err)
	}

	if session.Status == entity.SessionCompleted {
		return intents, nil
	}
	if err := e.sessions.PutSession(session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return intents, nil
}

func (e *Engine) continueFlow(ctx context.Context, logger *slog.Logger, company *entity.Company, event *entity.InboundEvent, session *entity.Session) ([]entity.OutboundIntent, error) {
	f, err := e.flows.FindFlowByID(company.ID, session.FlowID)
	if err != nil {
		return nil, fmt.Errorf("load flow: %w", err)
	}
	if f == nil {
		// Flow was deleted under a running session. Drop the session and
		// treat the message as unroutable.
		if err := e.sessions.DeleteSession(company.ID, event.Phone); err != nil {
			return nil, fmt.Errorf("drop orphaned session: %w", err)
		}
		return nil, ErrNoTriggerMatched
	}

	step := f.Step(session.CurrentStep)
	if step == nil {
		return e.failSession(logger, f, session, fmt.Errorf("current step %q not found", session.CurrentStep))
	}

	if lang := LanguageForClick(event.Payload); lang != "" {
		session.Language = f.Language(lang)
		session.Set("language", session.Language)
	}

	expectStep := session.CurrentStep
	nextStep, retryMsg, routeErr := e.routeInput(f, step, session, event)
	if routeErr != nil {
		return e.failSession(logger, f, session, routeErr)
	}

	if nextStep == "" {
		return e.retry(logger, f, session, step, expectStep, retryMsg)
	}
	if f.Step(nextStep) == nil {
		return e.failSession(logger, f, session, fmt.Errorf("next step %q not found", nextStep))
	}

	session.CurrentStep = nextStep
	session.RetryCount = 0
	session.Touch(time.Now(), f.Settings.SessionTimeout())

	// The compare-and-swap on the previous step decides which delivery of
	// a duplicated message owns the transition. Losers drop their output;
	// records are only minted after this point.
	won, err := e.sessions.AdvanceSession(session, expectStep)
	if err != nil {
		return nil, fmt.Errorf("advance session: %w", err)
	}
	if !won {
		metrics.StaleSessions.Inc()
		logger.Debug("lost session advance", slog.String("step", expectStep))
		return nil, ErrStaleSession
	}

	if minted, err := e.recorder.MintOnTransition(session, expectStep, nextStep, event.Payload); err != nil {
		return e.failSession(logger, f, session, err)
	} else if minted {
		logger.Info("record minted",
			slog.String("flow_id", f.ID),
			slog.String("ref", session.Data["refNumber"]),
		)
	}

	intents, err := e.enterChain(ctx, logger, f, session, nextStep)
	if err != nil {
		return e.failSession(logger, f, session, err)
	}

	if session.Status == entity.SessionCompleted {
		return intents, nil
	}
	if err := e.sessions.PutSession(session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return intents, nil
}

// routeInput resolves which step the event moves the session to. An empty
// step id means the input did not route; retryMsg then carries the text to
// prepend to the re-prompt. A non-nil error is an authoring defect that
// must end the session instead of retrying.
func (e *Engine) routeInput(f *entity.FlowDefinition, step *entity.FlowStep, session *entity.Session, event *entity.InboundEvent) (nextStep, retryMsg string, err error) {
	// Authored expected responses outrank the per-type defaults.
	if next := matchExpected(step.ExpectedResponses, event); next != "" {
		return next, "", nil
	}

	switch step.StepType {
	case entity.StepButtons:
		if event.Kind == entity.EventButtonClick {
			for _, b := range step.Buttons {
				if b.ID == event.Payload {
					if event.Text != "" {
						session.Set("lastChoice", event.Text)
					}
					if b.NextStepID != "" {
						return b.NextStepID, "", nil
					}
					return step.NextStepID, "", nil
				}
			}
		}
		return "", f.Settings.Fallback(), nil

	case entity.StepList:
		if event.Kind == entity.EventListSelection {
			if dept, ok := strings.CutPrefix(event.Payload, DepartmentRowPrefix); ok {
				session.Set("departmentId", dept)
				if event.Text != "" {
					session.Set("category", event.Text)
					session.Set("department", event.Text)
				}
				return step.NextStepID, "", nil
			}
			if step.ListConfig != nil {
				for _, section := range step.ListConfig.Sections {
					for _, row := range section.Rows {
						if row.ID == event.Payload {
							if event.Text != "" {
								session.Set("lastChoice", event.Text)
							}
							if row.NextStepID != "" {
								return row.NextStepID, "", nil
							}
							return step.NextStepID, "", nil
						}
					}
				}
			}
		}
		return "", f.Settings.Fallback(), nil

	case entity.StepInput:
		if event.Kind != entity.EventText {
			return "", "Please reply with text.", nil
		}
		if err := ValidateInput(step.InputConfig, event.Text); err != nil {
			return "", err.Error(), nil
		}
		next := step.NextStepID
		if cfg := step.InputConfig; cfg != nil {
			if cfg.SaveToField != "" {
				session.Set(cfg.SaveToField, strings.TrimSpace(event.Text))
			}
			if cfg.NextStepID != "" {
				next = cfg.NextStepID
			}
		}
		if next == "" {
			// Valid input with nowhere to go is a broken flow, not a
			// citizen mistake; re-prompting would loop forever.
			if len(step.ExpectedResponses) > 0 {
				return "", "Sorry, I did not understand that.", nil
			}
			return "", "", fmt.Errorf("input step %q has no destination", step.StepID)
		}
		return next, "", nil

	case entity.StepMedia:
		cfg := step.MediaConfig
		if event.Kind == entity.EventImage || event.Kind == entity.EventDocument {
			if cfg != nil && cfg.SaveToField != "" {
				session.Set(cfg.SaveToField, event.MediaID)
			} else {
				session.Set("mediaId", event.MediaID)
			}
			if cfg != nil && cfg.NextStepID != "" {
				return cfg.NextStepID, "", nil
			}
			return step.NextStepID, "", nil
		}
		if cfg != nil && cfg.Optional && event.Kind == entity.EventText && IsSkipWord(event.Text) {
			if cfg.NextStepID != "" {
				return cfg.NextStepID, "", nil
			}
			return step.NextStepID, "", nil
		}
		return "", "Please send a photo or document, or reply 'skip'.", nil

	case entity.StepMessage:
		// A message step only waits when it has expected responses; none
		// matched, so re-prompt.
		if len(step.ExpectedResponses) > 0 {
			return "", "Sorry, I did not understand that.", nil
		}
		return step.NextStepID, "", nil
	}

	return "", "Sorry, I did not understand that.", nil
}

func matchExpected(responses []entity.ExpectedResponse, event *entity.InboundEvent) string {
	text := NormalizeText(event.Text)
	for _, er := range responses {
		switch er.Type {
		case entity.MatchText:
			if event.Kind == entity.EventText && text == NormalizeText(er.Value) {
				return er.NextStepID
			}
		case entity.MatchButtonClick:
			if event.Kind == entity.EventButtonClick && event.Payload == er.Value {
				return er.NextStepID
			}
		case entity.MatchListSelection:
			if event.Kind == entity.EventListSelection && event.Payload == er.Value {
				return er.NextStepID
			}
		}
	}
	// Wildcards run last regardless of authored order.
	for _, er := range responses {
		if er.Type == entity.MatchAny {
			return er.NextStepID
		}
	}
	return ""
}

// enterChain renders the entered step and follows silent transitions:
// condition branches, api_call invocations, tracking lookups and message
// steps with a default next. It stops at the first step that waits for
// input, or completes the session at a terminal step.
func (e *Engine) enterChain(ctx context.Context, logger *slog.Logger, f *entity.FlowDefinition, session *entity.Session, stepID string) ([]entity.OutboundIntent, error) {
	var intents []entity.OutboundIntent

	for i := 0; i < e.maxTransitions; i++ {
		step := f.Step(stepID)
		if step == nil {
			return intents, fmt.Errorf("step %q not found", stepID)
		}
		session.CurrentStep = stepID

		if IsTrackingStep(stepID) {
			if err := e.recorder.ResolveTracking(session); err != nil {
				return intents, err
			}
		}

		switch step.StepType {
		case entity.StepCondition:
			if step.ConditionConfig == nil {
				return intents, fmt.Errorf("condition step %q has no config", stepID)
			}
			if EvaluateCondition(step.ConditionConfig, session.Data) {
				stepID = step.ConditionConfig.TrueStepID
			} else {
				stepID = step.ConditionConfig.FalseStepID
			}
			continue

		case entity.StepAPICall:
			if step.APIConfig == nil {
				return intents, fmt.Errorf("api_call step %q has no config", stepID)
			}
			result, err := e.invokeWithRetry(ctx, logger, f, step, session)
			if err != nil {
				return intents, fmt.Errorf("step %q: %w", stepID, err)
			}
			if step.APIConfig.SaveResponseTo != "" {
				session.Set(step.APIConfig.SaveResponseTo, result)
			}
			stepID = step.APIConfig.NextStepID
			if stepID == "" {
				return intents, e.complete(logger, session)
			}
			continue
		}

		intent, err := e.renderer.Render(step, session)
		if err != nil {
			return intents, err
		}
		if intent != nil {
			metrics.OutboundIntents.WithLabelValues(intent.Kind).Inc()
			intents = append(intents, *intent)
		}

		if waitsForInput(step) {
			return intents, nil
		}
		if step.NextStepID == "" {
			return intents, e.complete(logger, session)
		}
		stepID = step.NextStepID
	}

	return intents, fmt.Errorf("transition limit reached at step %q", session.CurrentStep)
}

// invokeWithRetry runs an api_call step, burning the flow's retry budget
// on transient failures before giving up.
func (e *Engine) invokeWithRetry(ctx context.Context, logger *slog.Logger, f *entity.FlowDefinition, step *entity.FlowStep, session *entity.Session) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= f.Settings.RetryLimit(); attempt++ {
		result, err := e.invoker.Invoke(ctx, *step.APIConfig, session.Data)
		if err == nil {
			return result, nil
		}
		lastErr = err
		metrics.ActionFailures.Inc()
		logger.Warn("action attempt failed",
			slog.String("step", step.StepID),
			slog.Int("attempt", attempt),
			sl.Err(err),
		)
	}
	return "", lastErr
}

func waitsForInput(step *entity.FlowStep) bool {
	switch step.StepType {
	case entity.StepButtons, entity.StepList, entity.StepInput, entity.StepMedia:
		return true
	case entity.StepMessage:
		return len(step.ExpectedResponses) > 0
	}
	return false
}

func (e *Engine) complete(logger *slog.Logger, session *entity.Session) error {
	session.Status = entity.SessionCompleted
	logger.Info("flow completed",
		slog.String("flow_id", session.FlowID),
		slog.String("final_step", session.CurrentStep),
	)
	if err := e.sessions.DeleteSession(session.CompanyID, session.Phone); err != nil {
		return fmt.Errorf("delete completed session: %w", err)
	}
	return nil
}

// retry re-prompts the current step. Exhausting the flow's retry budget
// ends the session with the fallback message.
func (e *Engine) retry(logger *slog.Logger, f *entity.FlowDefinition, session *entity.Session, step *entity.FlowStep, expectStep, retryMsg string) ([]entity.OutboundIntent, error) {
	session.RetryCount++
	session.Touch(time.Now(), f.Settings.SessionTimeout())

	if session.RetryCount >= f.Settings.RetryLimit() {
		metrics.StepErrors.Inc()
		logger.Warn("retry budget exhausted",
			slog.String("flow_id", f.ID),
			slog.String("step", expectStep),
		)
		session.Status = entity.SessionError
		if err := e.sessions.DeleteSession(session.CompanyID, session.Phone); err != nil {
			return nil, fmt.Errorf("delete failed session: %w", err)
		}
		return []entity.OutboundIntent{{
			Phone: session.Phone,
			Kind:  entity.IntentText,
			Text:  f.Settings.Fallback(),
		}}, nil
	}

	won, err := e.sessions.AdvanceSession(session, expectStep)
	if err != nil {
		return nil, fmt.Errorf("save retry: %w", err)
	}
	if !won {
		metrics.StaleSessions.Inc()
		return nil, ErrStaleSession
	}

	intent, err := e.renderer.Render(step, session)
	if err != nil {
		return nil, err
	}

	intents := []entity.OutboundIntent{{
		Phone: session.Phone,
		Kind:  entity.IntentText,
		Text:  retryMsg,
	}}
	if intent != nil {
		metrics.OutboundIntents.WithLabelValues(intent.Kind).Inc()
		intents = append(intents, *intent)
	}
	return intents, nil
}

// failSession ends the session on an internal error and degrades to the
// flow's fallback message instead of silence.
func (e *Engine) failSession(logger *slog.Logger, f *entity.FlowDefinition, session *entity.Session, cause error) ([]entity.OutboundIntent, error) {
	metrics.StepErrors.Inc()
	logger.Error("flow execution failed",
		slog.String("flow_id", session.FlowID),
		slog.String("step", session.CurrentStep),
		sl.Err(cause),
	)
	session.Status = entity.SessionError
	if err := e.sessions.DeleteSession(session.CompanyID, session.Phone); err != nil {
		logger.Error("delete errored session", sl.Err(err))
	}
	return []entity.OutboundIntent{{
		Phone: session.Phone,
		Kind:  entity.IntentText,
		Text:  f.Settings.Fallback(),
	}}, nil
}
