package agent

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/concesa/salesagent/config"
	"github.com/concesa/salesagent/internal/catalog"
	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/providers/llm"
	"github.com/concesa/salesagent/internal/services"
	"github.com/concesa/salesagent/internal/utils"
)

// Turn lifecycle states, logged on every transition.
type turnState string

const (
	stateReceived     turnState = "received"
	statePlanning     turnState = "planning"
	stateToolDispatch turnState = "tool_dispatch"
	stateResponding   turnState = "responding"
	stateDone         turnState = "done"
	stateFailed       turnState = "failed"
)

// Warning codes surfaced on a turn result.
const (
	WarnIterationLimit = "iteration_limit"
	WarnCRMUnavailable = "crm_unavailable"
)

// FallbackReply is returned when the planning loop runs out of iterations or
// the model produces an empty final message.
const FallbackReply = "Disculpa, no logré completar tu consulta en este momento. ¿Podrías decírmelo de otra forma o darme un poco más de detalle?"

// ToolInvocation is the verbose trace of one tool call within a turn.
type ToolInvocation struct {
	Name      string  `json:"name"`
	Arguments string  `json:"arguments"`
	Result    string  `json:"result"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// TurnResult is everything one finished turn hands back to the transport.
// Usage covers this turn only; cumulative totals live on the session.
type TurnResult struct {
	SessionID    string              `json:"session_id"`
	Reply        string              `json:"reply"`
	CustomerName string              `json:"customer_name,omitempty"`
	Usage        models.SessionStats `json:"usage"`
	Warnings     []string            `json:"warnings,omitempty"`
	Tools        []ToolInvocation    `json:"tools,omitempty"`
}

// Orchestrator drives one conversation turn: plan with the model, run the
// tools it asks for, loop until a final reply, then commit session history
// and CRM effects. Session state mutates only after a reply exists, so a
// failed turn leaves no trace.
type Orchestrator struct {
	provider llm.Provider
	profile  Profile
	sessions services.SessionStore
	crm      services.CRMService
	exec     *toolExecutor

	maxIterations int
	argRetries    int
	turnTimeout   time.Duration

	log *logrus.Logger
	now func() time.Time
}

func NewOrchestrator(
	cfg *config.Config,
	profile Profile,
	provider llm.Provider,
	sessions services.SessionStore,
	crm services.CRMService,
	retriever *catalog.Retriever,
	pricing services.PricingService,
	availability services.AvailabilityService,
	schedule services.ScheduleService,
	log *logrus.Logger,
) *Orchestrator {
	now := time.Now
	return &Orchestrator{
		provider: provider,
		profile:  profile,
		sessions: sessions,
		crm:      crm,
		exec: &toolExecutor{
			retriever:    retriever,
			pricing:      pricing,
			availability: availability,
			schedule:     schedule,
			timeout:      cfg.ToolTimeout,
			now:          now,
		},
		maxIterations: cfg.MaxIterations,
		argRetries:    cfg.ArgRetries,
		turnTimeout:   cfg.TurnTimeout,
		log:           log,
		now:           now,
	}
}

// Chat handles one user message end to end and returns the assistant reply.
// Turns on the same session serialize in arrival order; unknown session IDs
// start a fresh session.
func (o *Orchestrator) Chat(ctx context.Context, sessionID, message string, verbose bool) (*TurnResult, error) {
	const op = "Orchestrator.Chat"

	sessionID = strings.TrimSpace(sessionID)
	message = strings.TrimSpace(message)
	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id must not be empty", nil)
	}
	if message == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "message must not be empty", nil)
	}

	start := o.now()
	ctx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	release, err := o.sessions.AcquireTurn(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	o.logState(sessionID, stateReceived, logrus.Fields{"message_chars": len(message)})

	binding, bound := o.sessions.Customer(sessionID)
	history := o.sessions.History(sessionID)
	stage := &turnStage{bound: bound}

	convo := make([]llm.Message, 0, len(history)+8)
	convo = append(convo, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt(o.profile.Style)})
	if !bound {
		convo = append(convo, llm.Message{Role: llm.RoleSystem, Content: AskNameInstruction})
	}
	convo = append(convo, toLLMMessages(history)...)
	convo = append(convo, llm.Message{Role: llm.RoleUser, Content: message})

	pending := []models.ChatMessage{{Role: models.RoleUser, Content: message}}

	var (
		usage     models.SessionStats
		warnings  []string
		trace     []ToolInvocation
		reply     string
		answered  bool
		argFails  int
		forceText bool
	)
	usage.TotalMessages = 1
	specs := ToolSpecs()

	for iter := 1; iter <= o.maxIterations && !answered; iter++ {
		o.logState(sessionID, statePlanning, logrus.Fields{"iteration": iter, "force_text": forceText})

		resp, err := o.provider.Complete(ctx, llm.Request{
			Model:       o.profile.Model,
			Temperature: o.profile.Temperature,
			MaxTokens:   o.profile.MaxTokens,
			Messages:    convo,
			Tools:       specs,
			ForceText:   forceText,
		})
		if err != nil {
			return nil, o.fail(sessionID, op, iter, err, ctx.Err())
		}
		addUsage(&usage, o.profile.Model, resp.Usage)

		if len(resp.ToolCalls) == 0 {
			reply = strings.TrimSpace(resp.Content)
			answered = true
			break
		}

		// Planning message first, then every result, so later turns replay a
		// well-formed transcript.
		convo = append(convo, llm.Message{Role: llm.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls})
		pending = append(pending, plannedMessage(resp))

		calls := orderCalls(resp.ToolCalls)
		o.logState(sessionID, stateToolDispatch, logrus.Fields{"iteration": iter, "tools": strings.Join(callNames(calls), ",")})

		for _, call := range calls {
			began := o.now()
			outcome := o.exec.dispatch(ctx, call, stage)
			if ctx.Err() != nil {
				return nil, o.fail(sessionID, op, iter, ctx.Err(), ctx.Err())
			}
			usage.ToolsUsed++
			if outcome.invalid {
				argFails++
			}
			convo = append(convo, llm.Message{Role: llm.RoleTool, Content: outcome.payload, ToolCallID: call.ID, Name: call.Name})
			pending = append(pending, models.ChatMessage{Role: models.RoleTool, Content: outcome.payload, ToolCallID: call.ID, ToolName: call.Name})
			if verbose {
				trace = append(trace, ToolInvocation{
					Name:      call.Name,
					Arguments: call.Arguments,
					Result:    outcome.payload,
					ElapsedMS: o.now().Sub(began).Seconds() * 1000,
				})
			}
		}

		// Too many malformed argument sets: stop advertising tools and make
		// the model answer in plain text.
		if argFails > o.argRetries {
			forceText = true
		}
	}

	if !answered {
		warnings = append(warnings, WarnIterationLimit)
		o.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"iterations": o.maxIterations,
		}).Warn("planning loop exhausted without a final reply")
	}
	if reply == "" {
		reply = FallbackReply
	}

	o.logState(sessionID, stateResponding, nil)

	// A stock item mentioned by an identified customer counts as interest
	// even when the model never called record_interest.
	if stage.bound || stage.name != "" {
		if product, ok := o.crm.DetectInterest(ctx, message); ok && !stage.hasInterest(product) {
			stage.interests = append(stage.interests, services.StagedInterest{Product: product})
		}
	}

	pending = append(pending, models.ChatMessage{Role: models.RoleAssistant, Content: reply})
	usage.ElapsedSeconds = o.now().Sub(start).Seconds()

	var newBinding *services.CustomerBinding
	customer, err := o.crm.CommitTurn(ctx, services.CRMCommit{
		SessionID:      sessionID,
		CustomerID:     binding.ID,
		NewName:        stage.name,
		Interests:      stage.interests,
		UserMessage:    message,
		AssistantReply: reply,
		TokensUsed:     usage.TotalTokens,
		CostUSD:        usage.CostUSD,
	})
	switch {
	case err != nil:
		warnings = append(warnings, WarnCRMUnavailable)
		o.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("CRM commit failed, reply preserved")
	case customer != nil:
		newBinding = &services.CustomerBinding{ID: customer.ID, Name: customer.Name}
	}

	o.sessions.CommitTurn(sessionID, services.TurnCommit{
		Messages: pending,
		Stats:    usage,
		Customer: newBinding,
	})

	name := binding.Name
	if newBinding != nil {
		name = newBinding.Name
	}

	o.log.WithFields(logrus.Fields{
		"session_id":      sessionID,
		"state":           string(stateDone),
		"tokens":          usage.TotalTokens,
		"cost_usd":        usage.CostUSD,
		"tools_used":      usage.ToolsUsed,
		"elapsed_seconds": usage.ElapsedSeconds,
	}).Info("turn finished")

	return &TurnResult{
		SessionID:    sessionID,
		Reply:        reply,
		CustomerName: name,
		Usage:        usage,
		Warnings:     warnings,
		Tools:        trace,
	}, nil
}

// fail logs the failed state and maps the cause to a transport error. A turn
// that fails here commits nothing.
func (o *Orchestrator) fail(sessionID, op string, iteration int, cause, ctxErr error) error {
	o.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"state":      string(stateFailed),
		"iteration":  iteration,
		"error":      cause.Error(),
	}).Error("turn failed")

	if ctxErr != nil {
		return utils.E(utils.CodeTimeout, op, "turn timed out", ctxErr)
	}
	return utils.E(utils.CodeResourceUnavailable, op, "language model unavailable", cause)
}

func (o *Orchestrator) logState(sessionID string, state turnState, fields logrus.Fields) {
	entry := o.log.WithFields(logrus.Fields{"session_id": sessionID, "state": string(state)})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Info("turn state")
}

func plannedMessage(resp *llm.Response) models.ChatMessage {
	m := models.ChatMessage{Role: models.RoleAssistant, Content: resp.Content}
	for _, tc := range resp.ToolCalls {
		m.ToolCalls = append(m.ToolCalls, models.ToolCallRecord{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
	}
	return m
}

func toLLMMessages(history []models.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		msg := llm.Message{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.ToolName,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}
		out = append(out, msg)
	}
	return out
}

func callNames(calls []llm.ToolCall) []string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}

func addUsage(stats *models.SessionStats, model string, u llm.Usage) {
	stats.PromptTokens += u.PromptTokens
	stats.CompletionTokens += u.CompletionTokens
	stats.TotalTokens += u.TotalTokens
	stats.CostUSD += llm.CostUSD(model, u)
}
