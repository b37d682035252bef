package aichat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/promptdeck/promptdeck/pkg/ai"
	pderr "github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

// PipelineContext is the per-request accumulator threaded through the steps.
// Steps receive it by value and return an extended copy; nothing in it
// outlives the Execute call.
type PipelineContext struct {
	Request Request

	SessionID    string
	IsNewSession bool

	PreviousResponseID string
	ChainBroken        bool
	AutoResetTriggered bool

	IncludeExtendedContext bool
	SystemPrompt           string
	UserContent            string

	Tools []openai.Tool

	CompletionResult *ai.CompletionResult
}

type Step interface {
	Name() string
	Execute(ctx context.Context, pc PipelineContext) (PipelineContext, error)
}

// PrepareData validates and normalizes caller input before anything touches
// storage.
type PrepareDataStep struct{}

func (PrepareDataStep) Name() string { return "PrepareData" }

func (PrepareDataStep) Execute(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
	req := pc.Request

	if req.UserID == "" {
		return pc, pderr.Validation("PrepareData", "user id is required", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return pc, pderr.Validation("PrepareData", "message is required", nil)
	}
	switch req.Mode {
	case types.SESSION_MODE_WORKFLOW, types.SESSION_MODE_MINI_PROMPT:
	default:
		return pc, pderr.Validation("PrepareData", fmt.Sprintf("unknown session mode %q", req.Mode), nil)
	}
	if req.Workflow != nil && req.MiniPrompt != nil {
		return pc, pderr.Validation("PrepareData", "workflow and mini-prompt subjects are mutually exclusive", nil)
	}

	pc.Request.Message = strings.TrimSpace(req.Message)
	return pc, nil
}

// DetermineSession resolves the session id: reuse the caller's session when
// one was supplied, otherwise create a fresh one bound to the request's
// subject.
type DetermineSessionStep struct {
	Persistence *MessagePersistenceService
}

func (DetermineSessionStep) Name() string { return "DetermineSession" }

func (s DetermineSessionStep) Execute(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
	if pc.Request.SessionID != "" {
		session, err := s.Persistence.Sessions().Get(ctx, pc.Request.SessionID)
		if err != nil {
			return pc, err
		}
		if session.Archived() {
			return pc, pderr.Validation("DetermineSession", "session is archived", nil)
		}
		pc.SessionID = session.ID
		return pc, nil
	}

	session := types.ChatSession{
		ID:     uuid.NewString(),
		UserID: pc.Request.UserID,
		Mode:   pc.Request.Mode,
	}
	if pc.Request.Workflow != nil {
		session.WorkflowID = pc.Request.Workflow.ID
	}
	if pc.Request.MiniPrompt != nil {
		session.MiniPromptID = pc.Request.MiniPrompt.ID
	}

	if err := s.Persistence.Sessions().Create(ctx, session); err != nil {
		return pc, err
	}

	pc.SessionID = session.ID
	pc.IsNewSession = true
	return pc, nil
}

// CheckAutoReset decides how this turn relates to the provider-side chain.
// A prior assistant turn that still carries tool invocations forces a break:
// the upstream provider rejects chained continuations that do not supply the
// matching tool outputs. Independently, a session at the token threshold is
// rolled over before the turn proceeds, redirecting every later step to the
// successor session.
type CheckAutoResetStep struct {
	Persistence *MessagePersistenceService
	AutoReset   *AutoResetManager
}

func (CheckAutoResetStep) Name() string { return "CheckAutoReset" }

func (s CheckAutoResetStep) Execute(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
	last, err := s.Persistence.LatestAssistantMessage(ctx, pc.SessionID)
	if err != nil {
		return pc, err
	}

	if last != nil {
		if len(last.ToolInvocations) > 0 {
			pc.ChainBroken = true
		} else {
			pc.PreviousResponseID = last.PreviousResponseID
		}
	}

	trigger, err := s.Persistence.ShouldTriggerAutoReset(ctx, pc.SessionID)
	if err != nil {
		return pc, err
	}
	if trigger {
		newSessionID, err := s.AutoReset.TriggerAutoReset(ctx, pc.SessionID, pc.Request.UserID)
		if err != nil {
			return pc, err
		}
		// A freshly summarized session cannot continue the old chain.
		pc.SessionID = newSessionID
		pc.PreviousResponseID = ""
		pc.ChainBroken = true
		pc.AutoResetTriggered = true
	}

	return pc, nil
}

// BuildContextStep assembles the prompts. On a fresh or broken chain the full
// contextual prompt is re-included: the provider's own memory of prior turns
// is gone, so omitting it would silently degrade answers, not just cost more.
type BuildContextStep struct {
	Builder *ContextBuilder
}

func (BuildContextStep) Name() string { return "BuildContext" }

func (s BuildContextStep) Execute(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
	pc.IncludeExtendedContext = pc.PreviousResponseID == "" || pc.ChainBroken

	systemParts := []string{baseSystemPrompt, modeSystemPrompt(pc.Request.Mode)}
	userContent := pc.Request.Message

	if pc.IncludeExtendedContext {
		built := s.Builder.BuildContext(pc.Request)
		if built.SystemMessage != "" {
			systemParts = append(systemParts, built.SystemMessage)
		}
		if built.UserContent != "" {
			userContent = userContent + "\n\n[Context]\n" + built.UserContent
		}
	}

	pc.SystemPrompt = strings.Join(systemParts, "\n\n")
	pc.UserContent = userContent
	return pc, nil
}

// PrepareRequestStep attaches the static tool set for the session's mode.
type PrepareRequestStep struct {
	Tools ToolLoader
}

func (PrepareRequestStep) Name() string { return "PrepareRequest" }

func (s PrepareRequestStep) Execute(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
	pc.Tools = s.Tools.ToolsForMode(pc.Request.Mode)
	return pc, nil
}

// clarificationReply substitutes for the assistant's answer when the upstream
// schema checker rejected the model's tool arguments. The turn succeeds in a
// degraded form instead of surfacing an opaque provider error.
const clarificationReply = "I apologize, but I ran into a problem processing that request. Could you rephrase it, or tell me more precisely what you'd like me to change?"

// ExecuteCompletionStep performs the upstream call. Only the current turn is
// sent as a message; all prior-turn continuity rides on PreviousResponseID.
type ExecuteCompletionStep struct {
	Completer ai.Completer
}

func (ExecuteCompletionStep) Name() string { return "ExecuteCompletion" }

func (s ExecuteCompletionStep) Execute(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
	req := ai.CompletionRequest{
		SystemPrompt: pc.SystemPrompt,
		UserMessage:  pc.UserContent,
		Tools:        pc.Tools,
		Persist:      true,
		Metadata: ai.RequestMetadata{
			SessionID: pc.SessionID,
			UserID:    pc.Request.UserID,
		},
	}
	if !pc.ChainBroken {
		req.PreviousResponseID = pc.PreviousResponseID
	}

	result, err := s.Completer.Complete(ctx, req)
	if err != nil {
		var validationErr *ai.ValidationError
		if errors.As(err, &validationErr) {
			slog.Warn("upstream validation failure recovered with clarification reply",
				slog.String("session_id", pc.SessionID),
				slog.String("error", validationErr.Error()))
			pc.CompletionResult = &ai.CompletionResult{Text: clarificationReply}
			return pc, nil
		}
		return pc, err
	}

	if len(result.ToolResults) == 0 {
		result.ToolResults = ai.ExtractToolResults(result.Turns)
	}
	if result.Text == "" && len(result.ToolResults) > 0 {
		result.Text = synthesizeReply(result.ToolResults)
	}
	// Some providers omit usage figures; estimate from the text so session
	// token accounting (and the auto-reset threshold) keeps moving.
	if result.Usage.Total() == 0 {
		result.Usage = ai.Usage{
			InputTokens:  ai.EstimateTokens(pc.SystemPrompt) + ai.EstimateTokens(pc.UserContent),
			OutputTokens: ai.EstimateTokens(result.Text),
		}
	}

	pc.CompletionResult = result
	return pc, nil
}

// synthesizeReply derives a human-readable answer from executed tool outputs
// when the model returned no text of its own.
func synthesizeReply(results []ai.ToolResult) string {
	var fragments []string
	for _, r := range results {
		var out struct {
			Message string          `json:"message"`
			Error   json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(r.Output, &out); err != nil {
			continue
		}
		if out.Message != "" {
			fragments = append(fragments, out.Message)
		} else if len(out.Error) > 0 && string(out.Error) != "null" {
			fragments = append(fragments, "Error: "+ai.NormalizeText(out.Error))
		}
	}

	if len(fragments) == 0 {
		return "Action completed successfully!"
	}
	return strings.Join(fragments, "\n\n")
}

// PersistMessagesStep writes the turn: one user message and one assistant
// message carrying any tool records, under the current (possibly reset)
// session id.
type PersistMessagesStep struct {
	Persistence *MessagePersistenceService
}

func (PersistMessagesStep) Name() string { return "PersistMessages" }

func (s PersistMessagesStep) Execute(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
	if pc.CompletionResult == nil {
		return pc, pderr.New("PersistMessages", "completion result missing", nil)
	}

	result := pc.CompletionResult
	err := s.Persistence.SaveMessages(ctx, SaveMessagesArgs{
		SessionID:  pc.SessionID,
		UserID:     pc.Request.UserID,
		ResponseID: result.ResponseID,
		TokenCount: result.Usage.Total(),
		Messages: []NewMessage{
			{Role: types.USER_ROLE_USER, Content: pc.Request.Message},
			{Role: types.USER_ROLE_ASSISTANT, Content: result.Text, ToolInvocations: normalizeToolInvocations(result)},
		},
	})
	if err != nil {
		return pc, err
	}
	return pc, nil
}

// normalizeToolInvocations maps the completion's tool records onto the stored
// tagged union. Executed results and pending calls are mutually exclusive in
// one reply.
func normalizeToolInvocations(result *ai.CompletionResult) types.ToolInvocations {
	if len(result.ToolResults) > 0 {
		invocations := make(types.ToolInvocations, 0, len(result.ToolResults))
		for _, r := range result.ToolResults {
			invocations = append(invocations, types.ToolInvocation{
				Type:     types.TOOL_INVOCATION_TYPE_RESULT,
				ToolName: r.ToolName,
				CallID:   r.CallID,
				Input:    r.Input,
				Output:   r.Output,
				State:    types.TOOL_INVOCATION_STATE_RESULT,
			})
		}
		return invocations
	}

	if len(result.ToolCalls) > 0 {
		invocations := make(types.ToolInvocations, 0, len(result.ToolCalls))
		for _, c := range result.ToolCalls {
			invocations = append(invocations, types.ToolInvocation{
				Type:     types.TOOL_INVOCATION_TYPE_CALL,
				ToolName: c.ToolName,
				CallID:   c.CallID,
				Input:    c.Input,
				Output:   nil,
				State:    types.TOOL_INVOCATION_STATE_PENDING,
			})
		}
		return invocations
	}

	return nil
}
