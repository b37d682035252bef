package aichat

import (
	"context"
	"log/slog"

	"github.com/promptdeck/promptdeck/pkg/ai"
	pderr "github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

// PipelineResult is what the pipeline hands back to the transport layer: the
// session the turn finally landed in (which differs from the request's session
// after an auto-reset), the assistant's reply and the turn's token bill.
type PipelineResult struct {
	SessionID          string         `json:"session_id"`
	IsNewSession       bool           `json:"is_new_session"`
	AutoResetTriggered bool           `json:"auto_reset_triggered"`
	Message            ResultMessage  `json:"message"`
	TokenUsage         TokenUsage     `json:"token_usage"`
}

type ResultMessage struct {
	Role            string                `json:"role"`
	Content         string                `json:"content"`
	ToolInvocations types.ToolInvocations `json:"tool_invocations,omitempty"`
}

type TokenUsage struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

// AgentPipeline runs one chat turn as an ordered chain of steps. Each step
// receives the accumulated context by value and returns an extended copy;
// the first failing step aborts the turn.
type AgentPipeline struct {
	steps       []Step
	locker      *SessionLocker
	onStepError func(step string)
}

type PipelineDeps struct {
	Persistence *MessagePersistenceService
	AutoReset   *AutoResetManager
	Builder     *ContextBuilder
	Completer   ai.Completer
	Tools       ToolLoader
	Locker      *SessionLocker
	// OnStepError is invoked with the failing step's name before the turn
	// aborts, so the host can count failures per step.
	OnStepError func(step string)
}

func NewAgentPipeline(deps PipelineDeps) *AgentPipeline {
	if deps.Builder == nil {
		deps.Builder = NewDefaultContextBuilder()
	}
	if deps.Tools == nil {
		deps.Tools = StaticToolLoader{}
	}
	if deps.Locker == nil {
		deps.Locker = NewSessionLocker()
	}

	return &AgentPipeline{
		locker:      deps.Locker,
		onStepError: deps.OnStepError,
		steps: []Step{
			PrepareDataStep{},
			DetermineSessionStep{Persistence: deps.Persistence},
			CheckAutoResetStep{Persistence: deps.Persistence, AutoReset: deps.AutoReset},
			BuildContextStep{Builder: deps.Builder},
			PrepareRequestStep{Tools: deps.Tools},
			ExecuteCompletionStep{Completer: deps.Completer},
			PersistMessagesStep{Persistence: deps.Persistence},
		},
	}
}

// Execute runs the turn. Submissions racing on the same session are rejected
// rather than queued: the token counter and the chain handle both assume a
// single writer per session.
func (p *AgentPipeline) Execute(ctx context.Context, req Request) (*PipelineResult, error) {
	if req.SessionID != "" {
		if !p.locker.TryLock(req.SessionID) {
			return nil, pderr.Validation("AgentPipeline.Execute", "session is processing another message", nil)
		}
		defer p.locker.Unlock(req.SessionID)
	}

	pc := PipelineContext{Request: req}
	var err error
	for _, step := range p.steps {
		pc, err = step.Execute(ctx, pc)
		if err != nil {
			slog.Error("pipeline step failed",
				slog.String("step", step.Name()),
				slog.String("session_id", pc.SessionID),
				slog.String("user_id", req.UserID),
				slog.String("error", err.Error()))
			if p.onStepError != nil {
				p.onStepError(step.Name())
			}
			return nil, err
		}
	}

	if pc.SessionID == "" || pc.CompletionResult == nil {
		return nil, pderr.New("AgentPipeline.Execute", "pipeline finished without a session or completion", nil)
	}

	result := pc.CompletionResult
	return &PipelineResult{
		SessionID:          pc.SessionID,
		IsNewSession:       pc.IsNewSession,
		AutoResetTriggered: pc.AutoResetTriggered,
		Message: ResultMessage{
			Role:            types.USER_ROLE_ASSISTANT.String(),
			Content:         result.Text,
			ToolInvocations: normalizeToolInvocations(result),
		},
		TokenUsage: TokenUsage{
			Input:  result.Usage.InputTokens,
			Output: result.Usage.OutputTokens,
			Total:  result.Usage.Total(),
		},
	}, nil
}
