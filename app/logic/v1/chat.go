package v1

import (
	"context"

	"github.com/promptdeck/promptdeck/app/core"
	"github.com/promptdeck/promptdeck/pkg/aichat"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

// availableMiniPromptLimit bounds how many library entries are fetched for
// prompt composition. The builder caps the rendered list separately.
const availableMiniPromptLimit = 100

type ChatLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewChatLogic(ctx context.Context, core *core.Core) *ChatLogic {
	return &ChatLogic{
		ctx:  ctx,
		core: core,
	}
}

type SendMessageArgs struct {
	SessionID    string                `json:"session_id"`
	Message      string                `json:"message"`
	Mode         types.ChatSessionMode `json:"mode"`
	WorkflowID   string                `json:"workflow_id"`
	MiniPromptID string                `json:"mini_prompt_id"`
}

// SendMessage resolves the turn's subject from library storage and runs the
// chat pipeline. Subject lookups happen here so the pipeline itself stays
// independent of the library stores.
func (l *ChatLogic) SendMessage(userID string, args SendMessageArgs) (*aichat.PipelineResult, error) {
	req := aichat.Request{
		UserID:    userID,
		SessionID: args.SessionID,
		Message:   args.Message,
		Mode:      args.Mode,
	}

	if args.WorkflowID != "" {
		workflow, err := l.core.Store().WorkflowStore().Get(l.ctx, userID, args.WorkflowID)
		if err != nil {
			return nil, errors.Trace("ChatLogic.SendMessage.WorkflowStore.Get", err)
		}
		req.Workflow = workflow
	}

	if args.MiniPromptID != "" {
		miniPrompt, err := l.core.Store().MiniPromptStore().Get(l.ctx, userID, args.MiniPromptID)
		if err != nil {
			return nil, errors.Trace("ChatLogic.SendMessage.MiniPromptStore.Get", err)
		}
		req.MiniPrompt = miniPrompt
	}

	if args.Mode == types.SESSION_MODE_WORKFLOW {
		available, err := l.core.Store().MiniPromptStore().ListAvailable(l.ctx, userID, availableMiniPromptLimit)
		if err != nil {
			return nil, errors.Trace("ChatLogic.SendMessage.MiniPromptStore.ListAvailable", err)
		}
		req.AvailableMiniPrompts = available
	}

	timer := l.core.Metrics().CompletionTimer(l.core.Cfg().AI.Model.ChatModel)
	result, err := l.core.Pipeline().Execute(l.ctx, req)
	timer.ObserveDuration()
	if err != nil {
		l.core.Metrics().CompletionErrorInc(errorKind(err))
		return nil, errors.Trace("ChatLogic.SendMessage.Pipeline.Execute", err)
	}

	if result.AutoResetTriggered {
		l.core.Metrics().AutoResetInc()
	}

	return result, nil
}

func errorKind(err error) string {
	switch {
	case errors.IsValidation(err):
		return "validation"
	case errors.IsTransient(err):
		return "transient"
	case errors.IsNotFound(err):
		return "not_found"
	default:
		return "internal"
	}
}
