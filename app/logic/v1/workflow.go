package v1

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/app/core"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

type WorkflowLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewWorkflowLogic(ctx context.Context, core *core.Core) *WorkflowLogic {
	return &WorkflowLogic{
		ctx:  ctx,
		core: core,
	}
}

type CreateWorkflowArgs struct {
	Name           string               `json:"name" binding:"required"`
	Description    string               `json:"description"`
	Complexity     string               `json:"complexity"`
	MultiAgentChat bool                 `json:"multi_agent_chat"`
	Stages         types.WorkflowStages `json:"stages"`
	FolderID       string               `json:"folder_id"`
}

func (l *WorkflowLogic) CreateWorkflow(userID string, args CreateWorkflowArgs) (*types.Workflow, error) {
	now := time.Now().Unix()
	workflow := types.Workflow{
		ID:             uuid.NewString(),
		UserID:         userID,
		FolderID:       args.FolderID,
		Name:           args.Name,
		Description:    args.Description,
		Complexity:     args.Complexity,
		MultiAgentChat: args.MultiAgentChat,
		Stages:         args.Stages,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := l.core.Store().WorkflowStore().Create(l.ctx, workflow); err != nil {
		return nil, errors.Trace("WorkflowLogic.CreateWorkflow.WorkflowStore.Create", err)
	}
	return &workflow, nil
}

func (l *WorkflowLogic) GetWorkflow(userID, id string) (*types.Workflow, error) {
	workflow, err := l.core.Store().WorkflowStore().Get(l.ctx, userID, id)
	if err != nil {
		return nil, errors.Trace("WorkflowLogic.GetWorkflow.WorkflowStore.Get", err)
	}
	return workflow, nil
}

func (l *WorkflowLogic) ListWorkflows(userID, folderID string, page, pageSize uint64) ([]types.Workflow, error) {
	list, err := l.core.Store().WorkflowStore().List(l.ctx, userID, folderID, page, pageSize)
	if err != nil {
		return nil, errors.Trace("WorkflowLogic.ListWorkflows.WorkflowStore.List", err)
	}
	return list, nil
}

func (l *WorkflowLogic) UpdateWorkflow(userID, id string, args types.UpdateWorkflowArgs) error {
	if _, err := l.core.Store().WorkflowStore().Get(l.ctx, userID, id); err != nil {
		return errors.Trace("WorkflowLogic.UpdateWorkflow.WorkflowStore.Get", err)
	}
	if err := l.core.Store().WorkflowStore().Update(l.ctx, userID, id, args); err != nil {
		return errors.Trace("WorkflowLogic.UpdateWorkflow.WorkflowStore.Update", err)
	}
	return nil
}

// TrashWorkflow soft-deletes; the janitor purges trashed items after the
// retention window.
func (l *WorkflowLogic) TrashWorkflow(userID, id string) error {
	if err := l.core.Store().WorkflowStore().SetDeleted(l.ctx, userID, id, time.Now().Unix()); err != nil {
		return errors.Trace("WorkflowLogic.TrashWorkflow.WorkflowStore.SetDeleted", err)
	}
	return nil
}

func (l *WorkflowLogic) RestoreWorkflow(userID, id string) error {
	if err := l.core.Store().WorkflowStore().SetDeleted(l.ctx, userID, id, 0); err != nil {
		return errors.Trace("WorkflowLogic.RestoreWorkflow.WorkflowStore.SetDeleted", err)
	}
	return nil
}

func (l *WorkflowLogic) ListTrashedWorkflows(userID string) ([]types.Workflow, error) {
	list, err := l.core.Store().WorkflowStore().ListTrashed(l.ctx, userID)
	if err != nil {
		return nil, errors.Trace("WorkflowLogic.ListTrashedWorkflows.WorkflowStore.ListTrashed", err)
	}
	return list, nil
}
