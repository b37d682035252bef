package v1

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/app/core"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

type MiniPromptLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewMiniPromptLogic(ctx context.Context, core *core.Core) *MiniPromptLogic {
	return &MiniPromptLogic{
		ctx:  ctx,
		core: core,
	}
}

type CreateMiniPromptArgs struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Content     string `json:"content"`
	FolderID    string `json:"folder_id"`
}

func (l *MiniPromptLogic) CreateMiniPrompt(userID string, args CreateMiniPromptArgs) (*types.MiniPrompt, error) {
	now := time.Now().Unix()
	miniPrompt := types.MiniPrompt{
		ID:          uuid.NewString(),
		UserID:      userID,
		FolderID:    args.FolderID,
		Name:        args.Name,
		Description: args.Description,
		Content:     args.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := l.core.Store().MiniPromptStore().Create(l.ctx, miniPrompt); err != nil {
		return nil, errors.Trace("MiniPromptLogic.CreateMiniPrompt.MiniPromptStore.Create", err)
	}
	return &miniPrompt, nil
}

func (l *MiniPromptLogic) GetMiniPrompt(userID, id string) (*types.MiniPrompt, error) {
	miniPrompt, err := l.core.Store().MiniPromptStore().Get(l.ctx, userID, id)
	if err != nil {
		return nil, errors.Trace("MiniPromptLogic.GetMiniPrompt.MiniPromptStore.Get", err)
	}
	return miniPrompt, nil
}

func (l *MiniPromptLogic) ListMiniPrompts(userID, folderID string, page, pageSize uint64) ([]types.MiniPrompt, error) {
	list, err := l.core.Store().MiniPromptStore().List(l.ctx, userID, folderID, page, pageSize)
	if err != nil {
		return nil, errors.Trace("MiniPromptLogic.ListMiniPrompts.MiniPromptStore.List", err)
	}
	return list, nil
}

func (l *MiniPromptLogic) UpdateMiniPrompt(userID, id string, args types.UpdateMiniPromptArgs) error {
	if _, err := l.core.Store().MiniPromptStore().Get(l.ctx, userID, id); err != nil {
		return errors.Trace("MiniPromptLogic.UpdateMiniPrompt.MiniPromptStore.Get", err)
	}
	if err := l.core.Store().MiniPromptStore().Update(l.ctx, userID, id, args); err != nil {
		return errors.Trace("MiniPromptLogic.UpdateMiniPrompt.MiniPromptStore.Update", err)
	}
	return nil
}

func (l *MiniPromptLogic) TrashMiniPrompt(userID, id string) error {
	if err := l.core.Store().MiniPromptStore().SetDeleted(l.ctx, userID, id, time.Now().Unix()); err != nil {
		return errors.Trace("MiniPromptLogic.TrashMiniPrompt.MiniPromptStore.SetDeleted", err)
	}
	return nil
}

func (l *MiniPromptLogic) RestoreMiniPrompt(userID, id string) error {
	if err := l.core.Store().MiniPromptStore().SetDeleted(l.ctx, userID, id, 0); err != nil {
		return errors.Trace("MiniPromptLogic.RestoreMiniPrompt.MiniPromptStore.SetDeleted", err)
	}
	return nil
}

func (l *MiniPromptLogic) ListTrashedMiniPrompts(userID string) ([]types.MiniPrompt, error) {
	list, err := l.core.Store().MiniPromptStore().ListTrashed(l.ctx, userID)
	if err != nil {
		return nil, errors.Trace("MiniPromptLogic.ListTrashedMiniPrompts.MiniPromptStore.ListTrashed", err)
	}
	return list, nil
}
