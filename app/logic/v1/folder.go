package v1

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/app/core"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

type FolderLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewFolderLogic(ctx context.Context, core *core.Core) *FolderLogic {
	return &FolderLogic{
		ctx:  ctx,
		core: core,
	}
}

type CreateFolderArgs struct {
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parent_id"`
	Position int64  `json:"position"`
}

func (l *FolderLogic) CreateFolder(userID string, args CreateFolderArgs) (*types.Folder, error) {
	if args.ParentID != "" {
		if _, err := l.core.Store().FolderStore().Get(l.ctx, userID, args.ParentID); err != nil {
			return nil, errors.Trace("FolderLogic.CreateFolder.FolderStore.Get", err)
		}
	}

	now := time.Now().Unix()
	folder := types.Folder{
		ID:        uuid.NewString(),
		UserID:    userID,
		ParentID:  args.ParentID,
		Name:      args.Name,
		Position:  args.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := l.core.Store().FolderStore().Create(l.ctx, folder); err != nil {
		return nil, errors.Trace("FolderLogic.CreateFolder.FolderStore.Create", err)
	}
	return &folder, nil
}

func (l *FolderLogic) ListFolders(userID, parentID string) ([]types.Folder, error) {
	list, err := l.core.Store().FolderStore().List(l.ctx, userID, parentID)
	if err != nil {
		return nil, errors.Trace("FolderLogic.ListFolders.FolderStore.List", err)
	}
	return list, nil
}

func (l *FolderLogic) RenameFolder(userID, id, name string) error {
	if name == "" {
		return errors.Validation("FolderLogic.RenameFolder.check", "folder name is required", nil)
	}
	if err := l.core.Store().FolderStore().Rename(l.ctx, userID, id, name); err != nil {
		return errors.Trace("FolderLogic.RenameFolder.FolderStore.Rename", err)
	}
	return nil
}

// MoveFolder reparents a folder. A folder cannot become its own ancestor.
func (l *FolderLogic) MoveFolder(userID, id, parentID string, position int64) error {
	if id == parentID {
		return errors.Validation("FolderLogic.MoveFolder.check", "folder cannot contain itself", nil)
	}

	if parentID != "" {
		ancestor := parentID
		for ancestor != "" {
			if ancestor == id {
				return errors.Validation("FolderLogic.MoveFolder.cycle.check", "folder cannot move under its own descendant", nil)
			}
			parent, err := l.core.Store().FolderStore().Get(l.ctx, userID, ancestor)
			if err != nil {
				return errors.Trace("FolderLogic.MoveFolder.FolderStore.Get", err)
			}
			ancestor = parent.ParentID
		}
	}

	if err := l.core.Store().FolderStore().Move(l.ctx, userID, id, parentID, position); err != nil {
		return errors.Trace("FolderLogic.MoveFolder.FolderStore.Move", err)
	}
	return nil
}

func (l *FolderLogic) TrashFolder(userID, id string) error {
	if err := l.core.Store().FolderStore().SetDeleted(l.ctx, userID, id, time.Now().Unix()); err != nil {
		return errors.Trace("FolderLogic.TrashFolder.FolderStore.SetDeleted", err)
	}
	return nil
}

func (l *FolderLogic) RestoreFolder(userID, id string) error {
	if err := l.core.Store().FolderStore().SetDeleted(l.ctx, userID, id, 0); err != nil {
		return errors.Trace("FolderLogic.RestoreFolder.FolderStore.SetDeleted", err)
	}
	return nil
}
