package store

import (
	"context"

	"github.com/promptdeck/promptdeck/pkg/sqlstore"
	"github.com/promptdeck/promptdeck/pkg/types"
)

type ChatSessionStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.ChatSession) error
	Get(ctx context.Context, sessionID string) (*types.ChatSession, error)
	// AddTokens increments total_tokens and bumps latest_message_time in one
	// statement; it is always called inside the turn's transaction.
	AddTokens(ctx context.Context, sessionID string, tokens int64) error
	Archive(ctx context.Context, sessionID string) error
	List(ctx context.Context, userID string, page, pageSize uint64) ([]types.ChatSession, error)
	Delete(ctx context.Context, userID, sessionID string) error
}

type ChatMessageStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data *types.ChatMessage) error
	// ListLatest returns up to limit messages newest-first.
	ListLatest(ctx context.Context, sessionID string, limit uint64) ([]types.ChatMessage, error)
	LatestByRole(ctx context.Context, sessionID string, role types.MessageUserRole) (*types.ChatMessage, error)
	DeleteSessionMessages(ctx context.Context, sessionID string) error
}

type WorkflowStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Workflow) error
	Get(ctx context.Context, userID, id string) (*types.Workflow, error)
	Update(ctx context.Context, userID, id string, args types.UpdateWorkflowArgs) error
	List(ctx context.Context, userID, folderID string, page, pageSize uint64) ([]types.Workflow, error)
	SetDeleted(ctx context.Context, userID, id string, deletedAt int64) error
	ListTrashed(ctx context.Context, userID string) ([]types.Workflow, error)
	PurgeTrashedBefore(ctx context.Context, deadline int64) (int64, error)
}

type MiniPromptStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.MiniPrompt) error
	Get(ctx context.Context, userID, id string) (*types.MiniPrompt, error)
	Update(ctx context.Context, userID, id string, args types.UpdateMiniPromptArgs) error
	List(ctx context.Context, userID, folderID string, page, pageSize uint64) ([]types.MiniPrompt, error)
	ListAvailable(ctx context.Context, userID string, limit uint64) ([]types.MiniPrompt, error)
	SetDeleted(ctx context.Context, userID, id string, deletedAt int64) error
	ListTrashed(ctx context.Context, userID string) ([]types.MiniPrompt, error)
	PurgeTrashedBefore(ctx context.Context, deadline int64) (int64, error)
}

type FolderStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Folder) error
	Get(ctx context.Context, userID, id string) (*types.Folder, error)
	Rename(ctx context.Context, userID, id, name string) error
	Move(ctx context.Context, userID, id, parentID string, position int64) error
	List(ctx context.Context, userID, parentID string) ([]types.Folder, error)
	SetDeleted(ctx context.Context, userID, id string, deletedAt int64) error
	PurgeTrashedBefore(ctx context.Context, deadline int64) (int64, error)
}

type AccessTokenStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.AccessToken) error
	GetByToken(ctx context.Context, token string) (*types.AccessToken, error)
	Delete(ctx context.Context, userID string, id int64) error
}
