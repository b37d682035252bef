package v1

import (
	"context"

	"github.com/samber/lo"

	"github.com/promptdeck/promptdeck/app/core"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

type ChatSessionLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewChatSessionLogic(ctx context.Context, core *core.Core) *ChatSessionLogic {
	return &ChatSessionLogic{
		ctx:  ctx,
		core: core,
	}
}

func (l *ChatSessionLogic) ListSessions(userID string, page, pageSize uint64) ([]types.ChatSession, error) {
	sessions, err := l.core.Store().ChatSessionStore().List(l.ctx, userID, page, pageSize)
	if err != nil {
		return nil, errors.Trace("ChatSessionLogic.ListSessions.ChatSessionStore.List", err)
	}
	return sessions, nil
}

// SessionHistory returns the session's messages oldest-first.
func (l *ChatSessionLogic) SessionHistory(userID, sessionID string, limit uint64) ([]types.ChatMessage, error) {
	session, err := l.core.Store().ChatSessionStore().Get(l.ctx, sessionID)
	if err != nil {
		return nil, errors.Trace("ChatSessionLogic.SessionHistory.ChatSessionStore.Get", err)
	}
	if session.UserID != userID {
		return nil, errors.NotFound("ChatSessionLogic.SessionHistory.owner.check", "session not found", nil)
	}

	history, err := l.core.Persistence().MessageHistory(l.ctx, sessionID, limit)
	if err != nil {
		return nil, errors.Trace("ChatSessionLogic.SessionHistory.MessageHistory", err)
	}
	return history, nil
}

// SessionTokenStatus exposes how close the session is to its rollover point.
func (l *ChatSessionLogic) SessionTokenStatus(userID, sessionID string) (*SessionTokenStatus, error) {
	session, err := l.core.Store().ChatSessionStore().Get(l.ctx, sessionID)
	if err != nil {
		return nil, errors.Trace("ChatSessionLogic.SessionTokenStatus.ChatSessionStore.Get", err)
	}
	if session.UserID != userID {
		return nil, errors.NotFound("ChatSessionLogic.SessionTokenStatus.owner.check", "session not found", nil)
	}

	return &SessionTokenStatus{
		SessionID:   session.ID,
		TotalTokens: session.TotalTokens,
		Threshold:   types.AutoResetTokenThreshold,
		Remaining:   lo.Max([]int64{types.AutoResetTokenThreshold - session.TotalTokens, 0}),
	}, nil
}

type SessionTokenStatus struct {
	SessionID   string `json:"session_id"`
	TotalTokens int64  `json:"total_tokens"`
	Threshold   int64  `json:"threshold"`
	Remaining   int64  `json:"remaining"`
}

// DeleteSession removes the session and its messages in one transaction.
func (l *ChatSessionLogic) DeleteSession(userID, sessionID string) error {
	return deleteSession(l.ctx, l.core.Store(), l.core.Store().ChatSessionStore(),
		l.core.Store().ChatMessageStore(), userID, sessionID)
}

type sessionRemover interface {
	Get(ctx context.Context, sessionID string) (*types.ChatSession, error)
	Delete(ctx context.Context, userID, sessionID string) error
}

type sessionMessageRemover interface {
	DeleteSessionMessages(ctx context.Context, sessionID string) error
}

type transactioner interface {
	Transaction(ctx context.Context, next func(ctx context.Context) error) error
}

func deleteSession(ctx context.Context, tx transactioner, sessions sessionRemover, messages sessionMessageRemover, userID, sessionID string) error {
	session, err := sessions.Get(ctx, sessionID)
	if err != nil {
		return errors.Trace("ChatSessionLogic.DeleteSession.ChatSessionStore.Get", err)
	}
	if session.UserID != userID {
		return errors.NotFound("ChatSessionLogic.DeleteSession.owner.check", "session not found", nil)
	}

	err = tx.Transaction(ctx, func(ctx context.Context) error {
		if err := messages.DeleteSessionMessages(ctx, sessionID); err != nil {
			return err
		}
		return sessions.Delete(ctx, userID, sessionID)
	})
	if err != nil {
		return errors.Trace("ChatSessionLogic.DeleteSession", err)
	}
	return nil
}
