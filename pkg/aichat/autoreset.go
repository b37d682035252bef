package aichat

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/promptdeck/promptdeck/pkg/ai"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

// SummaryMessagePrefix seeds the successor session's only system message.
const SummaryMessagePrefix = "Previous conversation summary:"

// autoResetHistoryLimit bounds how much conversation is fed to the
// summarizer; a session at the token threshold fits comfortably below this.
const autoResetHistoryLimit = 1000

// AutoResetManager rolls an over-budget session into a fresh successor:
// summarize the whole conversation, archive the original, create a new
// session with the same subject and mode, and seed it with the summary.
type AutoResetManager struct {
	persistence *MessagePersistenceService
	summarizer  ai.Summarizer
}

func NewAutoResetManager(persistence *MessagePersistenceService, summarizer ai.Summarizer) *AutoResetManager {
	return &AutoResetManager{
		persistence: persistence,
		summarizer:  summarizer,
	}
}

// TriggerAutoReset returns the successor session's id. Failures during load
// or summarization abort before any mutation: there is never an archived
// session without a successor, nor a successor without its summary.
func (m *AutoResetManager) TriggerAutoReset(ctx context.Context, sessionID, userID string) (string, error) {
	session, err := m.persistence.Sessions().Get(ctx, sessionID)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.NotFound("AutoResetManager.TriggerAutoReset", "session not found", err)
		}
		return "", errors.Trace("AutoResetManager.TriggerAutoReset.Get", err)
	}

	history, err := m.persistence.MessageHistory(ctx, sessionID, autoResetHistoryLimit)
	if err != nil {
		return "", errors.Trace("AutoResetManager.TriggerAutoReset.MessageHistory", err)
	}

	summary, err := m.summarizer.Summarize(ctx, lo.Map(history, func(msg types.ChatMessage, _ int) ai.SummaryMessage {
		return ai.SummaryMessage{Role: msg.Role, Content: msg.Message}
	}))
	if err != nil {
		return "", errors.Trace("AutoResetManager.TriggerAutoReset.Summarize", err)
	}

	newSessionID := uuid.NewString()

	err = m.persistence.Transactioner().Transaction(ctx, func(ctx context.Context) error {
		if err := m.persistence.Sessions().Archive(ctx, sessionID); err != nil {
			return err
		}

		if err := m.persistence.Sessions().Create(ctx, types.ChatSession{
			ID:           newSessionID,
			UserID:       session.UserID,
			WorkflowID:   session.WorkflowID,
			MiniPromptID: session.MiniPromptID,
			Mode:         session.Mode,
			TotalTokens:  0,
		}); err != nil {
			return err
		}

		// tokenCount stays 0: the summary's cost is not charged against the
		// fresh session's budget.
		return m.persistence.Messages().Create(ctx, &types.ChatMessage{
			ID:        uuid.NewString(),
			SessionID: newSessionID,
			UserID:    userID,
			Role:      types.USER_ROLE_SYSTEM,
			Message:   SummaryMessagePrefix + " " + summary,
		})
	})
	if err != nil {
		return "", errors.Trace("AutoResetManager.TriggerAutoReset.Transaction", err)
	}

	slog.Info("session auto-reset",
		slog.String("archived_session_id", sessionID),
		slog.String("new_session_id", newSessionID),
		slog.Int64("total_tokens", session.TotalTokens))

	return newSessionID, nil
}
