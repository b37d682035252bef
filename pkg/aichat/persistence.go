package aichat

import (
	"context"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

const defaultHistoryLimit = 50

// MessagePersistenceService owns every write to the session row and its
// message log. No other component touches them directly.
type MessagePersistenceService struct {
	sessions SessionStore
	messages MessageStore
	tx       Transactioner
	retry    RetryPolicy
}

func NewMessagePersistenceService(sessions SessionStore, messages MessageStore, tx Transactioner) *MessagePersistenceService {
	return &MessagePersistenceService{
		sessions: sessions,
		messages: messages,
		tx:       tx,
		retry:    DefaultRetryPolicy(),
	}
}

type SaveMessagesArgs struct {
	SessionID string
	UserID    string
	Messages  []NewMessage
	// ResponseID is the upstream handle returned for this turn; stamped on
	// every inserted row so the next turn can resume the provider thread.
	ResponseID string
	// TokenCount is the full turn cost, charged once to the session.
	TokenCount int64
}

type NewMessage struct {
	Role            types.MessageUserRole
	Content         string
	ToolInvocations types.ToolInvocations
}

// SaveMessages appends the turn's messages and bumps the session counters in
// one transaction, wrapped by the bounded retry policy. Either every message
// lands and the token counter moves, or nothing is visible.
func (s *MessagePersistenceService) SaveMessages(ctx context.Context, args SaveMessagesArgs) error {
	if args.SessionID == "" || len(args.Messages) == 0 {
		return errors.Validation("MessagePersistenceService.SaveMessages", "session id and messages are required", nil)
	}

	return s.retry.Do(ctx, "MessagePersistenceService.SaveMessages", func(ctx context.Context) error {
		return s.tx.Transaction(ctx, func(ctx context.Context) error {
			for _, m := range args.Messages {
				msg := &types.ChatMessage{
					ID:                 uuid.NewString(),
					SessionID:          args.SessionID,
					UserID:             args.UserID,
					Role:               m.Role,
					Message:            m.Content,
					PreviousResponseID: args.ResponseID,
					TokenCount:         args.TokenCount,
					ToolInvocations:    m.ToolInvocations,
				}
				if err := s.messages.Create(ctx, msg); err != nil {
					return err
				}
			}

			return s.sessions.AddTokens(ctx, args.SessionID, args.TokenCount)
		})
	})
}

// ShouldTriggerAutoReset reports whether the session's cumulative tokens have
// reached the rollover threshold. An unknown session never forces a reset.
func (s *MessagePersistenceService) ShouldTriggerAutoReset(ctx context.Context, sessionID string) (bool, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return session.TotalTokens >= types.AutoResetTokenThreshold, nil
}

// LastResponseID returns the response handle stored on the most recent
// assistant message, or "" when no assistant turn exists yet. When that
// message carries tool invocations the handle is withheld even though it is
// stored: a chained continuation would require matching tool outputs, so the
// chain must break here regardless of what the pipeline decides upstream.
func (s *MessagePersistenceService) LastResponseID(ctx context.Context, sessionID string) (string, error) {
	msg, err := s.messages.LatestByRole(ctx, sessionID, types.USER_ROLE_ASSISTANT)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}

	if len(msg.ToolInvocations) > 0 {
		return "", nil
	}
	return msg.PreviousResponseID, nil
}

// LatestAssistantMessage exposes the raw latest assistant turn for callers
// that need to inspect its tool invocations, not just the chain handle.
func (s *MessagePersistenceService) LatestAssistantMessage(ctx context.Context, sessionID string) (*types.ChatMessage, error) {
	msg, err := s.messages.LatestByRole(ctx, sessionID, types.USER_ROLE_ASSISTANT)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// MessageHistory returns up to limit most recent messages in chronological
// order.
func (s *MessagePersistenceService) MessageHistory(ctx context.Context, sessionID string, limit uint64) ([]types.ChatMessage, error) {
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	list, err := s.messages.ListLatest(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (s *MessagePersistenceService) Sessions() SessionStore {
	return s.sessions
}

func (s *MessagePersistenceService) Messages() MessageStore {
	return s.messages
}

func (s *MessagePersistenceService) Transactioner() Transactioner {
	return s.tx
}

// WithRetryPolicy overrides the default policy; used by tests to avoid real
// backoff sleeps.
func (s *MessagePersistenceService) WithRetryPolicy(p RetryPolicy) *MessagePersistenceService {
	s.retry = p
	return s
}
