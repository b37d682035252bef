// Package aichat implements the AI chat pipeline: an ordered chain of steps
// that resolves a session, decides whether the provider-side response chain
// can continue, composes contextual prompts from pluggable providers, calls
// the completion provider and persists the turn. Sessions that outgrow their
// token budget are summarized and rolled over into a fresh successor.
package aichat

import (
	"context"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/promptdeck/promptdeck/pkg/types"
)

// Request is the caller-prepared input for one turn. Subject data (workflow,
// mini-prompt library) is resolved by the caller; the pipeline never reads
// library storage directly.
type Request struct {
	UserID    string
	SessionID string
	Message   string
	Mode      types.ChatSessionMode

	Workflow             *types.Workflow
	MiniPrompt           *types.MiniPrompt
	AvailableMiniPrompts []types.MiniPrompt
}

// SessionStore and MessageStore are the narrow slices of the storage layer
// the pipeline needs; app/store/sqlstore satisfies them.
type SessionStore interface {
	Create(ctx context.Context, data types.ChatSession) error
	Get(ctx context.Context, sessionID string) (*types.ChatSession, error)
	AddTokens(ctx context.Context, sessionID string, tokens int64) error
	Archive(ctx context.Context, sessionID string) error
}

type MessageStore interface {
	Create(ctx context.Context, data *types.ChatMessage) error
	ListLatest(ctx context.Context, sessionID string, limit uint64) ([]types.ChatMessage, error)
	LatestByRole(ctx context.Context, sessionID string, role types.MessageUserRole) (*types.ChatMessage, error)
}

type Transactioner interface {
	Transaction(ctx context.Context, next func(ctx context.Context) error) error
}

// SessionLocker serializes turn submission per session. Nothing in the storage
// design otherwise prevents two concurrent turns racing on the token counter
// and the response-chain handle, so the pipeline treats each session as
// single-writer and rejects overlapping submissions.
type SessionLocker struct {
	held cmap.ConcurrentMap[string, struct{}]
}

func NewSessionLocker() *SessionLocker {
	return &SessionLocker{held: cmap.New[struct{}]()}
}

func (l *SessionLocker) TryLock(sessionID string) bool {
	return l.held.SetIfAbsent(sessionID, struct{}{})
}

func (l *SessionLocker) Unlock(sessionID string) {
	l.held.Remove(sessionID)
}
