package v1

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

type fakeSessionRemover struct {
	session *types.ChatSession
	deleted bool
}

func (f *fakeSessionRemover) Get(ctx context.Context, sessionID string) (*types.ChatSession, error) {
	if f.session == nil || f.session.ID != sessionID {
		return nil, errors.NotFound("fakeSessionRemover.Get", "no rows", nil)
	}
	return f.session, nil
}

func (f *fakeSessionRemover) Delete(ctx context.Context, userID, sessionID string) error {
	f.deleted = true
	return nil
}

type fakeMessageRemover struct {
	deleted bool
}

func (f *fakeMessageRemover) DeleteSessionMessages(ctx context.Context, sessionID string) error {
	f.deleted = true
	return nil
}

type passthroughTx struct{}

func (passthroughTx) Transaction(ctx context.Context, next func(ctx context.Context) error) error {
	return next(ctx)
}

func TestDeleteSessionRequiresOwnership(t *testing.T) {
	sessions := &fakeSessionRemover{session: &types.ChatSession{ID: "sess-1", UserID: "user-1"}}
	messages := &fakeMessageRemover{}

	err := deleteSession(context.Background(), passthroughTx{}, sessions, messages, "user-2", "sess-1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, messages.deleted, "another user's messages must survive")
	assert.False(t, sessions.deleted)
}

func TestDeleteSessionRemovesOwnSession(t *testing.T) {
	sessions := &fakeSessionRemover{session: &types.ChatSession{ID: "sess-1", UserID: "user-1"}}
	messages := &fakeMessageRemover{}

	err := deleteSession(context.Background(), passthroughTx{}, sessions, messages, "user-1", "sess-1")
	require.NoError(t, err)
	assert.True(t, messages.deleted)
	assert.True(t, sessions.deleted)
}

func TestDeleteSessionUnknownSession(t *testing.T) {
	sessions := &fakeSessionRemover{}
	messages := &fakeMessageRemover{}

	err := deleteSession(context.Background(), passthroughTx{}, sessions, messages, "user-1", "sess-missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, messages.deleted)
}
