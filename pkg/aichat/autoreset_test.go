package aichat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

func TestTriggerAutoResetRollsSessionOver(t *testing.T) {
	env := newTestEnv()
	env.state.sessions["sess-1"] = types.ChatSession{
		ID:          "sess-1",
		UserID:      "user-1",
		WorkflowID:  "wf-1",
		Mode:        types.SESSION_MODE_WORKFLOW,
		TotalTokens: types.AutoResetTokenThreshold + 200,
	}
	env.state.messages = append(env.state.messages,
		types.ChatMessage{SessionID: "sess-1", Role: types.USER_ROLE_USER, Message: "build me a workflow"},
		types.ChatMessage{SessionID: "sess-1", Role: types.USER_ROLE_ASSISTANT, Message: "done, two stages"},
	)

	manager := NewAutoResetManager(env.persistence, env.summarizer)
	newID, err := manager.TriggerAutoReset(context.Background(), "sess-1", "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, newID)
	assert.NotEqual(t, "sess-1", newID)

	// The whole conversation went to the summarizer, oldest first.
	require.Len(t, env.summarizer.got, 2)
	assert.Equal(t, "build me a workflow", env.summarizer.got[0].Content)

	old := env.state.sessions["sess-1"]
	assert.True(t, old.Archived())

	successor := env.state.sessions[newID]
	assert.Equal(t, "wf-1", successor.WorkflowID)
	assert.Equal(t, types.SESSION_MODE_WORKFLOW, successor.Mode)
	assert.Zero(t, successor.TotalTokens)

	var seeded []types.ChatMessage
	for _, m := range env.state.messages {
		if m.SessionID == newID {
			seeded = append(seeded, m)
		}
	}
	require.Len(t, seeded, 1)
	assert.Equal(t, types.USER_ROLE_SYSTEM, seeded[0].Role)
	assert.True(t, strings.HasPrefix(seeded[0].Message, SummaryMessagePrefix))
	assert.Zero(t, seeded[0].TokenCount)
}

func TestTriggerAutoResetAbortsBeforeMutationOnSummaryFailure(t *testing.T) {
	env := newTestEnv()
	env.seedSession("sess-1", types.AutoResetTokenThreshold)
	env.summarizer.err = errors.Transient("fake", "summary backend down", nil)

	manager := NewAutoResetManager(env.persistence, env.summarizer)
	_, err := manager.TriggerAutoReset(context.Background(), "sess-1", "user-1")
	require.Error(t, err)

	// The original session is untouched and no successor exists.
	original := env.state.sessions["sess-1"]
	assert.False(t, original.Archived())
	assert.Len(t, env.state.sessions, 1)
	assert.Empty(t, env.state.messages)
}

func TestTriggerAutoResetUnknownSession(t *testing.T) {
	env := newTestEnv()

	manager := NewAutoResetManager(env.persistence, env.summarizer)
	_, err := manager.TriggerAutoReset(context.Background(), "missing", "user-1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
