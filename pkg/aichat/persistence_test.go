package aichat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

func TestSaveMessagesChargesTokensOnce(t *testing.T) {
	env := newTestEnv()
	env.seedSession("sess-1", 100)

	err := env.persistence.SaveMessages(context.Background(), SaveMessagesArgs{
		SessionID:  "sess-1",
		UserID:     "user-1",
		ResponseID: "resp-1",
		TokenCount: 240,
		Messages: []NewMessage{
			{Role: types.USER_ROLE_USER, Content: "hi"},
			{Role: types.USER_ROLE_ASSISTANT, Content: "hello"},
		},
	})
	require.NoError(t, err)

	// One charge for the whole turn, not one per message.
	assert.Equal(t, int64(340), env.state.sessions["sess-1"].TotalTokens)
	require.Len(t, env.state.messages, 2)
	for _, m := range env.state.messages {
		assert.Equal(t, "resp-1", m.PreviousResponseID)
		assert.Equal(t, int64(240), m.TokenCount)
	}
}

func TestSaveMessagesRollsBackOnFailure(t *testing.T) {
	env := newTestEnv()
	env.seedSession("sess-1", 100)
	env.sessions.addTokensErr = func() error {
		return errors.Constraint("fake", "token update rejected", nil)
	}

	err := env.persistence.SaveMessages(context.Background(), SaveMessagesArgs{
		SessionID:  "sess-1",
		UserID:     "user-1",
		TokenCount: 50,
		Messages: []NewMessage{
			{Role: types.USER_ROLE_USER, Content: "hi"},
			{Role: types.USER_ROLE_ASSISTANT, Content: "hello"},
		},
	})
	require.Error(t, err)

	// Nothing from the failed turn is visible.
	assert.Empty(t, env.state.messages)
	assert.Equal(t, int64(100), env.state.sessions["sess-1"].TotalTokens)
}

func TestSaveMessagesRejectsEmptyArgs(t *testing.T) {
	env := newTestEnv()

	err := env.persistence.SaveMessages(context.Background(), SaveMessagesArgs{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestShouldTriggerAutoReset(t *testing.T) {
	env := newTestEnv()
	env.seedSession("under", types.AutoResetTokenThreshold-1)
	env.seedSession("at", types.AutoResetTokenThreshold)
	env.seedSession("over", types.AutoResetTokenThreshold+500)

	ctx := context.Background()

	trigger, err := env.persistence.ShouldTriggerAutoReset(ctx, "under")
	require.NoError(t, err)
	assert.False(t, trigger)

	trigger, err = env.persistence.ShouldTriggerAutoReset(ctx, "at")
	require.NoError(t, err)
	assert.True(t, trigger)

	trigger, err = env.persistence.ShouldTriggerAutoReset(ctx, "over")
	require.NoError(t, err)
	assert.True(t, trigger)

	// Unknown sessions never force a reset.
	trigger, err = env.persistence.ShouldTriggerAutoReset(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, trigger)
}

func TestLastResponseIDWithheldAfterToolInvocations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// No assistant turn yet.
	id, err := env.persistence.LastResponseID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, id)

	env.seedAssistantMessage("sess-1", "resp-1", nil)
	id, err = env.persistence.LastResponseID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "resp-1", id)

	// The stored handle exists but must not be handed out once the reply
	// carries tool invocations.
	env.seedAssistantMessage("sess-1", "resp-2", types.ToolInvocations{
		{Type: types.TOOL_INVOCATION_TYPE_RESULT, ToolName: "update_workflow", State: types.TOOL_INVOCATION_STATE_RESULT},
	})
	id, err = env.persistence.LastResponseID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestMessageHistoryIsChronological(t *testing.T) {
	env := newTestEnv()
	for _, text := range []string{"first", "second", "third"} {
		env.state.messages = append(env.state.messages, types.ChatMessage{
			SessionID: "sess-1",
			Role:      types.USER_ROLE_USER,
			Message:   text,
		})
	}

	history, err := env.persistence.MessageHistory(context.Background(), "sess-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Message)
	assert.Equal(t, "third", history[2].Message)

	history, err = env.persistence.MessageHistory(context.Background(), "sess-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Message)
	assert.Equal(t, "third", history[1].Message)
}
