package aichat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/pkg/ai"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

type fakeState struct {
	mu       sync.Mutex
	sessions map[string]types.ChatSession
	messages []types.ChatMessage
}

func newFakeState() *fakeState {
	return &fakeState{sessions: make(map[string]types.ChatSession)}
}

type fakeSessionStore struct {
	state        *fakeState
	addTokensErr func() error
}

func (s *fakeSessionStore) Create(ctx context.Context, data types.ChatSession) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	data.CreatedAt = time.Now().Unix()
	s.state.sessions[data.ID] = data
	return nil
}

func (s *fakeSessionStore) Get(ctx context.Context, sessionID string) (*types.ChatSession, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	session, ok := s.state.sessions[sessionID]
	if !ok {
		return nil, errors.NotFound("fakeSessionStore.Get", "no rows", nil)
	}
	return &session, nil
}

func (s *fakeSessionStore) AddTokens(ctx context.Context, sessionID string, tokens int64) error {
	if s.addTokensErr != nil {
		if err := s.addTokensErr(); err != nil {
			return err
		}
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	session, ok := s.state.sessions[sessionID]
	if !ok {
		return errors.NotFound("fakeSessionStore.AddTokens", "no rows", nil)
	}
	session.TotalTokens += tokens
	s.state.sessions[sessionID] = session
	return nil
}

func (s *fakeSessionStore) Archive(ctx context.Context, sessionID string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	session, ok := s.state.sessions[sessionID]
	if !ok {
		return errors.NotFound("fakeSessionStore.Archive", "no rows", nil)
	}
	session.ArchivedAt = time.Now().Unix()
	s.state.sessions[sessionID] = session
	return nil
}

type fakeMessageStore struct {
	state     *fakeState
	createErr func() error
}

func (s *fakeMessageStore) Create(ctx context.Context, data *types.ChatMessage) error {
	if s.createErr != nil {
		if err := s.createErr(); err != nil {
			return err
		}
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	data.SendTime = time.Now().Unix()
	s.state.messages = append(s.state.messages, *data)
	return nil
}

func (s *fakeMessageStore) ListLatest(ctx context.Context, sessionID string, limit uint64) ([]types.ChatMessage, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	var out []types.ChatMessage
	for i := len(s.state.messages) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		if s.state.messages[i].SessionID == sessionID {
			out = append(out, s.state.messages[i])
		}
	}
	return out, nil
}

func (s *fakeMessageStore) LatestByRole(ctx context.Context, sessionID string, role types.MessageUserRole) (*types.ChatMessage, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for i := len(s.state.messages) - 1; i >= 0; i-- {
		if s.state.messages[i].SessionID == sessionID && s.state.messages[i].Role == role {
			msg := s.state.messages[i]
			return &msg, nil
		}
	}
	return nil, errors.NotFound("fakeMessageStore.LatestByRole", "no rows", nil)
}

// fakeTx snapshots the state before running the callback and restores it on
// failure, mirroring a real rollback.
type fakeTx struct {
	state *fakeState
}

func (t *fakeTx) Transaction(ctx context.Context, next func(ctx context.Context) error) error {
	t.state.mu.Lock()
	sessionsCopy := make(map[string]types.ChatSession, len(t.state.sessions))
	for k, v := range t.state.sessions {
		sessionsCopy[k] = v
	}
	messagesCopy := append([]types.ChatMessage(nil), t.state.messages...)
	t.state.mu.Unlock()

	if err := next(ctx); err != nil {
		t.state.mu.Lock()
		t.state.sessions = sessionsCopy
		t.state.messages = messagesCopy
		t.state.mu.Unlock()
		return err
	}
	return nil
}

type fakeCompleter struct {
	mu     sync.Mutex
	gotReq ai.CompletionRequest
	result *ai.CompletionResult
	err    error
}

func (c *fakeCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResult, error) {
	c.mu.Lock()
	c.gotReq = req
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	result := *c.result
	return &result, nil
}

func (c *fakeCompleter) lastRequest() ai.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gotReq
}

type fakeSummarizer struct {
	summary string
	err     error
	got     []ai.SummaryMessage
}

func (s *fakeSummarizer) Summarize(ctx context.Context, messages []ai.SummaryMessage) (string, error) {
	s.got = messages
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

type testEnv struct {
	state       *fakeState
	sessions    *fakeSessionStore
	messages    *fakeMessageStore
	completer   *fakeCompleter
	summarizer  *fakeSummarizer
	persistence *MessagePersistenceService
	pipeline    *AgentPipeline
}

func newTestEnv() *testEnv {
	state := newFakeState()
	sessions := &fakeSessionStore{state: state}
	messages := &fakeMessageStore{state: state}
	completer := &fakeCompleter{result: &ai.CompletionResult{
		Text:       "hello there",
		ResponseID: "resp-new",
		Usage:      ai.Usage{InputTokens: 100, OutputTokens: 50},
	}}
	summarizer := &fakeSummarizer{summary: "user built a two-stage workflow"}

	persistence := NewMessagePersistenceService(sessions, messages, &fakeTx{state: state})
	pipeline := NewAgentPipeline(PipelineDeps{
		Persistence: persistence,
		AutoReset:   NewAutoResetManager(persistence, summarizer),
		Completer:   completer,
	})

	return &testEnv{
		state:       state,
		sessions:    sessions,
		messages:    messages,
		completer:   completer,
		summarizer:  summarizer,
		persistence: persistence,
		pipeline:    pipeline,
	}
}

func (e *testEnv) seedSession(id string, totalTokens int64) {
	e.state.sessions[id] = types.ChatSession{
		ID:          id,
		UserID:      "user-1",
		Mode:        types.SESSION_MODE_WORKFLOW,
		TotalTokens: totalTokens,
	}
}

func (e *testEnv) seedAssistantMessage(sessionID, responseID string, invocations types.ToolInvocations) {
	e.state.messages = append(e.state.messages, types.ChatMessage{
		ID:                 "msg-" + responseID,
		SessionID:          sessionID,
		UserID:             "user-1",
		Role:               types.USER_ROLE_ASSISTANT,
		Message:            "earlier reply",
		PreviousResponseID: responseID,
		ToolInvocations:    invocations,
	})
}

func testWorkflow() *types.Workflow {
	return &types.Workflow{
		ID:             "wf-1",
		UserID:         "user-1",
		Name:           "Release pipeline",
		Description:    "Ship features safely",
		Complexity:     "medium",
		MultiAgentChat: true,
		Stages: types.WorkflowStages{
			{Name: "Draft", MiniPrompts: []types.MiniPromptRef{{ID: "mp-1", Name: "Spec writer"}}},
			{Name: "Review"},
		},
	}
}

func TestPipelineCreatesSessionAndPersistsTurn(t *testing.T) {
	env := newTestEnv()

	result, err := env.pipeline.Execute(context.Background(), Request{
		UserID:   "user-1",
		Message:  "add a testing stage",
		Mode:     types.SESSION_MODE_WORKFLOW,
		Workflow: testWorkflow(),
	})
	require.NoError(t, err)

	assert.True(t, result.IsNewSession)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "assistant", result.Message.Role)
	assert.Equal(t, "hello there", result.Message.Content)
	assert.Equal(t, int64(150), result.TokenUsage.Total)

	session, ok := env.state.sessions[result.SessionID]
	require.True(t, ok)
	assert.Equal(t, int64(150), session.TotalTokens)

	require.Len(t, env.state.messages, 2)
	assert.Equal(t, types.USER_ROLE_USER, env.state.messages[0].Role)
	assert.Equal(t, "add a testing stage", env.state.messages[0].Message)
	assert.Equal(t, types.USER_ROLE_ASSISTANT, env.state.messages[1].Role)
	assert.Equal(t, "resp-new", env.state.messages[1].PreviousResponseID)

	// A fresh session has no chain to continue, so the full context rides
	// along with the user message.
	req := env.completer.lastRequest()
	assert.Empty(t, req.PreviousResponseID)
	assert.Contains(t, req.UserMessage, "[Context]")
	assert.Contains(t, req.UserMessage, "## Current Workflow")
}

func TestPipelineContinuesResponseChain(t *testing.T) {
	env := newTestEnv()
	env.seedSession("sess-1", 500)
	env.seedAssistantMessage("sess-1", "resp-old", nil)

	result, err := env.pipeline.Execute(context.Background(), Request{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "rename the first stage",
		Mode:      types.SESSION_MODE_WORKFLOW,
		Workflow:  testWorkflow(),
	})
	require.NoError(t, err)

	assert.False(t, result.IsNewSession)
	assert.Equal(t, "sess-1", result.SessionID)

	req := env.completer.lastRequest()
	assert.Equal(t, "resp-old", req.PreviousResponseID)
	// Chained turns lean on the provider's memory; no context re-send.
	assert.NotContains(t, req.UserMessage, "[Context]")
}

func TestPipelineBreaksChainAfterToolInvocations(t *testing.T) {
	env := newTestEnv()
	env.seedSession("sess-1", 500)
	env.seedAssistantMessage("sess-1", "resp-old", types.ToolInvocations{
		{Type: types.TOOL_INVOCATION_TYPE_RESULT, ToolName: "update_workflow", State: types.TOOL_INVOCATION_STATE_RESULT},
	})

	_, err := env.pipeline.Execute(context.Background(), Request{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "and now?",
		Mode:      types.SESSION_MODE_WORKFLOW,
		Workflow:  testWorkflow(),
	})
	require.NoError(t, err)

	req := env.completer.lastRequest()
	assert.Empty(t, req.PreviousResponseID)
	assert.Contains(t, req.UserMessage, "[Context]")
}

func TestPipelineAutoResetRedirectsTurn(t *testing.T) {
	env := newTestEnv()
	env.seedSession("sess-1", types.AutoResetTokenThreshold)
	env.seedAssistantMessage("sess-1", "resp-old", nil)

	result, err := env.pipeline.Execute(context.Background(), Request{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "keep going",
		Mode:      types.SESSION_MODE_WORKFLOW,
		Workflow:  testWorkflow(),
	})
	require.NoError(t, err)

	assert.True(t, result.AutoResetTriggered)
	assert.NotEqual(t, "sess-1", result.SessionID)

	old := env.state.sessions["sess-1"]
	assert.True(t, old.Archived())

	successor, ok := env.state.sessions[result.SessionID]
	require.True(t, ok)
	assert.Equal(t, types.SESSION_MODE_WORKFLOW, successor.Mode)
	assert.False(t, successor.Archived())

	// The successor's first message is the seeded summary, then the turn.
	var sessionMsgs []types.ChatMessage
	for _, m := range env.state.messages {
		if m.SessionID == result.SessionID {
			sessionMsgs = append(sessionMsgs, m)
		}
	}
	require.Len(t, sessionMsgs, 3)
	assert.Equal(t, types.USER_ROLE_SYSTEM, sessionMsgs[0].Role)
	assert.True(t, strings.HasPrefix(sessionMsgs[0].Message, SummaryMessagePrefix))
	assert.Contains(t, sessionMsgs[0].Message, "two-stage workflow")
	assert.Zero(t, sessionMsgs[0].TokenCount)

	// A summarized successor never continues the old chain.
	req := env.completer.lastRequest()
	assert.Empty(t, req.PreviousResponseID)
	assert.Contains(t, req.UserMessage, "[Context]")
}

func TestPipelineRecoversUpstreamValidationFailure(t *testing.T) {
	env := newTestEnv()
	env.completer.err = &ai.ValidationError{Cause: assert.AnError}

	result, err := env.pipeline.Execute(context.Background(), Request{
		UserID:   "user-1",
		Message:  "break the schema",
		Mode:     types.SESSION_MODE_WORKFLOW,
		Workflow: testWorkflow(),
	})
	require.NoError(t, err)

	assert.Equal(t, clarificationReply, result.Message.Content)
	assert.Zero(t, result.TokenUsage.Total)
	assert.Empty(t, result.Message.ToolInvocations)

	// The degraded turn is still recorded.
	require.Len(t, env.state.messages, 2)
	assert.Equal(t, clarificationReply, env.state.messages[1].Message)
}

func TestPipelineEstimatesTokensWhenUsageMissing(t *testing.T) {
	env := newTestEnv()
	env.completer.result = &ai.CompletionResult{
		Text:       "hello there",
		ResponseID: "resp-new",
	}

	result, err := env.pipeline.Execute(context.Background(), Request{
		UserID:   "user-1",
		Message:  "add a testing stage",
		Mode:     types.SESSION_MODE_WORKFLOW,
		Workflow: testWorkflow(),
	})
	require.NoError(t, err)

	// No provider usage, so the turn is charged from text estimates; the
	// session must keep progressing toward its rollover point regardless.
	assert.Positive(t, result.TokenUsage.Total)
	session := env.state.sessions[result.SessionID]
	assert.Equal(t, result.TokenUsage.Total, session.TotalTokens)
}

func TestPipelineReportsFailingStep(t *testing.T) {
	env := newTestEnv()
	env.messages.createErr = func() error {
		return errors.Constraint("fake", "duplicate message id", nil)
	}

	var failed []string
	pipeline := NewAgentPipeline(PipelineDeps{
		Persistence: env.persistence,
		AutoReset:   NewAutoResetManager(env.persistence, env.summarizer),
		Completer:   env.completer,
		OnStepError: func(step string) { failed = append(failed, step) },
	})

	_, err := pipeline.Execute(context.Background(), Request{
		UserID:   "user-1",
		Message:  "add a testing stage",
		Mode:     types.SESSION_MODE_WORKFLOW,
		Workflow: testWorkflow(),
	})
	require.Error(t, err)
	assert.Equal(t, []string{"PersistMessages"}, failed)
}

func TestPipelineRejectsArchivedSession(t *testing.T) {
	env := newTestEnv()
	env.seedSession("sess-1", 0)
	archived := env.state.sessions["sess-1"]
	archived.ArchivedAt = time.Now().Unix()
	env.state.sessions["sess-1"] = archived

	_, err := env.pipeline.Execute(context.Background(), Request{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "hello",
		Mode:      types.SESSION_MODE_WORKFLOW,
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestPipelineValidatesInput(t *testing.T) {
	env := newTestEnv()

	cases := []struct {
		name string
		req  Request
	}{
		{"missing user", Request{Message: "hi", Mode: types.SESSION_MODE_WORKFLOW}},
		{"blank message", Request{UserID: "user-1", Message: "   ", Mode: types.SESSION_MODE_WORKFLOW}},
		{"unknown mode", Request{UserID: "user-1", Message: "hi", Mode: "brainstorm"}},
		{"two subjects", Request{
			UserID: "user-1", Message: "hi", Mode: types.SESSION_MODE_WORKFLOW,
			Workflow: testWorkflow(), MiniPrompt: &types.MiniPrompt{ID: "mp-1"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.pipeline.Execute(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestPipelineRejectsConcurrentTurns(t *testing.T) {
	env := newTestEnv()
	env.seedSession("sess-1", 0)

	locker := NewSessionLocker()
	pipeline := NewAgentPipeline(PipelineDeps{
		Persistence: env.persistence,
		AutoReset:   NewAutoResetManager(env.persistence, env.summarizer),
		Completer:   env.completer,
		Locker:      locker,
	})

	require.True(t, locker.TryLock("sess-1"))
	defer locker.Unlock("sess-1")

	_, err := pipeline.Execute(context.Background(), Request{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "hello",
		Mode:      types.SESSION_MODE_WORKFLOW,
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSynthesizeReplyFromToolOutputs(t *testing.T) {
	results := []ai.ToolResult{
		{ToolName: "update_workflow", Output: json.RawMessage(`{"message":"Added stage Testing"}`)},
		{ToolName: "attach_mini_prompt", Output: json.RawMessage(`{"error":"mini prompt not found"}`)},
	}
	reply := synthesizeReply(results)
	assert.Equal(t, "Added stage Testing\n\nError: mini prompt not found", reply)

	assert.Equal(t, "Action completed successfully!", synthesizeReply([]ai.ToolResult{
		{ToolName: "noop", Output: json.RawMessage(`{}`)},
	}))
}

func TestNormalizeToolInvocations(t *testing.T) {
	// Executed results become stored tool-result records.
	withResults := &ai.CompletionResult{
		ToolResults: []ai.ToolResult{
			{ToolName: "update_workflow", CallID: "c1", Input: json.RawMessage(`{"name":"x"}`), Output: json.RawMessage(`{"message":"done"}`)},
		},
	}
	invocations := normalizeToolInvocations(withResults)
	require.Len(t, invocations, 1)
	assert.Equal(t, types.TOOL_INVOCATION_TYPE_RESULT, invocations[0].Type)
	assert.Equal(t, types.TOOL_INVOCATION_STATE_RESULT, invocations[0].State)
	assert.Equal(t, "update_workflow", invocations[0].ToolName)

	// Unexecuted calls are recorded as pending with no output.
	withCalls := &ai.CompletionResult{
		ToolCalls: []ai.ToolCall{
			{ToolName: "update_mini_prompt", CallID: "c2", Input: json.RawMessage(`{}`)},
		},
	}
	invocations = normalizeToolInvocations(withCalls)
	require.Len(t, invocations, 1)
	assert.Equal(t, types.TOOL_INVOCATION_TYPE_CALL, invocations[0].Type)
	assert.Equal(t, types.TOOL_INVOCATION_STATE_PENDING, invocations[0].State)
	assert.Nil(t, invocations[0].Output)

	assert.Nil(t, normalizeToolInvocations(&ai.CompletionResult{Text: "plain"}))
}
