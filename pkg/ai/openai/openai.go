package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/promptdeck/promptdeck/pkg/ai"
)

const NAME = "openai"

type Driver struct {
	client *openai.Client
	model  ai.ModelName
}

func NewClient(token, proxy string) *openai.Client {
	cfg := openai.DefaultConfig(token)
	if proxy != "" {
		cfg.BaseURL = proxy
	}

	return openai.NewClientWithConfig(cfg)
}

func New(token, proxy string, model ai.ModelName) *Driver {
	if model.ChatModel == "" {
		model.ChatModel = openai.GPT4o
	}
	if model.SummaryModel == "" {
		model.SummaryModel = openai.GPT4oMini
	}

	return &Driver{
		client: NewClient(token, proxy),
		model:  model,
	}
}

func (s *Driver) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResult, error) {
	slog.Debug("completion request", slog.String("driver", NAME),
		slog.String("session_id", req.Metadata.SessionID),
		slog.Bool("chained", req.PreviousResponseID != ""))

	chatReq := openai.ChatCompletionRequest{
		Model: s.model.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserMessage},
		},
		Tools: req.Tools,
		Store: req.Persist,
		Metadata: map[string]string{
			"session_id": req.Metadata.SessionID,
			"user_id":    req.Metadata.UserID,
		},
	}
	// Provider-side continuation: the stored-completion id of the prior turn
	// keys the upstream conversation state. Absent means a fresh thread.
	if req.PreviousResponseID != "" {
		chatReq.Metadata["previous_response_id"] = req.PreviousResponseID
	}

	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return &ai.CompletionResult{ResponseID: resp.ID}, nil
	}

	choice := resp.Choices[0]
	rawText, _ := json.Marshal(choice.Message.Content)

	result := &ai.CompletionResult{
		Text:       ai.NormalizeText(rawText),
		ResponseID: resp.ID,
		Usage: ai.Usage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
		ToolCalls: lo.Map(choice.Message.ToolCalls, func(tc openai.ToolCall, _ int) ai.ToolCall {
			return ai.ToolCall{
				ToolName: tc.Function.Name,
				CallID:   tc.ID,
				Input:    json.RawMessage(tc.Function.Arguments),
			}
		}),
	}

	result.Turns = []ai.ResponseTurn{
		{Role: "assistant", Content: []ai.ResponseContentItem{{Type: "text", Text: rawText}}},
	}

	return result, nil
}

func (s *Driver) Summarize(ctx context.Context, messages []ai.SummaryMessage) (string, error) {
	payload := strings.Builder{}
	for _, m := range messages {
		payload.WriteString(m.Role.String())
		payload.WriteString(": ")
		payload.WriteString(m.Content)
		payload.WriteString("\n")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model.SummaryModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: ai.SummarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload.String()},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyError maps the provider's 4xx schema-check responses onto the typed
// validation error the pipeline recovers from. Everything else passes through
// untouched and aborts the turn.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 400 &&
			(strings.Contains(apiErr.Message, "Invalid value") || strings.Contains(strings.ToLower(apiErr.Message), "validation")) {
			return &ai.ValidationError{Cause: err}
		}
	}
	return err
}
