package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"

	"github.com/promptdeck/promptdeck/pkg/types"
)

type ModelName struct {
	ChatModel    string `toml:"chat_model"`
	SummaryModel string `toml:"summary_model"`
}

// CompletionRequest is one turn sent upstream. Only the current user message
// travels as a message; continuity across turns is carried by
// PreviousResponseID, the opaque handle the provider returned for the last
// persisted turn. An empty handle means "start a fresh provider-side thread".
type CompletionRequest struct {
	SystemPrompt       string
	UserMessage        string
	Tools              []openai.Tool
	PreviousResponseID string
	Persist            bool
	Metadata           RequestMetadata
}

type RequestMetadata struct {
	SessionID string
	UserID    string
}

type ToolCall struct {
	ToolName string
	CallID   string
	Input    json.RawMessage
}

type ToolResult struct {
	ToolName string
	CallID   string
	Input    json.RawMessage
	Output   json.RawMessage
}

type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u Usage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// CompletionResult is the normalized upstream reply. ToolCalls and ToolResults
// are mutually exclusive: a reply either requests tools (not yet executed) or
// carries the outputs of tools the provider already ran.
type CompletionResult struct {
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
	// Turns is the provider's nested turn-by-turn payload; executed tool
	// outputs are extracted from it with ExtractToolResults.
	Turns      []ResponseTurn
	Usage      Usage
	ResponseID string
}

type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

type SummaryMessage struct {
	Role    types.MessageUserRole
	Content string
}

type Summarizer interface {
	Summarize(ctx context.Context, messages []SummaryMessage) (string, error)
}

// ValidationError marks an upstream failure caused by malformed tool
// arguments. The pipeline recovers these in place instead of aborting,
// so the driver must classify them by type rather than leaving callers
// to sniff error messages.
type ValidationError struct {
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("upstream validation failure: %v", e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

const DefaultTokenEncoding = "cl100k_base"

// EstimateTokens approximates the token cost of text for accounting when the
// provider returned no usage figures. Falls back to a bytes/4 heuristic if the
// encoding is unavailable offline.
func EstimateTokens(text string) int64 {
	enc, err := tiktoken.GetEncoding(DefaultTokenEncoding)
	if err != nil {
		return int64(len(text) / 4)
	}
	return int64(len(enc.Encode(text, nil, nil)))
}

const SummarySystemPrompt = `You are summarizing a conversation between a user and an AI workflow-building assistant. Preserve key decisions, important context, and current progress. Keep the summary under 500 tokens.`
