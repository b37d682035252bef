package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToolResults(t *testing.T) {
	turns := []ResponseTurn{
		{
			Role: "assistant",
			Content: []ResponseContentItem{
				{Type: "text", Text: json.RawMessage(`"thinking..."`)},
			},
		},
		{
			Role: "tool",
			Content: []ResponseContentItem{
				{
					Type:     "tool-result",
					ToolName: "update_workflow",
					CallID:   "call-1",
					Input:    json.RawMessage(`{"name":"v2"}`),
					Output:   json.RawMessage(`{"message":"renamed"}`),
				},
				// Empty outputs are skipped.
				{Type: "tool-result", ToolName: "noop", CallID: "call-2", Output: json.RawMessage(`null`)},
				{Type: "tool-result", ToolName: "noop2", CallID: "call-3", Output: json.RawMessage(`{}`)},
				// Non-result items are skipped regardless of payload.
				{Type: "text", Output: json.RawMessage(`{"message":"not a result"}`)},
			},
		},
	}

	results := ExtractToolResults(turns)
	require.Len(t, results, 1)
	assert.Equal(t, "update_workflow", results[0].ToolName)
	assert.Equal(t, "call-1", results[0].CallID)
	assert.JSONEq(t, `{"message":"renamed"}`, string(results[0].Output))

	assert.Empty(t, ExtractToolResults(nil))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "plain reply", NormalizeText(json.RawMessage(`"plain reply"`)))
	assert.Empty(t, NormalizeText(nil))
	assert.Empty(t, NormalizeText(json.RawMessage(`null`)))
	assert.Empty(t, NormalizeText(json.RawMessage(`""`)))

	// Structured payloads where text was expected come back pretty-printed.
	pretty := NormalizeText(json.RawMessage(`{"a":1}`))
	assert.Equal(t, "{\n  \"a\": 1\n}", pretty)

	// Unparseable content passes through untouched.
	assert.Equal(t, "not json", NormalizeText(json.RawMessage(`not json`)))
}

func TestUsageTotal(t *testing.T) {
	u := Usage{InputTokens: 120, OutputTokens: 30}
	assert.Equal(t, int64(150), u.Total())
}

func TestEstimateTokensFallsBackGracefully(t *testing.T) {
	// The exact count depends on the encoding being available offline; the
	// estimate just has to be positive and roughly proportional.
	n := EstimateTokens("hello world, this is a reasonably sized sentence.")
	assert.Greater(t, n, int64(0))
	assert.Less(t, n, int64(64))
}
