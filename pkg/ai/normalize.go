package ai

import (
	"bytes"
	"encoding/json"
)

// ResponseTurn mirrors the nested turn-by-turn structure the provider returns
// alongside the top-level reply. Executed tool outputs appear as role "tool"
// turns whose content items are typed "tool-result".
type ResponseTurn struct {
	Role    string                `json:"role"`
	Content []ResponseContentItem `json:"content"`
}

type ResponseContentItem struct {
	Type     string          `json:"type"`
	Text     json.RawMessage `json:"text,omitempty"`
	ToolName string          `json:"tool_name,omitempty"`
	CallID   string          `json:"call_id,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Output   json.RawMessage `json:"output,omitempty"`
}

const contentItemToolResult = "tool-result"

// ExtractToolResults walks the nested turns and pulls out every executed
// tool result that carries a non-empty output, preserving tool name, call id,
// input and output.
func ExtractToolResults(turns []ResponseTurn) []ToolResult {
	var results []ToolResult
	for _, turn := range turns {
		if turn.Role != "tool" {
			continue
		}
		for _, item := range turn.Content {
			if item.Type != contentItemToolResult || emptyRaw(item.Output) {
				continue
			}
			results = append(results, ToolResult{
				ToolName: item.ToolName,
				CallID:   item.CallID,
				Input:    item.Input,
				Output:   item.Output,
			})
		}
	}
	return results
}

// NormalizeText returns the reply text as a plain string. The provider has
// been observed to hand back a structured object where a string is expected;
// those are serialized to indented JSON instead of being passed through raw.
func NormalizeText(raw json.RawMessage) string {
	if emptyRaw(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func emptyRaw(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`, "{}":
		return true
	}
	return false
}
