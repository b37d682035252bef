package types

import (
	"encoding/json"
	"fmt"
)

type ChatMessage struct {
	ID        string          `db:"id" json:"id"`
	SessionID string          `db:"session_id" json:"session_id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Role      MessageUserRole `db:"role" json:"role"`
	Message   string          `db:"message" json:"message"`
	// PreviousResponseID is the opaque upstream handle that lets the next
	// request continue the provider-side conversation without replaying
	// history. Empty when the turn started a fresh provider thread.
	PreviousResponseID string          `db:"previous_response_id" json:"previous_response_id"`
	TokenCount         int64           `db:"token_count" json:"token_count"`
	ToolInvocations    ToolInvocations `db:"tool_invocations" json:"tool_invocations"`
	SendTime           int64           `db:"send_time" json:"send_time"`
}

type MessageUserRole int8

const (
	USER_ROLE_UNKNOWN   MessageUserRole = 0
	USER_ROLE_USER      MessageUserRole = 1
	USER_ROLE_ASSISTANT MessageUserRole = 2
	USER_ROLE_SYSTEM    MessageUserRole = 3
)

func (s MessageUserRole) String() string {
	switch s {
	case USER_ROLE_USER:
		return "user"
	case USER_ROLE_ASSISTANT:
		return "assistant"
	case USER_ROLE_SYSTEM:
		return "system"
	default:
		return "unknown"
	}
}

type ToolInvocationType string

const (
	TOOL_INVOCATION_TYPE_CALL   ToolInvocationType = "tool-call"
	TOOL_INVOCATION_TYPE_RESULT ToolInvocationType = "tool-result"
)

type ToolInvocationState string

const (
	TOOL_INVOCATION_STATE_PENDING ToolInvocationState = "pending"
	TOOL_INVOCATION_STATE_RESULT  ToolInvocationState = "result"
)

// ToolInvocation is the stored record of one function-call exchange with the
// upstream model. The Type tag discriminates executed results from calls that
// are still waiting for their outputs.
type ToolInvocation struct {
	Type     ToolInvocationType  `json:"type"`
	ToolName string              `json:"tool_name"`
	CallID   string              `json:"call_id"`
	Input    json.RawMessage     `json:"input,omitempty"`
	Output   json.RawMessage     `json:"output,omitempty"`
	State    ToolInvocationState `json:"state"`
}

type ToolInvocations []ToolInvocation

func (s ToolInvocations) String() string {
	if len(s) == 0 {
		return "[]"
	}
	raw, _ := json.Marshal(s)
	return string(raw)
}

func (s *ToolInvocations) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		return s.scanBytes(src)
	case string:
		return s.scanBytes([]byte(src))
	case nil:
		*s = nil
		return nil
	}

	return fmt.Errorf("pq: cannot convert %T to ToolInvocations", src)
}

func (s *ToolInvocations) scanBytes(src []byte) error {
	if len(src) == 0 {
		*s = ToolInvocations{}
		return nil
	}
	return json.Unmarshal(src, s)
}
