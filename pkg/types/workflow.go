package types

import (
	"encoding/json"
	"fmt"
)

type Workflow struct {
	ID             string         `json:"id" db:"id"`
	UserID         string         `json:"user_id" db:"user_id"`
	FolderID       string         `json:"folder_id" db:"folder_id"`
	Name           string         `json:"name" db:"name"`
	Description    string         `json:"description" db:"description"`
	Complexity     string         `json:"complexity" db:"complexity"`
	MultiAgentChat bool           `json:"multi_agent_chat" db:"multi_agent_chat"`
	Stages         WorkflowStages `json:"stages" db:"stages"`
	CreatedAt      int64          `json:"created_at" db:"created_at"`
	UpdatedAt      int64          `json:"updated_at" db:"updated_at"`
	DeletedAt      int64          `json:"deleted_at" db:"deleted_at"`
}

type WorkflowStage struct {
	Name        string          `json:"name"`
	MiniPrompts []MiniPromptRef `json:"mini_prompts"`
}

type MiniPromptRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type WorkflowStages []WorkflowStage

func (s WorkflowStages) String() string {
	if len(s) == 0 {
		return "[]"
	}
	raw, _ := json.Marshal(s)
	return string(raw)
}

func (s *WorkflowStages) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		return s.scanBytes(src)
	case string:
		return s.scanBytes([]byte(src))
	case nil:
		*s = nil
		return nil
	}

	return fmt.Errorf("pq: cannot convert %T to WorkflowStages", src)
}

func (s *WorkflowStages) scanBytes(src []byte) error {
	if len(src) == 0 {
		*s = WorkflowStages{}
		return nil
	}
	return json.Unmarshal(src, s)
}

type UpdateWorkflowArgs struct {
	Name           string
	Description    string
	Complexity     string
	MultiAgentChat bool
	Stages         WorkflowStages
	FolderID       string
}
