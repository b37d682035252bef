package types

type ChatSession struct {
	ID                string          `json:"id" db:"id"`
	UserID            string          `json:"user_id" db:"user_id"`
	WorkflowID        string          `json:"workflow_id" db:"workflow_id"`
	MiniPromptID      string          `json:"mini_prompt_id" db:"mini_prompt_id"`
	Mode              ChatSessionMode `json:"session_mode" db:"session_mode"`
	TotalTokens       int64           `json:"total_tokens" db:"total_tokens"`
	CreatedAt         int64           `json:"created_at" db:"created_at"`
	LatestMessageTime int64           `json:"latest_message_time" db:"latest_message_time"`
	// ArchivedAt is 0 while the session is live. Once an auto-reset supersedes
	// the session it is stamped and never cleared.
	ArchivedAt int64 `json:"archived_at" db:"archived_at"`
}

func (s *ChatSession) Archived() bool {
	return s.ArchivedAt > 0
}

type ChatSessionMode string

const (
	SESSION_MODE_WORKFLOW    ChatSessionMode = "workflow"
	SESSION_MODE_MINI_PROMPT ChatSessionMode = "mini_prompt"
)

// AutoResetTokenThreshold is the cumulative token budget after which a session
// is summarized and rolled over into a fresh successor.
const AutoResetTokenThreshold int64 = 100_000
