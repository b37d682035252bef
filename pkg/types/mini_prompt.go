package types

type MiniPrompt struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	FolderID    string `json:"folder_id" db:"folder_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Content     string `json:"content" db:"content"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
	UpdatedAt   int64  `json:"updated_at" db:"updated_at"`
	DeletedAt   int64  `json:"deleted_at" db:"deleted_at"`
}

type UpdateMiniPromptArgs struct {
	Name        string
	Description string
	Content     string
	FolderID    string
}
