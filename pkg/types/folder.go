package types

type Folder struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	ParentID  string `json:"parent_id" db:"parent_id"`
	Name      string `json:"name" db:"name"`
	Position  int64  `json:"position" db:"position"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
	DeletedAt int64  `json:"deleted_at" db:"deleted_at"`
}
