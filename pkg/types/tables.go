package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "pd_"

const (
	TABLE_CHAT_SESSION = TableName("chat_session")
	TABLE_CHAT_MESSAGE = TableName("chat_message")
	TABLE_WORKFLOW     = TableName("workflow")
	TABLE_MINI_PROMPT  = TableName("mini_prompt")
	TABLE_FOLDER       = TableName("folder")
	TABLE_ACCESS_TOKEN = TableName("access_token")
)

const NO_PAGING uint64 = 0
