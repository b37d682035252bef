package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/promptdeck/promptdeck/pkg/register"
	"github.com/promptdeck/promptdeck/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ChatMessageStore = NewChatMessageStore(provider)
	})
}

type ChatMessageStore struct {
	CommonFields
}

func NewChatMessageStore(provider SqlProviderAchieve) *ChatMessageStore {
	repo := &ChatMessageStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT_MESSAGE)
	repo.SetAllColumns("id", "session_id", "user_id", "role", "message",
		"previous_response_id", "token_count", "tool_invocations", "send_time")
	return repo
}

func (s *ChatMessageStore) Create(ctx context.Context, data *types.ChatMessage) error {
	if data.SendTime == 0 {
		data.SendTime = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "session_id", "user_id", "role", "message",
			"previous_response_id", "token_count", "tool_invocations", "send_time").
		Values(data.ID, data.SessionID, data.UserID, data.Role, data.Message,
			data.PreviousResponseID, data.TokenCount, data.ToolInvocations.String(), data.SendTime)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("ChatMessageStore.Create", err)
	}
	return nil
}

func (s *ChatMessageStore) ListLatest(ctx context.Context, sessionID string, limit uint64) ([]types.ChatMessage, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("send_time DESC", "id DESC").
		Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.ChatMessage
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, dbError("ChatMessageStore.ListLatest", err)
	}
	return list, nil
}

func (s *ChatMessageStore) LatestByRole(ctx context.Context, sessionID string, role types.MessageUserRole) (*types.ChatMessage, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"session_id": sessionID, "role": role}).
		OrderBy("send_time DESC", "id DESC").
		Limit(1)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var msg types.ChatMessage
	if err = s.GetReplica(ctx).Get(&msg, queryString, args...); err != nil {
		return nil, dbError("ChatMessageStore.LatestByRole", err)
	}
	return &msg, nil
}

func (s *ChatMessageStore) DeleteSessionMessages(ctx context.Context, sessionID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"session_id": sessionID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("ChatMessageStore.DeleteSessionMessages", err)
	}
	return nil
}
