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
		provider.stores.ChatSessionStore = NewChatSessionStore(provider)
	})
}

type ChatSessionStore struct {
	CommonFields
}

func NewChatSessionStore(provider SqlProviderAchieve) *ChatSessionStore {
	repo := &ChatSessionStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT_SESSION)
	repo.SetAllColumns("id", "user_id", "workflow_id", "mini_prompt_id", "session_mode",
		"total_tokens", "created_at", "latest_message_time", "archived_at")
	return repo
}

func (s *ChatSessionStore) Create(ctx context.Context, data types.ChatSession) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.LatestMessageTime == 0 {
		data.LatestMessageTime = data.CreatedAt
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "workflow_id", "mini_prompt_id", "session_mode",
			"total_tokens", "created_at", "latest_message_time", "archived_at").
		Values(data.ID, data.UserID, data.WorkflowID, data.MiniPromptID, data.Mode,
			data.TotalTokens, data.CreatedAt, data.LatestMessageTime, data.ArchivedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("ChatSessionStore.Create", err)
	}
	return nil
}

func (s *ChatSessionStore) Get(ctx context.Context, sessionID string) (*types.ChatSession, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": sessionID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.ChatSession
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, dbError("ChatSessionStore.Get", err)
	}
	return &res, nil
}

func (s *ChatSessionStore) AddTokens(ctx context.Context, sessionID string, tokens int64) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": sessionID}).
		Set("total_tokens", sq.Expr("total_tokens + ?", tokens)).
		Set("latest_message_time", time.Now().Unix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("ChatSessionStore.AddTokens", err)
	}
	return nil
}

func (s *ChatSessionStore) Archive(ctx context.Context, sessionID string) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": sessionID}).
		Set("archived_at", time.Now().Unix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("ChatSessionStore.Archive", err)
	}
	return nil
}

func (s *ChatSessionStore) List(ctx context.Context, userID string, page, pageSize uint64) ([]types.ChatSession, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "archived_at": 0}).
		OrderBy("latest_message_time DESC")

	if page != types.NO_PAGING || pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.ChatSession
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, dbError("ChatSessionStore.List", err)
	}
	return list, nil
}

func (s *ChatSessionStore) Delete(ctx context.Context, userID, sessionID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"user_id": userID, "id": sessionID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("ChatSessionStore.Delete", err)
	}
	return nil
}
