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
		provider.stores.MiniPromptStore = NewMiniPromptStore(provider)
	})
}

type MiniPromptStore struct {
	CommonFields
}

func NewMiniPromptStore(provider SqlProviderAchieve) *MiniPromptStore {
	repo := &MiniPromptStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_MINI_PROMPT)
	repo.SetAllColumns("id", "user_id", "folder_id", "name", "description", "content",
		"created_at", "updated_at", "deleted_at")
	return repo
}

func (s *MiniPromptStore) Create(ctx context.Context, data types.MiniPrompt) error {
	now := time.Now().Unix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "folder_id", "name", "description", "content",
			"created_at", "updated_at", "deleted_at").
		Values(data.ID, data.UserID, data.FolderID, data.Name, data.Description, data.Content,
			data.CreatedAt, data.UpdatedAt, data.DeletedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("MiniPromptStore.Create", err)
	}
	return nil
}

func (s *MiniPromptStore) Get(ctx context.Context, userID, id string) (*types.MiniPrompt, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "id": id, "deleted_at": 0})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.MiniPrompt
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, dbError("MiniPromptStore.Get", err)
	}
	return &res, nil
}

func (s *MiniPromptStore) Update(ctx context.Context, userID, id string, args types.UpdateMiniPromptArgs) error {
	query := sq.Update(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "id": id, "deleted_at": 0}).
		Set("name", args.Name).
		Set("description", args.Description).
		Set("content", args.Content).
		Set("folder_id", args.FolderID).
		Set("updated_at", time.Now().Unix())

	queryString, sqlArgs, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, sqlArgs...); err != nil {
		return dbError("MiniPromptStore.Update", err)
	}
	return nil
}

func (s *MiniPromptStore) List(ctx context.Context, userID, folderID string, page, pageSize uint64) ([]types.MiniPrompt, error) {
	cond := sq.Eq{"user_id": userID, "deleted_at": 0}
	if folderID != "" {
		cond["folder_id"] = folderID
	}
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(cond).OrderBy("updated_at DESC")

	if page != types.NO_PAGING || pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.MiniPrompt
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, dbError("MiniPromptStore.List", err)
	}
	return list, nil
}

// ListAvailable returns the user's live mini-prompts most recently updated
// first, bounded so the chat pipeline can offer them as context without
// unbounded prompt growth.
func (s *MiniPromptStore) ListAvailable(ctx context.Context, userID string, limit uint64) ([]types.MiniPrompt, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "deleted_at": 0}).
		OrderBy("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.MiniPrompt
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, dbError("MiniPromptStore.ListAvailable", err)
	}
	return list, nil
}

func (s *MiniPromptStore) SetDeleted(ctx context.Context, userID, id string, deletedAt int64) error {
	query := sq.Update(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "id": id}).
		Set("deleted_at", deletedAt).
		Set("updated_at", time.Now().Unix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("MiniPromptStore.SetDeleted", err)
	}
	return nil
}

func (s *MiniPromptStore) ListTrashed(ctx context.Context, userID string) ([]types.MiniPrompt, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.And{sq.Eq{"user_id": userID}, sq.Gt{"deleted_at": 0}}).
		OrderBy("deleted_at DESC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.MiniPrompt
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, dbError("MiniPromptStore.ListTrashed", err)
	}
	return list, nil
}

func (s *MiniPromptStore) PurgeTrashedBefore(ctx context.Context, deadline int64) (int64, error) {
	query := sq.Delete(s.GetTable()).
		Where(sq.And{sq.Gt{"deleted_at": 0}, sq.Lt{"deleted_at": deadline}})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	res, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return 0, dbError("MiniPromptStore.PurgeTrashedBefore", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
