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
		provider.stores.FolderStore = NewFolderStore(provider)
	})
}

type FolderStore struct {
	CommonFields
}

func NewFolderStore(provider SqlProviderAchieve) *FolderStore {
	repo := &FolderStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_FOLDER)
	repo.SetAllColumns("id", "user_id", "parent_id", "name", "position",
		"created_at", "updated_at", "deleted_at")
	return repo
}

func (s *FolderStore) Create(ctx context.Context, data types.Folder) error {
	now := time.Now().Unix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "parent_id", "name", "position",
			"created_at", "updated_at", "deleted_at").
		Values(data.ID, data.UserID, data.ParentID, data.Name, data.Position,
			data.CreatedAt, data.UpdatedAt, data.DeletedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("FolderStore.Create", err)
	}
	return nil
}

func (s *FolderStore) Get(ctx context.Context, userID, id string) (*types.Folder, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "id": id, "deleted_at": 0})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Folder
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, dbError("FolderStore.Get", err)
	}
	return &res, nil
}

func (s *FolderStore) Rename(ctx context.Context, userID, id, name string) error {
	query := sq.Update(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "id": id, "deleted_at": 0}).
		Set("name", name).
		Set("updated_at", time.Now().Unix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("FolderStore.Rename", err)
	}
	return nil
}

func (s *FolderStore) Move(ctx context.Context, userID, id, parentID string, position int64) error {
	query := sq.Update(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "id": id, "deleted_at": 0}).
		Set("parent_id", parentID).
		Set("position", position).
		Set("updated_at", time.Now().Unix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("FolderStore.Move", err)
	}
	return nil
}

func (s *FolderStore) List(ctx context.Context, userID, parentID string) ([]types.Folder, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "parent_id": parentID, "deleted_at": 0}).
		OrderBy("position ASC", "created_at ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.Folder
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, dbError("FolderStore.List", err)
	}
	return list, nil
}

func (s *FolderStore) SetDeleted(ctx context.Context, userID, id string, deletedAt int64) error {
	query := sq.Update(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "id": id}).
		Set("deleted_at", deletedAt).
		Set("updated_at", time.Now().Unix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return dbError("FolderStore.SetDeleted", err)
	}
	return nil
}

func (s *FolderStore) PurgeTrashedBefore(ctx context.Context, deadline int64) (int64, error) {
	query := sq.Delete(s.GetTable()).
		Where(sq.And{sq.Gt{"deleted_at": 0}, sq.Lt{"deleted_at": deadline}})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	res, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return 0, dbError("FolderStore.PurgeTrashedBefore", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
