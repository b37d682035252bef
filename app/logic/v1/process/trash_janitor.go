package process

import (
	"context"
	"log/slog"
	"time"

	"github.com/promptdeck/promptdeck/pkg/register"
	"github.com/promptdeck/promptdeck/pkg/safe"
)

func init() {
	register.RegisterFunc(ProcessKey{}, setupTrashJanitor)
}

func setupTrashJanitor(p *Process) {
	spec := p.Core().Cfg().Janitor.CronSpec
	if _, err := p.Cron().AddFunc(spec, func() {
		safe.RunWithComponent(func() {
			RunTrashJanitor(p)
		}, "process.TrashJanitor")
	}); err != nil {
		panic(err)
	}
}

// RunTrashJanitor permanently deletes trashed library items that stayed in
// the trash past the retention window. Each table is purged independently so
// one failure does not block the others.
func RunTrashJanitor(p *Process) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*10)
	defer cancel()

	retention := time.Duration(p.Core().Cfg().Janitor.RetentionDays) * 24 * time.Hour
	deadline := time.Now().Add(-retention).Unix()

	store := p.Core().Store()
	var total int64

	if n, err := store.WorkflowStore().PurgeTrashedBefore(ctx, deadline); err != nil {
		slog.Error("trash janitor failed to purge workflows", slog.Any("error", err))
	} else {
		total += n
	}

	if n, err := store.MiniPromptStore().PurgeTrashedBefore(ctx, deadline); err != nil {
		slog.Error("trash janitor failed to purge mini prompts", slog.Any("error", err))
	} else {
		total += n
	}

	if n, err := store.FolderStore().PurgeTrashedBefore(ctx, deadline); err != nil {
		slog.Error("trash janitor failed to purge folders", slog.Any("error", err))
	} else {
		total += n
	}

	slog.Info("trash janitor completed",
		slog.Int64("purged", total),
		slog.Int64("deadline", deadline))
}
