package ops

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lukelpg/board-game-creator/internal/gamedata"
	"github.com/lukelpg/board-game-creator/internal/store"
)

// MigrateResult is the outcome for one game file.
type MigrateResult struct {
	Name    string
	Changed bool
	Err     error
}

// MigrateGames rewrites every game in dir in the canonical schema. Files
// already canonical are left untouched. A file that fails to decode is
// reported in its result and does not stop the others.
func MigrateGames(ctx context.Context, dir string, log *zap.Logger) ([]MigrateResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	repo, err := store.NewFileRepo(dir, log)
	if err != nil {
		return nil, err
	}
	names, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MigrateResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res := migrateOne(ctx, repo, name)
		if res.Err != nil {
			log.Warn("game not migrated", zap.String("game", name), zap.Error(res.Err))
		} else if res.Changed {
			log.Info("game migrated", zap.String("game", name))
		}
		out = append(out, res)
	}
	return out, nil
}

func migrateOne(ctx context.Context, repo *store.FileRepo, name string) MigrateResult {
	res := MigrateResult{Name: name}
	before, err := os.ReadFile(filepath.Join(repo.Dir(), name+".json"))
	if err != nil {
		res.Err = err
		return res
	}
	gd, err := repo.Load(ctx, name)
	if err != nil {
		res.Err = err
		return res
	}
	after, err := gamedata.Encode(gd)
	if err != nil {
		res.Err = fmt.Errorf("encode: %w", err)
		return res
	}
	if bytes.Equal(before, after) {
		return res
	}
	if err := repo.Save(ctx, gd); err != nil {
		res.Err = err
		return res
	}
	res.Changed = true
	return res
}
