package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lukelpg/board-game-creator/internal/gamedata"
)

const (
	gameExt   = ".json"
	scriptExt = ".lua"
)

// FileRepo persists games as <dir>/<name>.json. Loaded games are cached;
// writes go through a temp file and a rename so a crash never leaves a
// half-written save.
type FileRepo struct {
	mu    sync.RWMutex
	dir   string
	cache map[string]*gamedata.GameData
	dec   *gamedata.Decoder
	log   *zap.Logger
}

// NewFileRepo creates a new file-based game repository rooted at dir.
func NewFileRepo(dir string, log *zap.Logger) (*FileRepo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create games dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileRepo{
		dir:   dir,
		cache: make(map[string]*gamedata.GameData),
		dec:   gamedata.NewDecoder(gamedata.WithLogger(log)),
		log:   log,
	}, nil
}

// Dir returns the directory the repo reads and writes.
func (r *FileRepo) Dir() string { return r.dir }

func (r *FileRepo) filePath(name, ext string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(r.dir, name+ext), nil
}

func (r *FileRepo) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), gameExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), gameExt)
		if ValidName(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load returns the game, reading and decoding the file on first use.
func (r *FileRepo) Load(ctx context.Context, name string) (*gamedata.GameData, error) {
	path, err := r.filePath(name, gameExt)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	if gd, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return gd, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if gd, ok := r.cache[name]; ok {
		return gd, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read game %q: %w", name, err)
	}

	gd, err := r.dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode game %q: %w", name, err)
	}
	// The file name is authoritative for where the game lives.
	gd.Name = name

	r.cache[name] = gd
	return gd, nil
}

// Save writes the game in canonical form.
func (r *FileRepo) Save(ctx context.Context, gd *gamedata.GameData) error {
	path, err := r.filePath(gd.Name, gameExt)
	if err != nil {
		return err
	}
	data, err := gamedata.Encode(gd)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("save game %q: %w", gd.Name, err)
	}
	r.cache[gd.Name] = gd
	r.log.Debug("game saved", zap.String("game", gd.Name), zap.Int("bytes", len(data)))
	return nil
}

func (r *FileRepo) Delete(ctx context.Context, name string) error {
	path, err := r.filePath(name, gameExt)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cache, name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete game %q: %w", name, err)
	}
	return nil
}

func (r *FileRepo) Exists(ctx context.Context, name string) (bool, error) {
	path, err := r.filePath(name, gameExt)
	if err != nil {
		return false, err
	}
	r.mu.RLock()
	_, cached := r.cache[name]
	r.mu.RUnlock()
	if cached {
		return true, nil
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// RuleScript reads <dir>/<name>.lua if present.
func (r *FileRepo) RuleScript(ctx context.Context, name string) (string, bool, error) {
	path, err := r.filePath(name, scriptExt)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read rule script %q: %w", name, err)
	}
	return string(data), true, nil
}

// Invalidate drops a cached game so the next Load rereads the file.
func (r *FileRepo) Invalidate(name string) {
	r.mu.Lock()
	delete(r.cache, name)
	r.mu.Unlock()
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
