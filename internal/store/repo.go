// Package store keeps one JSON document per game.
package store

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lukelpg/board-game-creator/internal/gamedata"
)

var (
	ErrNotFound    = errors.New("game not found")
	ErrInvalidName = errors.New("invalid name")
)

// Repo is the interface for game persistence.
type Repo interface {
	// List returns the stored game names, sorted.
	List(ctx context.Context) ([]string, error)

	// Load returns the game, or ErrNotFound.
	Load(ctx context.Context, name string) (*gamedata.GameData, error)

	// Save persists the game under gd.Name.
	Save(ctx context.Context, gd *gamedata.GameData) error

	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)

	// RuleScript returns the game's placement script. ok is false when the
	// game has none.
	RuleScript(ctx context.Context, name string) (script string, ok bool, err error)
}

var (
	_ Repo = (*MemoryRepo)(nil)
	_ Repo = (*FileRepo)(nil)
)

// ValidName reports whether name can be used as a game file name.
func ValidName(name string) bool {
	if name == "" || len(name) > 128 || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == ' ' || r == '.':
		default:
			return false
		}
	}
	return true
}

// ImagePath resolves an image reference stored on an entity to a file
// under imagesDir. References that escape the directory are rejected.
func ImagePath(imagesDir, ref string) (string, error) {
	if ref == "" || filepath.IsAbs(ref) || strings.Contains(ref, `\`) {
		return "", ErrInvalidName
	}
	clean := filepath.Clean(filepath.FromSlash(ref))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidName
	}
	return filepath.Join(imagesDir, clean), nil
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	games   map[string]*gamedata.GameData
	scripts map[string]string
}

// NewMemoryRepo creates a new in-memory game repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		games:   make(map[string]*gamedata.GameData),
		scripts: make(map[string]string),
	}
}

func (r *MemoryRepo) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.games))
	for name := range r.games {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryRepo) Load(ctx context.Context, name string) (*gamedata.GameData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gd, ok := r.games[name]
	if !ok {
		return nil, ErrNotFound
	}
	return gd, nil
}

func (r *MemoryRepo) Save(ctx context.Context, gd *gamedata.GameData) error {
	if !ValidName(gd.Name) {
		return ErrInvalidName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[gd.Name] = gd
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[name]; !ok {
		return ErrNotFound
	}
	delete(r.games, name)
	delete(r.scripts, name)
	return nil
}

func (r *MemoryRepo) Exists(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.games[name]
	return ok, nil
}

// SetRuleScript attaches a placement script to a game.
func (r *MemoryRepo) SetRuleScript(name, script string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[name] = script
}

func (r *MemoryRepo) RuleScript(ctx context.Context, name string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scripts[name]
	return s, ok, nil
}
