// Package api serves games over HTTP: catalog and board editing, live
// play-test sessions and the per-game relay.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/config"
	"github.com/lukelpg/board-game-creator/internal/gamedata"
	"github.com/lukelpg/board-game-creator/internal/relay"
	"github.com/lukelpg/board-game-creator/internal/rules"
	"github.com/lukelpg/board-game-creator/internal/session"
	"github.com/lukelpg/board-game-creator/internal/store"
)

var (
	errGameExists = errors.New("game already exists")
	errBadRequest = errors.New("bad request")
)

// openGame is a loaded game with its live session. A game stays open until
// it is replaced, deleted or the handler is closed.
type openGame struct {
	sess *session.Session
	lua  *rules.LuaRule
	hub  *relay.Hub
	sub  chan relay.Message
	done chan struct{}
}

func (g *openGame) close() {
	if g.hub != nil {
		g.hub.Unsubscribe(g.sub)
		<-g.done
	}
	if g.lua != nil {
		g.lua.Close()
	}
}

// Handler handles game HTTP requests.
type Handler struct {
	repo store.Repo
	cfg  *config.Config
	log  *zap.Logger

	mu    sync.Mutex
	games map[string]*openGame
}

// NewHandler creates a handler over repo. A nil cfg uses the defaults and a
// nil log discards output.
func NewHandler(repo store.Repo, cfg *config.Config, log *zap.Logger) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		repo:  repo,
		cfg:   cfg,
		log:   log,
		games: map[string]*openGame{},
	}
}

// Close drops every open session.
func (h *Handler) Close() {
	h.mu.Lock()
	games := h.games
	h.games = map[string]*openGame{}
	h.mu.Unlock()
	for _, g := range games {
		g.close()
	}
}

// open returns the live game, loading it and building its rule chain on
// first use.
func (h *Handler) open(ctx context.Context, name string) (*openGame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if g, ok := h.games[name]; ok {
		return g, nil
	}

	stored, err := h.repo.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	// Play mutates the game, so the session works on its own copy.
	gd, err := copyGame(stored)
	if err != nil {
		return nil, err
	}

	g := &openGame{}
	chain := rules.Chain{rules.NewStackingRule(h.cfg.Rules.Stacking)}
	if h.cfg.Rules.LuaEnabled {
		script, ok, err := h.repo.RuleScript(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			lr, err := rules.NewLuaRule(script, h.log.With(zap.String("game", name)))
			if err != nil {
				return nil, fmt.Errorf("game %q: %w", name, err)
			}
			g.lua = lr
			chain = append(chain, lr)
		}
	}

	g.sess, err = session.Open(gd, session.Options{
		Rules:      chain,
		Log:        h.log.With(zap.String("game", name)),
		SpriteSize: h.cfg.Board.SpriteSize,
		CellSize:   h.cfg.Board.CellSize,
	})
	if err != nil {
		if g.lua != nil {
			g.lua.Close()
		}
		return nil, err
	}

	if h.cfg.Relay.Enabled {
		g.hub = relay.NewHub(h.log.With(zap.String("game", name)), h.cfg.Relay.Buffer)
		g.sub = g.hub.Subscribe()
		g.done = make(chan struct{})
		go h.applyRemote(name, g)
	}

	h.games[name] = g
	h.log.Debug("game opened", zap.String("game", name))
	return g, nil
}

func (h *Handler) applyRemote(name string, g *openGame) {
	defer close(g.done)
	for msg := range g.sub {
		ok, err := g.sess.ApplyRemote(msg)
		if err != nil {
			h.log.Warn("relay message not applied", zap.String("game", name), zap.Error(err))
			continue
		}
		if ok {
			h.log.Debug("relay placement applied", zap.String("game", name), zap.String("board", msg.Board), zap.String("name", msg.Name))
		}
	}
}

func (h *Handler) evict(name string) {
	h.mu.Lock()
	g, ok := h.games[name]
	delete(h.games, name)
	h.mu.Unlock()
	if ok {
		g.close()
	}
}

func copyGame(gd *gamedata.GameData) (*gamedata.GameData, error) {
	data, err := gamedata.Encode(gd)
	if err != nil {
		return nil, err
	}
	return decodeGame(gd.Name, data)
}

func decodeGame(name string, data []byte) (*gamedata.GameData, error) {
	out, err := gamedata.Decode(data)
	if err != nil {
		return nil, err
	}
	out.Name = name
	return out, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, code, map[string]any{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, session.ErrUnknownBoard),
		errors.Is(err, session.ErrUnknownDeck),
		errors.Is(err, session.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidName),
		errors.Is(err, session.ErrWrongLayout),
		errors.Is(err, board.ErrInvalidSize),
		errors.Is(err, gamedata.ErrNotObject),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errGameExists),
		errors.Is(err, session.ErrNoPlayers):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
