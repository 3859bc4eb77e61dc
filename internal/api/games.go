package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lukelpg/board-game-creator/internal/gamedata"
	"github.com/lukelpg/board-game-creator/internal/store"
)

const maxGameBytes = 8 << 20

func (h *Handler) listGames(w http.ResponseWriter, r *http.Request) {
	names, err := h.repo.List(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": names})
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if !store.ValidName(name) {
		h.writeErr(w, r, fmt.Errorf("%w: %q", store.ErrInvalidName, req.Name))
		return
	}
	exists, err := h.repo.Exists(r.Context(), name)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if exists {
		h.writeErr(w, r, fmt.Errorf("%w: %q", errGameExists, name))
		return
	}
	if err := h.repo.Save(r.Context(), gamedata.New(name)); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.log.Info("game created", zap.String("game", name))
	writeJSON(w, http.StatusCreated, map[string]any{"name": name})
}

// getGame returns the live session state in the canonical schema, so
// unsaved play shows up.
func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	data, err := g.sess.Encode()
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// putGame replaces a game with the posted document. Any schema the decoder
// understands is accepted; the stored copy is canonical.
func (h *Handler) putGame(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "game")
	if !store.ValidName(name) {
		h.writeErr(w, r, fmt.Errorf("%w: %q", store.ErrInvalidName, name))
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxGameBytes))
	if err != nil {
		h.writeErr(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	gd, err := gamedata.NewDecoder(gamedata.WithLogger(h.log)).Decode(data)
	if err != nil {
		h.writeErr(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	gd.Name = name

	if err := h.repo.Save(r.Context(), gd); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.evict(name)
	h.log.Info("game replaced", zap.String("game", name), zap.Int("boards", len(gd.Boards)))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteGame(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "game")
	if err := h.repo.Delete(r.Context(), name); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.evict(name)
	h.log.Info("game deleted", zap.String("game", name))
	w.WriteHeader(http.StatusNoContent)
}

// saveGame persists the session, including live grid sizes, sections and
// free board placements. Grid occupants are not saved.
func (h *Handler) saveGame(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "game")
	g, err := h.open(r.Context(), name)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	data, err := g.sess.Encode()
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	gd, err := decodeGame(name, data)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.repo.Save(r.Context(), gd); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": name})
}
