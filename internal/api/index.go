package api

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/lukelpg/board-game-creator/internal/page"
)

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	games, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Sugar().Errorw("list games for index", "error", err)
		http.Error(w, "failed to list games", http.StatusInternalServerError)
		return
	}
	templ.Handler(page.GameIndex(games, h.cfg.Relay.Enabled)).ServeHTTP(w, r)
}
