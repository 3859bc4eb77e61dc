package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lukelpg/board-game-creator/internal/httpmw"
	"github.com/lukelpg/board-game-creator/internal/store"
)

// Routes returns the full HTTP surface wrapped in the request id, recover
// and access log middleware.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Get("/", h.index)
	r.Get("/images/*", h.image)
	h.RegisterRoutes(r)

	return httpmw.Chain(
		r,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(h.log),
		httpmw.WithRecover(h.log),
	)
}

// RegisterRoutes mounts the game API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/games", func(r chi.Router) {
		r.Get("/", h.listGames)
		r.Post("/", h.createGame)

		r.Route("/{game}", func(r chi.Router) {
			r.Get("/", h.getGame)
			r.Put("/", h.putGame)
			r.Delete("/", h.deleteGame)
			r.Post("/save", h.saveGame)

			r.Route("/boards/{board}", func(r chi.Router) {
				r.Post("/place", h.place)
				r.Post("/remove-top", h.removeTop)
				r.Post("/clear-cell", h.clearCell)
				r.Post("/resize", h.resize)
				r.Post("/sections", h.addSection)
				r.Get("/objects", h.objects)
				r.Get("/cell", h.cell)
			})

			r.Route("/decks/{deck}", func(r chi.Router) {
				r.Post("/draw", h.draw)
				r.Post("/shuffle", h.shuffle)
				r.Post("/reset", h.resetDeck)
			})

			r.Get("/players", h.players)
			r.Post("/players", h.addPlayer)
			r.Post("/turn/end", h.endTurn)

			if h.cfg.Relay.Enabled {
				r.Get(h.cfg.Relay.Path, h.serveRelay)
			}
		})
	})
}

// image serves an entity's image_path from the images dir.
func (h *Handler) image(w http.ResponseWriter, r *http.Request) {
	path, err := store.ImagePath(h.cfg.ImagesDir, chi.URLParam(r, "*"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "board-game-creator",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
