package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
	"github.com/lukelpg/board-game-creator/internal/relay"
	"github.com/lukelpg/board-game-creator/internal/session"
)

// entityRef is how entities appear in responses: the same type and name
// pair a saved free board uses.
type entityRef struct {
	Type model.Kind `json:"type"`
	Name string     `json:"name"`
}

func refOf(e model.Entity) *entityRef {
	if e == nil {
		return nil
	}
	return &entityRef{Type: e.Kind(), Name: e.EntityName()}
}

func refsOf(es []model.Entity) []entityRef {
	out := make([]entityRef, 0, len(es))
	for _, e := range es {
		out = append(out, *refOf(e))
	}
	return out
}

type position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	boardName := chi.URLParam(r, "board")

	var req struct {
		Type string `json:"type"`
		Name string `json:"name"`
		position
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	mode, err := g.sess.Mode(boardName)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	kind := model.KindAny
	if req.Type != "" {
		k, ok := model.ParseKind(req.Type)
		if !ok {
			h.writeErr(w, r, fmt.Errorf("%w: unknown type %q", errBadRequest, req.Type))
			return
		}
		kind = k
	}
	e := g.sess.Lookup(kind, req.Name)
	if e == nil && kind == model.KindAny && mode == board.ModeTileGrid {
		if t := g.sess.Lookup(model.KindTile, req.Name); t != nil {
			e = t
		}
	}
	if e == nil {
		h.writeErr(w, r, fmt.Errorf("%w: %s %q", session.ErrUnknownEntity, kind, req.Name))
		return
	}
	if t, ok := e.(*model.Tile); ok {
		e = t.Clone()
	}

	placed, err := g.sess.Place(boardName, req.X, req.Y, e)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if placed && g.hub != nil {
		if mode == board.ModeTileGrid {
			g.hub.Publish(relay.PlaceTile(boardName, e.EntityName(), req.X, req.Y))
		} else {
			g.hub.Publish(relay.PlaceAt(boardName, e, req.X, req.Y))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"placed": placed})
}

func (h *Handler) removeTop(w http.ResponseWriter, r *http.Request) {
	g, pos, ok := h.boardRequest(w, r)
	if !ok {
		return
	}
	e, err := g.sess.RemoveTop(chi.URLParam(r, "board"), pos.X, pos.Y)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": refOf(e)})
}

func (h *Handler) clearCell(w http.ResponseWriter, r *http.Request) {
	g, pos, ok := h.boardRequest(w, r)
	if !ok {
		return
	}
	es, err := g.sess.ClearCell(chi.URLParam(r, "board"), pos.X, pos.Y)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": refsOf(es)})
}

func (h *Handler) boardRequest(w http.ResponseWriter, r *http.Request) (*openGame, position, bool) {
	var pos position
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return nil, pos, false
	}
	if err := decodeJSON(r, &pos); err != nil {
		h.writeErr(w, r, err)
		return nil, pos, false
	}
	return g, pos, true
}

func (h *Handler) objects(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		h.writeErr(w, r, fmt.Errorf("%w: x and y must be integers", errBadRequest))
		return
	}
	es, err := g.sess.ObjectsAt(chi.URLParam(r, "board"), x, y)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"objects": refsOf(es)})
}

// cell maps a pixel to the cell under it using the configured cell size.
func (h *Handler) cell(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	px, errX := strconv.Atoi(r.URL.Query().Get("px"))
	py, errY := strconv.Atoi(r.URL.Query().Get("py"))
	if errX != nil || errY != nil {
		h.writeErr(w, r, fmt.Errorf("%w: px and py must be integers", errBadRequest))
		return
	}
	x, y, ok, err := g.sess.CellAt(chi.URLParam(r, "board"), px, py)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"x": x, "y": y, "inside": ok})
}

func (h *Handler) resize(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := g.sess.ResizeGrid(chi.URLParam(r, "board"), req.Width, req.Height); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// addSection takes either a polygon or an inclusive cell rectangle.
func (h *Handler) addSection(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req struct {
		Name    string       `json:"name"`
		Kind    string       `json:"kind"`
		Points  []geom.Point `json:"points"`
		X0      *int         `json:"x0"`
		Y0      *int         `json:"y0"`
		X1      *int         `json:"x1"`
		Y1      *int         `json:"y1"`
		Outline string       `json:"outline"`
		Fill    string       `json:"fill"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	pts := req.Points
	if len(pts) == 0 {
		if req.X0 == nil || req.Y0 == nil || req.X1 == nil || req.Y1 == nil {
			h.writeErr(w, r, fmt.Errorf("%w: section needs points or x0/y0/x1/y1", errBadRequest))
			return
		}
		pts = geom.Rect{X0: *req.X0, Y0: *req.Y0, X1: *req.X1, Y1: *req.Y1}.Polygon()
	}
	kind, ok := model.ParseKind(req.Kind)
	if !ok || kind == model.KindTile {
		kind = model.KindAny
	}

	sec := board.SectionSpec{
		Name:    strings.TrimSpace(req.Name),
		Kind:    kind,
		Points:  pts,
		Outline: req.Outline,
		Fill:    req.Fill,
	}
	if sec.Name == "" {
		sec.Name = board.DefaultSectionName
	}
	if sec.Outline == "" {
		sec.Outline = board.DefaultSectionOutline
	}
	if err := g.sess.AddSection(chi.URLParam(r, "board"), sec); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sec)
}

func (h *Handler) draw(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	deck := chi.URLParam(r, "deck")
	c, err := g.sess.DrawCard(deck)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	n, _ := g.sess.DeckSize(deck)
	resp := map[string]any{"card": c, "remaining": n}
	if p, ok := g.sess.Current(); ok {
		resp["player"] = p.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) shuffle(w http.ResponseWriter, r *http.Request) {
	h.deckOp(w, r, (*session.Session).Shuffle)
}

func (h *Handler) resetDeck(w http.ResponseWriter, r *http.Request) {
	h.deckOp(w, r, (*session.Session).ResetDeck)
}

func (h *Handler) deckOp(w http.ResponseWriter, r *http.Request, op func(*session.Session, string) error) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	deck := chi.URLParam(r, "deck")
	if err := op(g.sess, deck); err != nil {
		h.writeErr(w, r, err)
		return
	}
	n, _ := g.sess.DeckSize(deck)
	writeJSON(w, http.StatusOK, map[string]any{"remaining": n})
}

func (h *Handler) players(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	resp := map[string]any{"players": g.sess.Players(), "current": nil}
	if p, ok := g.sess.Current(); ok {
		resp["current"] = p.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addPlayer(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.writeErr(w, r, fmt.Errorf("%w: player name is required", errBadRequest))
		return
	}
	writeJSON(w, http.StatusCreated, g.sess.AddPlayer(name))
}

func (h *Handler) endTurn(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	p, err := g.sess.EndTurn()
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"current": p.Name})
}

func (h *Handler) serveRelay(w http.ResponseWriter, r *http.Request) {
	g, err := h.open(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	g.hub.ServeHTTP(w, r)
}
