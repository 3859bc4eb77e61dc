package gamedata

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
)

// ErrNotObject is returned when a save file is not a JSON object. It is the
// only decode failure; everything inside the object is read leniently.
var ErrNotObject = errors.New("game document is not a JSON object")

// Decoder reads every known save schema.
type Decoder struct {
	log *zap.Logger
}

type Option func(*Decoder)

// WithLogger reports dropped references and sections at Debug level.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.log = l
		}
	}
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{log: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Decode reads a document with a silent decoder.
func Decode(data []byte) (*GameData, error) {
	return NewDecoder().Decode(data)
}

func (d *Decoder) Decode(data []byte) (*GameData, error) {
	var doc object
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if doc == nil {
		return nil, ErrNotObject
	}

	gd := &GameData{Name: doc.str("name", "")}

	for _, raw := range doc.list("cards") {
		if c, ok := d.card(raw); ok {
			gd.Cards = append(gd.Cards, c)
		}
	}
	for _, raw := range doc.list("pieces") {
		o, ok := asObject(raw)
		if !ok {
			d.log.Debug("dropping piece", zap.ByteString("raw", raw))
			continue
		}
		p := model.NewPiece(o.str("name", ""), o.str("description", ""), o.strPtr("image_path"), o.points("points"))
		p.ID = o.str("id", p.ID)
		gd.Pieces = append(gd.Pieces, p)
	}
	for _, raw := range doc.list("tokens") {
		o, ok := asObject(raw)
		if !ok {
			d.log.Debug("dropping token", zap.ByteString("raw", raw))
			continue
		}
		t := model.NewToken(o.str("name", ""), o.str("description", ""), o.strPtr("image_path"), o.points("points"))
		t.ID = o.str("id", t.ID)
		gd.Tokens = append(gd.Tokens, t)
	}
	for _, raw := range doc.list("tiles") {
		o, ok := asObject(raw)
		if !ok {
			d.log.Debug("dropping tile", zap.ByteString("raw", raw))
			continue
		}
		t := model.NewTile(o.str("name", ""), o.str("shape", model.ShapeRect), o.points("points"))
		t.Outline = o.str("outline", model.DefaultTileOutline)
		t.Fill = o.str("fill", model.DefaultTileFill)
		t.ImagePath = o.strPtr("image")
		gd.Tiles = append(gd.Tiles, t)
	}
	for _, raw := range doc.list("decks") {
		if dk, ok := d.deck(gd, raw); ok {
			gd.Decks = append(gd.Decks, dk)
		}
	}

	if doc.has("boards") {
		for _, raw := range doc.list("boards") {
			o, ok := asObject(raw)
			if !ok {
				d.log.Debug("dropping board", zap.ByteString("raw", raw))
				continue
			}
			gd.Boards = append(gd.Boards, d.layout(gd, o, ""))
		}
	} else if legacy, ok := asObject(doc["board"]); ok {
		gd.Boards = append(gd.Boards, d.layout(gd, legacy, DefaultBoardName))
	}

	gd.ensureBoard()
	return gd, nil
}

func (d *Decoder) card(raw json.RawMessage) (*model.Card, bool) {
	o, ok := asObject(raw)
	if !ok {
		d.log.Debug("dropping card", zap.ByteString("raw", raw))
		return nil, false
	}
	atk, _ := o.num("attack")
	def, _ := o.num("defense")
	c := model.NewCard(o.str("name", ""), o.str("description", ""), o.strPtr("image_path"), atk, def)
	c.ID = o.str("id", c.ID)
	return c, true
}

// deck accepts card entries as embedded objects or as names of cards
// already in the catalog. Unknown names are dropped.
func (d *Decoder) deck(gd *GameData, raw json.RawMessage) (*model.Deck, bool) {
	o, ok := asObject(raw)
	if !ok {
		d.log.Debug("dropping deck", zap.ByteString("raw", raw))
		return nil, false
	}
	name := o.str("name", "")
	var cards []*model.Card
	for _, cr := range o.list("cards") {
		var ref string
		if err := json.Unmarshal(cr, &ref); err == nil {
			if c := gd.Card(ref); c != nil {
				cards = append(cards, c)
			} else {
				d.log.Debug("dropping unresolved deck card", zap.String("deck", name), zap.String("card", ref))
			}
			continue
		}
		if c, ok := d.card(cr); ok {
			cards = append(cards, c)
		}
	}
	return model.NewDeck(name, cards), true
}

// boardDetector claims a board entry by shape. Detectors are tried in
// order and the first match builds the layout.
type boardDetector struct {
	name  string
	match func(o object) bool
	build func(d *Decoder, gd *GameData, o object, name string) board.Layout
}

var boardDetectors = []boardDetector{
	{
		name:  "free",
		match: func(o object) bool { return o.mode() == board.ModeFree },
		build: (*Decoder).freeBoard,
	},
	{
		name: "tilegrid",
		match: func(o object) bool {
			return o.mode() == board.ModeTileGrid && o.positive("cols") && o.positive("rows")
		},
		build: (*Decoder).tileGrid,
	},
	{
		name:  "grid-short",
		match: func(o object) bool { return o.positive("w") && o.positive("h") },
		build: func(d *Decoder, _ *GameData, o object, name string) board.Layout {
			w, _ := o.num("w")
			h, _ := o.num("h")
			return d.gridSpec(o, name, w, h)
		},
	},
	{
		name:  "grid-long",
		match: func(o object) bool { return o.positive("width") && o.positive("height") },
		build: func(d *Decoder, _ *GameData, o object, name string) board.Layout {
			w, _ := o.num("width")
			h, _ := o.num("height")
			return d.gridSpec(o, name, w, h)
		},
	},
	{
		name:  "fallback",
		match: func(object) bool { return true },
		build: func(d *Decoder, _ *GameData, o object, name string) board.Layout {
			return d.gridSpec(o, name, DefaultGridSize, DefaultGridSize)
		},
	},
}

func (d *Decoder) layout(gd *GameData, o object, defName string) board.Layout {
	for _, det := range boardDetectors {
		if !det.match(o) {
			continue
		}
		if det.name == "fallback" {
			d.log.Debug("board shape not recognised, using default grid", zap.String("board", o.str("name", defName)))
		}
		return det.build(d, gd, o, defName)
	}
	return nil
}

func (d *Decoder) gridSpec(o object, defName string, w, h int) board.Layout {
	if defName == "" {
		defName = DefaultBoardName
	}
	return &board.Spec{
		Name:     o.str("name", defName),
		Width:    w,
		Height:   h,
		Sections: d.sections(o.list("sections")),
	}
}

func (d *Decoder) freeBoard(gd *GameData, o object, defName string) board.Layout {
	if defName == "" {
		defName = DefaultFreeBoardName
	}
	w, ok := o.num("width")
	if !ok || w <= 0 {
		w = DefaultFreeWidth
	}
	h, ok := o.num("height")
	if !ok || h <= 0 {
		h = DefaultFreeHeight
	}
	fb := board.NewFreeBoard(o.str("name", defName), w, h)
	for _, s := range d.sections(o.list("sections")) {
		fb.AddSection(s.Name, s.Kind, s.Points, s.Outline, s.Fill)
	}

	for _, raw := range o.list("placed") {
		rec, ok := asObject(raw)
		if !ok {
			continue
		}
		name := rec.str("name", "")
		x, okX := rec.num("x")
		y, okY := rec.num("y")
		if !okX || !okY {
			d.log.Debug("dropping free placement without position", zap.String("name", name))
			continue
		}
		kind := model.KindAny
		if rec.has("type") {
			k, ok := model.ParseKind(rec.str("type", ""))
			if !ok || k == model.KindAny {
				d.log.Debug("dropping free placement with unknown type", zap.String("name", name))
				continue
			}
			kind = k
		}
		e := gd.Lookup(kind, name)
		if e == nil {
			d.log.Debug("dropping unresolved free placement", zap.String("board", fb.Name), zap.String("name", name))
			continue
		}
		fb.Add(e, x, y)
	}
	return fb
}

func (d *Decoder) tileGrid(gd *GameData, o object, defName string) board.Layout {
	if defName == "" {
		defName = DefaultTileGridName
	}
	cols, _ := o.num("cols")
	rows, _ := o.num("rows")
	tg, err := board.NewTileGrid(o.str("name", defName), cols, rows, o.str("shape", model.ShapeRect))
	if err != nil {
		// match() already required positive dimensions.
		return d.gridSpec(o, defName, DefaultGridSize, DefaultGridSize)
	}
	for _, raw := range o.list("placed") {
		rec, ok := asObject(raw)
		if !ok {
			continue
		}
		name := rec.str("name", "")
		col, okC := rec.num("col")
		row, okR := rec.num("row")
		t := gd.Tile(name)
		if t == nil || !okC || !okR || !tg.Place(t, col, row) {
			d.log.Debug("dropping tile placement", zap.String("board", tg.Name), zap.String("tile", name))
		}
	}
	return tg
}

// sectionDetector turns one stored section into its polygon form.
type sectionDetector func(o object) ([]geom.Point, bool)

var sectionDetectors = []sectionDetector{
	func(o object) ([]geom.Point, bool) {
		if !o.has("points") {
			return nil, false
		}
		var pts []geom.Point
		if err := json.Unmarshal(o["points"], &pts); err != nil {
			return nil, false
		}
		return pts, true
	},
	func(o object) ([]geom.Point, bool) {
		x0, ok0 := o.num("x0")
		y0, ok1 := o.num("y0")
		x1, ok2 := o.num("x1")
		y1, ok3 := o.num("y1")
		if !ok0 || !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		return geom.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}.Polygon(), true
	},
}

func (d *Decoder) sections(raws []json.RawMessage) []board.SectionSpec {
	var out []board.SectionSpec
	for _, raw := range raws {
		o, ok := asObject(raw)
		if !ok {
			continue
		}
		var pts []geom.Point
		found := false
		for _, det := range sectionDetectors {
			if pts, found = det(o); found {
				break
			}
		}
		if !found {
			d.log.Debug("dropping section without geometry", zap.String("section", o.str("name", "")))
			continue
		}
		kind, ok := model.ParseKind(o.str("kind", ""))
		if !ok || kind == model.KindTile {
			kind = model.KindAny
		}
		out = append(out, board.SectionSpec{
			Name:    o.str("name", board.DefaultSectionName),
			Kind:    kind,
			Points:  pts,
			Outline: o.str("outline", board.DefaultSectionOutline),
			Fill:    o.str("fill", ""),
		})
	}
	return out
}

// object is a JSON object with lazily decoded members.
type object map[string]json.RawMessage

func asObject(raw json.RawMessage) (object, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return nil, false
	}
	return o, true
}

func (o object) has(k string) bool {
	_, ok := o[k]
	return ok
}

// str returns a string member, or def when it is missing or not a string.
func (o object) str(k, def string) string {
	raw, ok := o[k]
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

// strPtr returns nil for a missing, null or non-string member.
func (o object) strPtr(k string) *string {
	raw, ok := o[k]
	if !ok {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}

// num reads a number, truncating any fraction.
func (o object) num(k string) (int, bool) {
	raw, ok := o[k]
	if !ok {
		return 0, false
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return 0, false
	}
	return int(*f), true
}

func (o object) positive(k string) bool {
	n, ok := o.num(k)
	return ok && n > 0
}

func (o object) list(k string) []json.RawMessage {
	raw, ok := o[k]
	if !ok {
		return nil
	}
	var l []json.RawMessage
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil
	}
	return l
}

func (o object) points(k string) []geom.Point {
	raw, ok := o[k]
	if !ok {
		return nil
	}
	var pts []geom.Point
	if err := json.Unmarshal(raw, &pts); err != nil {
		return nil
	}
	return pts
}

func (o object) mode() board.Mode {
	return board.Mode(strings.ToLower(o.str("mode", "")))
}
