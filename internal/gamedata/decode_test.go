package gamedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
)

func gridOf(t *testing.T, gd *GameData, i int) *board.Spec {
	t.Helper()
	require.Greater(t, len(gd.Boards), i)
	spec, ok := gd.Boards[i].(*board.Spec)
	require.True(t, ok, "board %d is %T", i, gd.Boards[i])
	return spec
}

func TestDecode_LegacySingleBoardRectSections(t *testing.T) {
	gd, err := Decode([]byte(`{
		"name": "old",
		"board": {"w": 10, "h": 7, "sections": [{"x0": 2, "y0": 3, "x1": 4, "y1": 5, "kind": "card"}]}
	}`))
	require.NoError(t, err)

	spec := gridOf(t, gd, 0)
	assert.Equal(t, "Main", spec.Name)
	assert.Equal(t, 10, spec.Width)
	assert.Equal(t, 7, spec.Height)
	require.Len(t, spec.Sections, 1)

	sec := spec.Sections[0]
	assert.Equal(t, []geom.Point{geom.Pt(2, 3), geom.Pt(5, 3), geom.Pt(5, 6), geom.Pt(2, 6)}, sec.Points)
	assert.Equal(t, model.KindCard, sec.Kind)
	assert.Equal(t, "Area", sec.Name)
	assert.Equal(t, "#808080", sec.Outline)
	assert.Equal(t, "", sec.Fill)
}

func TestDecode_ShortAndLongKeys(t *testing.T) {
	gd, err := Decode([]byte(`{
		"name": "g",
		"boards": [
			{"name": "short", "w": 3, "h": 4, "sections": []},
			{"name": "long", "width": 5, "height": 6},
			{"mode": "grid", "name": "tagged", "width": 2, "height": 2, "sections": []}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, gd.Boards, 3)

	assert.Equal(t, &board.Spec{Name: "short", Width: 3, Height: 4}, gridOf(t, gd, 0))
	assert.Equal(t, &board.Spec{Name: "long", Width: 5, Height: 6}, gridOf(t, gd, 1))
	assert.Equal(t, &board.Spec{Name: "tagged", Width: 2, Height: 2}, gridOf(t, gd, 2))
}

func TestDecode_FloatsTruncated(t *testing.T) {
	gd, err := Decode([]byte(`{"boards": [{"name": "f", "width": 5.9, "height": 3.2,
		"sections": [{"x0": 1.7, "y0": 0, "x1": 1.2, "y1": 0.9}]}]}`))
	require.NoError(t, err)

	spec := gridOf(t, gd, 0)
	assert.Equal(t, 5, spec.Width)
	assert.Equal(t, 3, spec.Height)
	assert.Equal(t, geom.Rect{X0: 1, Y0: 0, X1: 1, Y1: 0}.Polygon(), spec.Sections[0].Points)
}

func TestDecode_SectionDispatch(t *testing.T) {
	gd, err := Decode([]byte(`{"boards": [{"name": "b", "width": 8, "height": 8, "sections": [
		{"name": "tri", "kind": "Piece", "points": [[0,0],[4,0],[0,4]], "outline": "#111111", "fill": "#222222"},
		{"name": "both", "points": [[1,1],[2,1],[2,2]], "x0": 5, "y0": 5, "x1": 6, "y1": 6},
		{"name": "nothing", "kind": "Token"},
		{"name": "weird", "kind": "Dragon", "x0": 0, "y0": 0, "x1": 0, "y1": 0}
	]}]}`))
	require.NoError(t, err)

	secs := gridOf(t, gd, 0).Sections
	require.Len(t, secs, 3)

	assert.Equal(t, board.SectionSpec{
		Name: "tri", Kind: model.KindPiece,
		Points:  []geom.Point{geom.Pt(0, 0), geom.Pt(4, 0), geom.Pt(0, 4)},
		Outline: "#111111", Fill: "#222222",
	}, secs[0])
	assert.Equal(t, []geom.Point{geom.Pt(1, 1), geom.Pt(2, 1), geom.Pt(2, 2)}, secs[1].Points, "polygon form wins over rectangle")
	assert.Equal(t, model.KindAny, secs[1].Kind)
	assert.Equal(t, "weird", secs[2].Name)
	assert.Equal(t, model.KindAny, secs[2].Kind, "unknown kind decodes as Any")
}

func TestDecode_MissingBoardsSynthesizesMain(t *testing.T) {
	docs := map[string]string{
		"empty boards":        `{"name": "x", "boards": []}`,
		"no boards key":       `{"name": "x"}`,
		"empty legacy board":  `{"name": "x", "board": {}}`,
		"null legacy board":   `{"name": "x", "board": null}`,
		"boards not an array": `{"name": "x", "boards": 7}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			gd, err := Decode([]byte(doc))
			require.NoError(t, err)
			require.Len(t, gd.Boards, 1)
			assert.Equal(t, &board.Spec{Name: "Main", Width: 8, Height: 8}, gridOf(t, gd, 0))
		})
	}
}

func TestDecode_UnknownShapeFallsBackKeepingNameAndSections(t *testing.T) {
	gd, err := Decode([]byte(`{"boards": [
		{"name": "odd", "mode": "spiral", "sections": [{"x0": 0, "y0": 0, "x1": 1, "y1": 1}]},
		{"name": "tg", "mode": "tilegrid", "shape": "hex", "cols": 0}
	]}`))
	require.NoError(t, err)

	odd := gridOf(t, gd, 0)
	assert.Equal(t, "odd", odd.Name)
	assert.Equal(t, 8, odd.Width)
	assert.Equal(t, 8, odd.Height)
	assert.Len(t, odd.Sections, 1)

	tg := gridOf(t, gd, 1)
	assert.Equal(t, "tg", tg.Name)
	assert.Equal(t, 8, tg.Width)
}

func TestDecode_NotAnObject(t *testing.T) {
	for _, doc := range []string{`[1, 2]`, `"game"`, `null`, `{oops`, ``} {
		_, err := Decode([]byte(doc))
		assert.ErrorIs(t, err, ErrNotObject, doc)
	}
}

func TestDecode_DeckDropsUnknownCardNames(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dec := NewDecoder(WithLogger(zap.New(core)))

	gd, err := dec.Decode([]byte(`{
		"name": "decks",
		"cards": [{"id": "a1", "name": "Ace", "description": "", "image_path": null, "attack": 1, "defense": 1}],
		"decks": [{"name": "Main", "cards": ["Ace", "Ghost"]}]
	}`))
	require.NoError(t, err)

	dk := gd.Deck("Main")
	require.NotNil(t, dk)
	require.Equal(t, 1, dk.Len())
	assert.Same(t, gd.Card("Ace"), dk.Original()[0])

	dropped := logs.FilterMessage("dropping unresolved deck card").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, "Ghost", dropped[0].ContextMap()["card"])
}

func TestDecode_DeckEmbeddedCards(t *testing.T) {
	gd, err := Decode([]byte(`{"decks": [{"name": "d", "cards": [
		{"id": "z", "name": "Loose", "attack": 2.8, "defense": 3}
	]}]}`))
	require.NoError(t, err)

	cards := gd.Deck("d").Original()
	require.Len(t, cards, 1)
	assert.Equal(t, "z", cards[0].ID)
	assert.Equal(t, 2, cards[0].Attack)
	assert.Nil(t, gd.Card("Loose"), "embedded cards do not join the catalog")
}

func TestDecode_CatalogDefaults(t *testing.T) {
	gd, err := Decode([]byte(`{
		"cards": [{"name": "NoID"}],
		"pieces": [{"name": "Knight", "points": [[0,0],[64,0],[32,64]]}],
		"tokens": [{"id": "t1", "name": "Coin", "image_path": "coin.png"}],
		"tiles": [{"name": "Grass"}]
	}`))
	require.NoError(t, err)

	assert.NotEmpty(t, gd.Card("NoID").ID)
	assert.True(t, gd.Piece("Knight").IsCustom())
	require.NotNil(t, gd.Token("Coin").ImagePath)
	assert.Equal(t, "coin.png", *gd.Token("Coin").ImagePath)

	grass := gd.Tile("Grass")
	assert.Equal(t, model.ShapeRect, grass.Shape)
	assert.Equal(t, "#808080", grass.Outline)
	assert.Equal(t, "#cccccc", grass.Fill)
	assert.Nil(t, grass.ImagePath)
}

func TestDecode_FreeBoardPlacements(t *testing.T) {
	gd, err := Decode([]byte(`{
		"cards": [{"name": "Dup"}],
		"tokens": [{"name": "Dup"}, {"name": "Coin"}],
		"decks": [{"name": "Draw", "cards": []}],
		"boards": [{"mode": "free", "name": "Table", "width": 1000, "height": 700,
			"sections": [{"name": "pile", "kind": "Deck", "points": [[1,1],[3,1],[3,3],[1,3]]}],
			"placed": [
				{"type": "Token", "name": "Dup", "x": 10, "y": 20},
				{"name": "Dup", "x": 30, "y": 40},
				{"name": "Draw", "x": 64, "y": 64},
				{"type": "Card", "name": "Coin", "x": 0, "y": 0},
				{"type": "Goblin", "name": "Coin", "x": 0, "y": 0},
				{"name": "Nobody", "x": 1, "y": 1},
				{"type": "Token", "name": "Coin", "x": 5.5}
			]}]
	}`))
	require.NoError(t, err)

	fb, ok := gd.Boards[0].(*board.FreeBoard)
	require.True(t, ok)
	assert.Equal(t, "Table", fb.Name)
	assert.Equal(t, 1000, fb.Width)
	assert.Equal(t, 700, fb.Height)

	objs := fb.Objects()
	require.Len(t, objs, 3)
	assert.Same(t, gd.Tokens[0], objs[0].Entity)
	assert.Same(t, gd.Cards[0], objs[1].Entity, "untyped lookup prefers cards")
	assert.Same(t, gd.Deck("Draw"), objs[2].Entity)

	sec := fb.SectionAt(100, 100)
	require.NotNil(t, sec)
	assert.Equal(t, model.KindDeck, sec.Kind)
}

func TestDecode_FreeBoardDefaultsSize(t *testing.T) {
	gd, err := Decode([]byte(`{"boards": [{"mode": "free"}]}`))
	require.NoError(t, err)

	fb := gd.Boards[0].(*board.FreeBoard)
	assert.Equal(t, "Board", fb.Name)
	assert.Equal(t, 800, fb.Width)
	assert.Equal(t, 600, fb.Height)
	assert.Empty(t, fb.Objects())
}

func TestDecode_TileGridPlacementsAreClones(t *testing.T) {
	gd, err := Decode([]byte(`{
		"tiles": [{"name": "Water", "shape": "hex", "points": [], "fill": "#0000ff"}],
		"boards": [{"mode": "tilegrid", "name": "Sea", "cols": 3, "rows": 2, "placed": [
			{"name": "Water", "row": 0, "col": 0},
			{"name": "Water", "row": 1, "col": 2},
			{"name": "Lava", "row": 1, "col": 1},
			{"name": "Water", "row": 9, "col": 9}
		]}, {"mode": "tilegrid", "cols": 1, "rows": 1}]
	}`))
	require.NoError(t, err)

	sea := gd.Boards[0].(*board.TileGrid)
	assert.Equal(t, "Sea", sea.Name)
	assert.Equal(t, model.ShapeRect, sea.Shape, "shape defaults to rect")

	placed := sea.Tiles()
	require.Len(t, placed, 2)
	assert.NotSame(t, gd.Tile("Water"), placed[0].Tile)
	assert.NotSame(t, placed[0].Tile, placed[1].Tile)
	assert.Equal(t, "#0000ff", placed[1].Tile.Fill)
	assert.Equal(t, 2, placed[1].Col)

	unnamed := gd.Boards[1].(*board.TileGrid)
	assert.Equal(t, "Tiles", unnamed.Name)
}
