package session

import (
	"encoding/json"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/config"
	"github.com/lukelpg/board-game-creator/internal/gamedata"
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
	"github.com/lukelpg/board-game-creator/internal/relay"
	"github.com/lukelpg/board-game-creator/internal/rules"
)

const testGame = `{
	"name": "demo",
	"cards": [{"id": "1", "name": "Ace"}, {"id": "2", "name": "King"}, {"id": "3", "name": "Queen"}],
	"pieces": [{"id": "p", "name": "Pawn"}],
	"tokens": [{"id": "t", "name": "Coin"}],
	"tiles": [{"name": "Grass", "shape": "rect", "points": []}],
	"decks": [{"name": "Draw", "cards": ["Ace", "King", "Queen"]}],
	"boards": [
		{"mode": "grid", "name": "Main", "width": 4, "height": 4,
		 "sections": [{"name": "hand", "kind": "Card", "points": [[0,0],[4,0],[4,1],[0,1]]}]},
		{"mode": "free", "name": "Table", "width": 800, "height": 600},
		{"mode": "tilegrid", "name": "Map", "shape": "hex", "cols": 3, "rows": 3}
	]
}`

func openTest(t *testing.T, opts Options) *Session {
	t.Helper()
	gd, err := gamedata.Decode([]byte(testGame))
	require.NoError(t, err)
	s, err := Open(gd, opts)
	require.NoError(t, err)
	return s
}

func TestPlace_GridHonoursSections(t *testing.T) {
	s := openTest(t, Options{})
	ace := s.Lookup(model.KindCard, "Ace")
	pawn := s.Lookup(model.KindPiece, "Pawn")
	require.NotNil(t, ace)
	require.NotNil(t, pawn)

	ok, err := s.Place("Main", 1, 0, ace)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Place("Main", 2, 0, pawn)
	require.NoError(t, err)
	assert.False(t, ok, "card-only section refuses a piece")

	ok, err = s.Place("Main", 2, 3, pawn)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Place("Main", 9, 9, pawn)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Place("Main", 0, 0, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	objs, err := s.ObjectsAt("Main", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.Entity{ace}, objs)
}

func TestPlace_UnknownBoard(t *testing.T) {
	s := openTest(t, Options{})
	_, err := s.Place("Nope", 0, 0, &model.Card{})
	assert.ErrorIs(t, err, ErrUnknownBoard)
	_, err = s.ObjectsAt("Nope", 0, 0)
	assert.ErrorIs(t, err, ErrUnknownBoard)
}

func TestPlace_RulesChain(t *testing.T) {
	lr, err := rules.NewLuaRule(`function can_place(b, x, y, kind) return not (b == "Table" and x < 100) end`, nil)
	require.NoError(t, err)
	defer lr.Close()

	s := openTest(t, Options{Rules: rules.Chain{
		rules.NewStackingRule(config.StackingRules{MaxHeight: 2}),
		lr,
	}})
	coin := s.Lookup(model.KindToken, "Coin")

	for i := 0; i < 2; i++ {
		ok, err := s.Place("Main", 3, 3, coin)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := s.Place("Main", 3, 3, coin)
	require.NoError(t, err)
	assert.False(t, ok, "stack height limit")

	ok, err = s.Place("Table", 50, 50, coin)
	require.NoError(t, err)
	assert.False(t, ok, "script refuses the left strip")

	ok, err = s.Place("Table", 150, 50, coin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFreeBoard_OverlapRemoveAndClear(t *testing.T) {
	s := openTest(t, Options{})
	ace := s.Lookup(model.KindCard, "Ace")
	coin := s.Lookup(model.KindToken, "Coin")

	_, _ = s.Place("Table", 10, 10, ace)
	_, _ = s.Place("Table", 10, 10, coin)

	objs, err := s.ObjectsAt("Table", 20, 20)
	require.NoError(t, err)
	assert.Equal(t, []model.Entity{ace, coin}, objs)

	top, err := s.RemoveTop("Table", 20, 20)
	require.NoError(t, err)
	assert.Same(t, coin, top)

	cleared, err := s.ClearCell("Table", 20, 20)
	require.NoError(t, err)
	assert.Equal(t, []model.Entity{ace}, cleared)

	top, err = s.RemoveTop("Table", 20, 20)
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestTileGrid_PlaceRemove(t *testing.T) {
	s := openTest(t, Options{})
	grass := s.Lookup(model.KindTile, "Grass")

	ok, err := s.Place("Map", 1, 2, grass)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Place("Map", 0, 0, s.Lookup(model.KindCard, "Ace"))
	assert.ErrorIs(t, err, ErrWrongLayout)

	objs, err := s.ObjectsAt("Map", 1, 2)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.NotSame(t, grass, objs[0], "tile slots hold clones")

	got, err := s.RemoveTop("Map", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Grass", got.EntityName())

	objs, err = s.ObjectsAt("Map", 1, 2)
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestGrid_ClearCellAndRemoveTopAreLIFO(t *testing.T) {
	s := openTest(t, Options{})
	pawn := s.Lookup(model.KindPiece, "Pawn")
	coin := s.Lookup(model.KindToken, "Coin")
	_, _ = s.Place("Main", 0, 2, pawn)
	_, _ = s.Place("Main", 0, 2, coin)

	top, err := s.RemoveTop("Main", 0, 2)
	require.NoError(t, err)
	assert.Same(t, coin, top)

	cleared, err := s.ClearCell("Main", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []model.Entity{pawn}, cleared)
}

func TestResizeAndSectionsFlowIntoSnapshot(t *testing.T) {
	s := openTest(t, Options{})

	require.NoError(t, s.ResizeGrid("Main", 6, 2))
	assert.ErrorIs(t, s.ResizeGrid("Main", 0, 2), board.ErrInvalidSize)
	assert.ErrorIs(t, s.ResizeGrid("Table", 6, 2), ErrWrongLayout)

	require.NoError(t, s.AddSection("Main", board.SectionSpec{Name: "deck", Kind: model.KindDeck, Points: geom.Rect{X0: 5, Y0: 0, X1: 5, Y1: 0}.Polygon(), Outline: "#808080"}))
	require.NoError(t, s.AddSection("Table", board.SectionSpec{Name: "mat", Kind: model.KindAny, Points: geom.Rect{X0: 0, Y0: 0, X1: 1, Y1: 1}.Polygon()}))
	assert.ErrorIs(t, s.AddSection("Map", board.SectionSpec{}), ErrWrongLayout)

	gd := s.Snapshot()
	spec := gd.Board("Main").(*board.Spec)
	assert.Equal(t, 6, spec.Width)
	assert.Equal(t, 2, spec.Height)
	require.Len(t, spec.Sections, 1, "resize drops old sections")
	assert.Equal(t, "deck", spec.Sections[0].Name)

	assert.Len(t, gd.Board("Table").(*board.FreeBoard).Sections(), 1)
}

func TestPlayersAndDecks(t *testing.T) {
	s := openTest(t, Options{Rand: rand.New(rand.NewPCG(1, 2))})

	_, err := s.DrawCard("Draw")
	assert.ErrorIs(t, err, ErrNoPlayers)
	_, err = s.EndTurn()
	assert.ErrorIs(t, err, ErrNoPlayers)
	_, ok := s.Current()
	assert.False(t, ok)

	alice := s.AddPlayer("alice")
	s.AddPlayer("bob")
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", cur.Name)

	c, err := s.DrawCard("Draw")
	require.NoError(t, err)
	assert.Equal(t, "Queen", c.Name, "draw takes the last card")
	assert.Empty(t, alice.Hand, "returned players are copies")
	cur, _ = s.Current()
	assert.Equal(t, []*model.Card{c}, cur.Hand)

	next, err := s.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, "bob", next.Name)

	_, _ = s.DrawCard("Draw")
	_, _ = s.DrawCard("Draw")
	c, err = s.DrawCard("Draw")
	require.NoError(t, err)
	assert.Nil(t, c, "empty deck yields nothing")
	players := s.Players()
	require.Len(t, players, 2)
	assert.Len(t, players[0].Hand, 1)
	assert.Len(t, players[1].Hand, 2)

	next, _ = s.EndTurn()
	assert.Equal(t, "alice", next.Name)

	require.NoError(t, s.ResetDeck("Draw"))
	n, err := s.DeckSize("Draw")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.Shuffle("Draw"))
	n, _ = s.DeckSize("Draw")
	assert.Equal(t, 3, n)

	_, err = s.DrawCard("Nope")
	assert.ErrorIs(t, err, ErrUnknownDeck)
	assert.ErrorIs(t, s.Shuffle("Nope"), ErrUnknownDeck)
}

func TestApplyRemote(t *testing.T) {
	s := openTest(t, Options{})

	ok, err := s.ApplyRemote(relay.Hello())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ApplyRemote(relay.Message{Act: relay.ActPlace, Board: "Main", Name: "Ace", X: 0, Y: 0})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ApplyRemote(relay.Message{Act: relay.ActPlace, Board: "Table", Type: model.KindToken, Name: "Coin", X: 5, Y: 5})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ApplyRemote(relay.PlaceTile("Map", "Grass", 2, 2))
	require.NoError(t, err)
	assert.True(t, ok)

	for _, msg := range []relay.Message{
		{Act: relay.ActPlace, Board: "Gone", Name: "Ace"},
		{Act: relay.ActPlace, Board: "Main", Name: "Ghost"},
		relay.PlaceTile("Map", "Lava", 0, 0),
	} {
		ok, err := s.ApplyRemote(msg)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	objs, _ := s.ObjectsAt("Map", 2, 2)
	require.Len(t, objs, 1)
	objs, _ = s.ObjectsAt("Table", 5, 5)
	assert.Equal(t, "Coin", objs[0].EntityName())
}

func TestOpen_InvalidGrid(t *testing.T) {
	gd := gamedata.New("bad")
	gd.Boards[0].(*board.Spec).Width = 0
	_, err := Open(gd, Options{})
	assert.ErrorIs(t, err, board.ErrInvalidSize)
}

func TestEncode_IncludesLivePlacements(t *testing.T) {
	s := openTest(t, Options{})
	_, err := s.Place("Table", 40, 60, s.Lookup(model.KindPiece, "Pawn"))
	require.NoError(t, err)
	require.NoError(t, s.ResizeGrid("Main", 5, 5))

	out, err := s.Encode()
	require.NoError(t, err)

	back, err := gamedata.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 5, back.Board("Main").(*board.Spec).Width)
	fb := back.Board("Table").(*board.FreeBoard)
	require.Len(t, fb.Objects(), 1)
	assert.Equal(t, "Pawn", fb.Objects()[0].Entity.EntityName())
}

func TestCellAtAndSpriteSize(t *testing.T) {
	s := openTest(t, Options{CellSize: 32, SpriteSize: 10})

	x, y, ok, err := s.CellAt("Main", 70, 5)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 0}, [2]int{x, y})
	assert.True(t, ok)

	_, _, ok, err = s.CellAt("Main", 200, 5)
	require.NoError(t, err)
	assert.False(t, ok, "past the 4-cell width")

	_, _, ok, err = s.CellAt("Map", 40, 40)
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, _, err = s.CellAt("Table", 0, 0)
	assert.ErrorIs(t, err, ErrWrongLayout)

	coin := s.Lookup(model.KindToken, "Coin")
	_, _ = s.Place("Table", 0, 0, coin)
	objs, _ := s.ObjectsAt("Table", 15, 5)
	assert.Empty(t, objs, "hit box shrinks with the sprite size")
	objs, _ = s.ObjectsAt("Table", 9, 9)
	assert.Len(t, objs, 1)
}

func TestSnapshot_KeepsSameNamedGrids(t *testing.T) {
	gd, err := gamedata.Decode([]byte(`{"boards": [
		{"w": 5, "h": 5},
		{"w": 6, "h": 7, "sections": [{"x0": 0, "y0": 0, "x1": 1, "y1": 1, "kind": "card"}]}
	]}`))
	require.NoError(t, err)
	require.Len(t, gd.Boards, 2)
	require.Equal(t, gd.Boards[0].LayoutName(), gd.Boards[1].LayoutName())

	s, err := Open(gd, Options{})
	require.NoError(t, err)
	require.NoError(t, s.ResizeGrid("Main", 8, 8))

	out := s.Snapshot()
	first := out.Boards[0].(*board.Spec)
	second := out.Boards[1].(*board.Spec)
	assert.Equal(t, 8, first.Width)
	assert.Equal(t, 8, first.Height)
	assert.Equal(t, 6, second.Width)
	assert.Equal(t, 7, second.Height)
	require.Len(t, second.Sections, 1)
	assert.Equal(t, model.KindCard, second.Sections[0].Kind)

	data, err := s.Encode()
	require.NoError(t, err)
	back, err := gamedata.Decode(data)
	require.NoError(t, err)
	require.Len(t, back.Boards, 2)
	assert.Equal(t, 6, back.Boards[1].(*board.Spec).Width)
	assert.Len(t, back.Boards[1].(*board.Spec).Sections, 1)
}

func TestPlayers_ConcurrentDrawAndRead(t *testing.T) {
	gd := gamedata.New("race")
	cards := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		gd.Cards = append(gd.Cards, &model.Card{Name: "c"})
		cards = append(cards, "c")
	}
	gd.Decks = append(gd.Decks, model.NewDeck("D", gd.Cards))
	s, err := Open(gd, Options{})
	require.NoError(t, err)
	s.AddPlayer("alice")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range cards {
			_, _ = s.DrawCard("D")
		}
	}()
	go func() {
		defer wg.Done()
		for range cards {
			if _, err := json.Marshal(s.Players()); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	players := s.Players()
	require.Len(t, players, 1)
	assert.Len(t, players[0].Hand, 500)
}
