package game_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/moonshade/internal/game"
	"github.com/meur/moonshade/internal/models"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		pos   int
		steps int
		size  int
		want  int
	}{
		{name: "forward inside board", pos: 3, steps: 2, size: 54, want: 5},
		{name: "forward past end", pos: 52, steps: 4, size: 54, want: 2},
		{name: "back from start", pos: 0, steps: -1, size: 54, want: 53},
		{name: "back several laps", pos: 5, steps: -113, size: 54, want: 0},
		{name: "forward several laps", pos: 5, steps: 108, size: 54, want: 5},
		{name: "zero steps", pos: 7, steps: 0, size: 54, want: 7},
		{name: "single tile board", pos: 0, steps: 6, size: 1, want: 0},
		{name: "empty board", pos: 3, steps: 1, size: 0, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, game.Wrap(tc.pos, tc.steps, tc.size))
		})
	}
}

func TestWrap_StaysOnBoardAndInverts(t *testing.T) {
	for _, size := range []int{1, 2, 7, 16, 54, 400} {
		for pos := 0; pos < size; pos += max(1, size/9) {
			for steps := -1000; steps <= 1000; steps += 37 {
				got := game.Wrap(pos, steps, size)
				require.GreaterOrEqual(t, got, 0)
				require.Less(t, got, size)
				require.Equal(t, pos, game.Wrap(got, -steps, size), "size=%d pos=%d steps=%d", size, pos, steps)
			}
		}
	}
}

func TestArrowStep(t *testing.T) {
	// 6 rows x 9 cols
	tests := []struct {
		name string
		pos  int
		dir  game.Direction
		want int
	}{
		{name: "up at top-left stays", pos: 0, dir: game.Up, want: 0},
		{name: "left at top-left stays", pos: 0, dir: game.Left, want: 0},
		{name: "right from top-left", pos: 0, dir: game.Right, want: 1},
		{name: "down from top-left", pos: 0, dir: game.Down, want: 9},
		{name: "right at row end stays", pos: 8, dir: game.Right, want: 8},
		{name: "left at row start stays", pos: 9, dir: game.Left, want: 9},
		{name: "down at bottom stays", pos: 50, dir: game.Down, want: 50},
		{name: "up from second row", pos: 12, dir: game.Up, want: 3},
		{name: "bottom-right right stays", pos: 53, dir: game.Right, want: 53},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, game.ArrowStep(tc.pos, 6, 9, tc.dir))
		})
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]game.Direction{
		"up":         game.Up,
		"ArrowDown":  game.Down,
		" LEFT ":     game.Left,
		"arrowright": game.Right,
	} {
		got, err := game.ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := game.ParseDirection("sideways")
	assert.ErrorIs(t, err, game.ErrInvalidDirection)
}

func TestClampPosition(t *testing.T) {
	assert.Equal(t, 0, game.ClampPosition(-3, 16))
	assert.Equal(t, 15, game.ClampPosition(40, 16))
	assert.Equal(t, 7, game.ClampPosition(7, 16))
	assert.Equal(t, 0, game.ClampPosition(7, 0))
}

func TestClampDim(t *testing.T) {
	assert.Equal(t, 1, game.ClampDim(0))
	assert.Equal(t, 20, game.ClampDim(99))
	assert.Equal(t, 6, game.ClampDim(6))
}

func TestResize(t *testing.T) {
	old := models.NewBoard(6, 9)
	for i := range old.Tiles {
		old.Tiles[i].Emoji = "🧩"
		old.Tiles[i].Note = "note"
		old.Tiles[i].Blocked = i%3 == 0
		old.Tiles[i].Color = "#123456"
	}

	t.Run("shrink keeps content by linear index", func(t *testing.T) {
		next := game.Resize(old, 4, 4)

		require.Len(t, next.Tiles, 16)
		assert.Equal(t, 4, next.Rows)
		assert.Equal(t, 4, next.Cols)
		for i, tile := range next.Tiles {
			src := old.Tiles[i]
			assert.Equal(t, src.Label, tile.Label)
			assert.Equal(t, src.Emoji, tile.Emoji)
			assert.Equal(t, src.Color, tile.Color)
			assert.Equal(t, src.Blocked, tile.Blocked)
			assert.Equal(t, src.Note, tile.Note)
			assert.NotEqual(t, src.ID, tile.ID, "tile ids are regenerated")
		}
	})

	t.Run("grow leaves new tiles blank", func(t *testing.T) {
		next := game.Resize(old, 7, 9)

		require.Len(t, next.Tiles, 63)
		assert.Equal(t, old.Tiles[53].Label, next.Tiles[53].Label)
		assert.Equal(t, "Tile 55", next.Tiles[54].Label)
		assert.Empty(t, next.Tiles[54].Color)
		assert.False(t, next.Tiles[54].Blocked)
	})

	t.Run("column change shifts content by index", func(t *testing.T) {
		next := game.Resize(old, 6, 5)

		// old row 1 col 0 is index 9; in a 5-wide board index 9 is row 1 col 4
		assert.Equal(t, old.Tiles[9].Label, next.Tiles[9].Label)
	})

	t.Run("identity resize preserves fields", func(t *testing.T) {
		next := game.Resize(old, 6, 9)

		require.Len(t, next.Tiles, len(old.Tiles))
		for i := range old.Tiles {
			want := old.Tiles[i]
			got := next.Tiles[i]
			got.ID = want.ID
			assert.Equal(t, want, got)
		}
	})
}

func TestStripe(t *testing.T) {
	b := models.NewBoard(2, 3)
	striped := game.Stripe(b)

	for i, tile := range striped.Tiles {
		if i%2 == 0 {
			assert.Equal(t, "#0f172a26", tile.Color)
		} else {
			assert.Equal(t, "#0f172a33", tile.Color)
		}
	}
	assert.Empty(t, b.Tiles[0].Color, "input board is not modified")
}

func TestParseMembers(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "Alice, Bob, Carol", want: []string{"Alice", "Bob", "Carol"}},
		{in: " Alice ,, ,Bob,", want: []string{"Alice", "Bob"}},
		{in: "", want: []string{}},
		{in: " , ", want: []string{}},
		{in: "Zed,Amy", want: []string{"Zed", "Amy"}},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, game.ParseMembers(tc.in))
		})
	}
}

func TestD6(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 600; i++ {
		n := game.D6()
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 6)
		seen[n] = true
	}
	assert.Len(t, seen, 6)
}

func TestWrap_ExtremeStepCounts(t *testing.T) {
	for _, size := range []int{1, 7, 16, 54, 400} {
		for _, pos := range []int{0, 5 % size, size - 1} {
			for _, steps := range []int{math.MaxInt, math.MaxInt - 1, math.MinInt + 1, math.MinInt} {
				got := game.Wrap(pos, steps, size)
				require.GreaterOrEqual(t, got, 0)
				require.Less(t, got, size)
				if steps == math.MinInt {
					// -MinInt is not representable
					continue
				}
				require.Equal(t, pos, game.Wrap(got, -steps, size), "size=%d pos=%d steps=%d", size, pos, steps)
			}
		}
	}

	// 2^63-1 leaves 25 modulo 54
	assert.Equal(t, 30, game.Wrap(5, math.MaxInt, 54))
	assert.Equal(t, 5, game.Wrap(30, -math.MaxInt, 54))
}
