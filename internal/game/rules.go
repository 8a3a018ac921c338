package game

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/meur/moonshade/internal/models"
)

var ErrInvalidDirection = errors.New("invalid direction")

// Direction is an arrow-key step on the grid
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection accepts "up" style names as well as browser key names
// such as "ArrowUp".
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "arrow"))
	switch d {
	case Up, Down, Left, Right:
		return d, nil
	}
	return "", ErrInvalidDirection
}

// Roller draws a die result
type Roller func() int

// D6 draws uniformly from 1..6
func D6() int {
	return rand.Intn(6) + 1
}

// Clamp bounds n to [lo, hi]
func Clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}

// ClampDim bounds a board dimension to the editor's allowed range
func ClampDim(n int) int {
	return Clamp(n, models.MinDim, models.MaxDim)
}

// ClampPosition bounds a team position to a board of the given size
func ClampPosition(pos, size int) int {
	if size <= 0 {
		return 0
	}
	return Clamp(pos, 0, size-1)
}

// Wrap moves pos by steps around a circular track of size positions.
// Negative steps wrap backwards. Both operands are reduced first so any
// int step count stays exact.
func Wrap(pos, steps, size int) int {
	if size <= 0 {
		return 0
	}
	p, s := pos%size, steps%size
	return ((p+s)%size + size) % size
}

// ArrowStep shifts pos one cell in dir, clamping at the board edges
// instead of wrapping.
func ArrowStep(pos, rows, cols int, dir Direction) int {
	if rows <= 0 || cols <= 0 {
		return 0
	}
	r, c := pos/cols, pos%cols
	switch dir {
	case Up:
		r = Clamp(r-1, 0, rows-1)
	case Down:
		r = Clamp(r+1, 0, rows-1)
	case Left:
		c = Clamp(c-1, 0, cols-1)
	case Right:
		c = Clamp(c+1, 0, cols-1)
	}
	return r*cols + c
}

// Resize builds a fresh rows x cols board and carries over tile content by
// linear index. Tile ids are regenerated.
func Resize(old models.Board, rows, cols int) models.Board {
	next := models.NewBoard(rows, cols)
	n := min(len(old.Tiles), len(next.Tiles))
	for i := 0; i < n; i++ {
		src := old.Tiles[i]
		dst := &next.Tiles[i]
		dst.Label = src.Label
		dst.Emoji = src.Emoji
		dst.Color = src.Color
		dst.Blocked = src.Blocked
		dst.Note = src.Note
	}
	return next
}

// Stripe paints every tile with the alternating quick-paint shades
func Stripe(b models.Board) models.Board {
	out := b.Clone()
	for i := range out.Tiles {
		out.Tiles[i].Color = models.StripeColors[i%2]
	}
	return out
}

// ParseMembers splits a comma-separated roster, trimming names and
// dropping empties.
func ParseMembers(s string) []string {
	members := []string{}
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			members = append(members, name)
		}
	}
	return members
}
