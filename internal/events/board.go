package events

import (
	"context"

	"github.com/meur/moonshade/internal/game"
	"github.com/meur/moonshade/internal/models"
)

// ResizeBoard rebuilds the current board at rows x cols (each clamped to
// 1..20), keeping tile content by linear index and pulling teams back onto
// the board.
func (s *Store) ResizeBoard(ctx context.Context, rows, cols int) (*models.Board, error) {
	var out models.Board
	err := s.updateCurrent(ctx, func(ev *models.Event) error {
		ev.Board = game.Resize(ev.Board, game.ClampDim(rows), game.ClampDim(cols))
		size := ev.Board.Size()
		for _, t := range ev.Teams {
			t.Position = game.ClampPosition(t.Position, size)
		}
		out = ev.Board.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PaintTile merges patch into the tile at index
func (s *Store) PaintTile(ctx context.Context, index int, patch models.TilePatch) (*models.Tile, error) {
	var out models.Tile
	err := s.updateCurrent(ctx, func(ev *models.Event) error {
		if index < 0 || index >= len(ev.Board.Tiles) {
			return ErrIndex
		}
		ev.Board.Tiles[index] = patch.Apply(ev.Board.Tiles[index])
		out = ev.Board.Tiles[index]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// QuickPaintStripe colors every tile with alternating shades by index parity
func (s *Store) QuickPaintStripe(ctx context.Context) error {
	return s.updateCurrent(ctx, func(ev *models.Event) error {
		ev.Board = game.Stripe(ev.Board)
		return nil
	})
}
