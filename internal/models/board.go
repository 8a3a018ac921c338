package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultRows = 6
	DefaultCols = 9
	MinDim      = 1
	MaxDim      = 20
)

// Palette is the fixed team color rotation
var Palette = []string{
	"#0ea5e9", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6",
	"#14b8a6", "#22c55e", "#e11d48", "#06b6d4", "#f97316",
}

// StripeColors are the quick-paint shades for even and odd tiles
var StripeColors = [2]string{"#0f172a26", "#0f172a33"}

// NewID returns a fresh random identifier
func NewID() string {
	return uuid.New().String()
}

// DefaultTile returns a blank tile for linear index i
func DefaultTile(i int) Tile {
	return Tile{
		ID:    NewID(),
		Label: fmt.Sprintf("Tile %d", i+1),
	}
}

// NewBoard returns a rows x cols board of blank tiles
func NewBoard(rows, cols int) Board {
	tiles := make([]Tile, rows*cols)
	for i := range tiles {
		tiles[i] = DefaultTile(i)
	}
	return Board{Rows: rows, Cols: cols, Tiles: tiles}
}

// NewEvent returns an event with the default board and no teams
func NewEvent(name string, now time.Time) *Event {
	return &Event{
		ID:        NewID(),
		Name:      name,
		CreatedAt: now.UnixMilli(),
		Board:     NewBoard(DefaultRows, DefaultCols),
		Teams:     map[string]*Team{},
	}
}

// PaletteColor returns the palette entry for the n-th team (0-based)
func PaletteColor(n int) string {
	return Palette[n%len(Palette)]
}
