package models

import "time"

// Event is a named game session owning one board and its teams
type Event struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	CreatedAt      int64            `json:"createdAt"` // Unix milliseconds
	Board          Board            `json:"board"`
	Teams          map[string]*Team `json:"teams"`
	SelectedTeamID *string          `json:"selectedTeamId"`
}

// Board is a rows x cols grid of tiles in row-major order
type Board struct {
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Tiles []Tile `json:"tiles"`
}

// Tile holds the display attributes of one board cell
type Tile struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Emoji   string `json:"emoji"`
	Color   string `json:"color"` // CSS color, "" = none
	Blocked bool   `json:"blocked"`
	Note    string `json:"note"`
}

// TilePatch is a partial tile update; nil fields are left unchanged
type TilePatch struct {
	Label   *string `json:"label,omitempty"`
	Emoji   *string `json:"emoji,omitempty"`
	Color   *string `json:"color,omitempty"`
	Blocked *bool   `json:"blocked,omitempty"`
	Note    *string `json:"note,omitempty"`
}

// Team is a named party with a board position
type Team struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Members  []string `json:"members"`
	Position int      `json:"position"`
}

// TeamUpdate is the request body for editing a team
type TeamUpdate struct {
	Name     *string `json:"name,omitempty"`
	Color    *string `json:"color,omitempty"`
	Members  *string `json:"members,omitempty"` // comma-separated
	Position *int    `json:"position,omitempty"`
}

// EventSummary is a lightweight version for listings
type EventSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	TeamCount int    `json:"teamCount"`
	Current   bool   `json:"current"`
}

// Size returns the number of playable positions
func (b Board) Size() int {
	return b.Rows * b.Cols
}

// Apply merges the set fields of p into t
func (p TilePatch) Apply(t Tile) Tile {
	if p.Label != nil {
		t.Label = *p.Label
	}
	if p.Emoji != nil {
		t.Emoji = *p.Emoji
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Blocked != nil {
		t.Blocked = *p.Blocked
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	return t
}

// Clone returns a deep copy of the event
func (e *Event) Clone() *Event {
	c := *e
	c.Board = e.Board.Clone()
	c.Teams = make(map[string]*Team, len(e.Teams))
	for id, t := range e.Teams {
		c.Teams[id] = t.Clone()
	}
	if e.SelectedTeamID != nil {
		id := *e.SelectedTeamID
		c.SelectedTeamID = &id
	}
	return &c
}

// Clone returns a deep copy of the board
func (b Board) Clone() Board {
	tiles := make([]Tile, len(b.Tiles))
	copy(tiles, b.Tiles)
	b.Tiles = tiles
	return b
}

// Clone returns a deep copy of the team
func (t *Team) Clone() *Team {
	c := *t
	c.Members = append([]string{}, t.Members...)
	return &c
}

// Summary builds the listing view of the event
func (e *Event) Summary(current bool) EventSummary {
	return EventSummary{
		ID:        e.ID,
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
		Rows:      e.Board.Rows,
		Cols:      e.Board.Cols,
		TeamCount: len(e.Teams),
		Current:   current,
	}
}

// Created returns CreatedAt as a time
func (e *Event) Created() time.Time {
	return time.UnixMilli(e.CreatedAt)
}
