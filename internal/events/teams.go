package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/meur/moonshade/internal/game"
	"github.com/meur/moonshade/internal/models"
)

// updateTeam runs mutate against a team of the current event and returns a
// copy of the result
func (s *Store) updateTeam(ctx context.Context, id string, mutate func(ev *models.Event, t *models.Team) error) (*models.Team, error) {
	var out *models.Team
	err := s.updateCurrent(ctx, func(ev *models.Event) error {
		t, ok := ev.Teams[id]
		if !ok {
			return ErrTeamNotFound
		}
		if err := mutate(ev, t); err != nil {
			return err
		}
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// updateSelected is updateTeam for the selected team
func (s *Store) updateSelected(ctx context.Context, mutate func(ev *models.Event, t *models.Team) error) (*models.Team, error) {
	var out *models.Team
	err := s.updateCurrent(ctx, func(ev *models.Event) error {
		if ev.SelectedTeamID == nil {
			return ErrNoSelection
		}
		t, ok := ev.Teams[*ev.SelectedTeamID]
		if !ok {
			return ErrNoSelection
		}
		if err := mutate(ev, t); err != nil {
			return err
		}
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddTeam creates "Team N" at position 0 with the next palette color and
// selects it.
func (s *Store) AddTeam(ctx context.Context) (*models.Team, error) {
	var out *models.Team
	err := s.updateCurrent(ctx, func(ev *models.Event) error {
		n := len(ev.Teams)
		t := &models.Team{
			ID:      models.NewID(),
			Name:    fmt.Sprintf("Team %d", n+1),
			Color:   models.PaletteColor(n),
			Members: []string{},
		}
		ev.Teams[t.ID] = t
		ev.SelectedTeamID = &t.ID
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTeam removes a team, clearing the selection if it pointed at it.
// Unknown ids are ignored.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	err := s.updateCurrent(ctx, func(ev *models.Event) error {
		if _, ok := ev.Teams[id]; !ok {
			return ErrTeamNotFound
		}
		delete(ev.Teams, id)
		if ev.SelectedTeamID != nil && *ev.SelectedTeamID == id {
			ev.SelectedTeamID = nil
		}
		return nil
	})
	if errors.Is(err, ErrTeamNotFound) {
		return nil
	}
	return err
}

func (s *Store) RenameTeam(ctx context.Context, id, name string) (*models.Team, error) {
	return s.updateTeam(ctx, id, func(_ *models.Event, t *models.Team) error {
		t.Name = name
		return nil
	})
}

func (s *Store) SetTeamColor(ctx context.Context, id, color string) (*models.Team, error) {
	return s.updateTeam(ctx, id, func(_ *models.Event, t *models.Team) error {
		t.Color = color
		return nil
	})
}

// SetTeamMembers replaces the roster from a comma-separated list
func (s *Store) SetTeamMembers(ctx context.Context, id, roster string) (*models.Team, error) {
	return s.updateTeam(ctx, id, func(_ *models.Event, t *models.Team) error {
		t.Members = game.ParseMembers(roster)
		return nil
	})
}

// SetTeamPosition places a team, clamped onto the board
func (s *Store) SetTeamPosition(ctx context.Context, id string, index int) (*models.Team, error) {
	return s.updateTeam(ctx, id, func(ev *models.Event, t *models.Team) error {
		t.Position = game.ClampPosition(index, ev.Board.Size())
		return nil
	})
}

// UpdateTeam applies every set field of u in one operation
func (s *Store) UpdateTeam(ctx context.Context, id string, u models.TeamUpdate) (*models.Team, error) {
	return s.updateTeam(ctx, id, func(ev *models.Event, t *models.Team) error {
		if u.Name != nil {
			t.Name = *u.Name
		}
		if u.Color != nil {
			t.Color = *u.Color
		}
		if u.Members != nil {
			t.Members = game.ParseMembers(*u.Members)
		}
		if u.Position != nil {
			t.Position = game.ClampPosition(*u.Position, ev.Board.Size())
		}
		return nil
	})
}

// MoveTeam advances a team by steps around the board, wrapping both ways
func (s *Store) MoveTeam(ctx context.Context, id string, steps int) (*models.Team, error) {
	return s.updateTeam(ctx, id, func(ev *models.Event, t *models.Team) error {
		t.Position = game.Wrap(t.Position, steps, ev.Board.Size())
		return nil
	})
}

// RollTeam rolls the die and moves the team by the result
func (s *Store) RollTeam(ctx context.Context, id string) (int, *models.Team, error) {
	roll := s.roll()
	t, err := s.MoveTeam(ctx, id, roll)
	if err != nil {
		return 0, nil, err
	}
	return roll, t, nil
}

// MoveSelected moves the selected team by steps, wrapping
func (s *Store) MoveSelected(ctx context.Context, steps int) (*models.Team, error) {
	return s.updateSelected(ctx, func(ev *models.Event, t *models.Team) error {
		t.Position = game.Wrap(t.Position, steps, ev.Board.Size())
		return nil
	})
}

// MoveSelectedByArrow steps the selected team one cell on the grid,
// stopping at the edges.
func (s *Store) MoveSelectedByArrow(ctx context.Context, dir game.Direction) (*models.Team, error) {
	return s.updateSelected(ctx, func(ev *models.Event, t *models.Team) error {
		t.Position = game.ArrowStep(t.Position, ev.Board.Rows, ev.Board.Cols, dir)
		return nil
	})
}

// DropTeamOnTile places a team on a tile. Blocked tiles do not refuse it.
func (s *Store) DropTeamOnTile(ctx context.Context, id string, index int) (*models.Team, error) {
	return s.updateTeam(ctx, id, func(ev *models.Event, t *models.Team) error {
		if index < 0 || index >= ev.Board.Size() {
			return ErrIndex
		}
		t.Position = index
		return nil
	})
}

func (s *Store) SelectTeam(ctx context.Context, id string) error {
	_, err := s.updateTeam(ctx, id, func(ev *models.Event, t *models.Team) error {
		ev.SelectedTeamID = &t.ID
		return nil
	})
	return err
}

func (s *Store) ClearSelection(ctx context.Context) error {
	return s.updateCurrent(ctx, func(ev *models.Event) error {
		ev.SelectedTeamID = nil
		return nil
	})
}
