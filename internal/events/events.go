package events

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/meur/moonshade/internal/models"
)

// Events lists event summaries oldest first
func (s *Store) Events() []models.EventSummary {
	var out []models.EventSummary
	s.read(func(doc *models.Document) {
		current := doc.Current()
		out = make([]models.EventSummary, 0, len(doc.Events))
		for _, ev := range doc.Ordered() {
			out = append(out, ev.Summary(current != nil && current.ID == ev.ID))
		}
	})
	return out
}

// Event returns a copy of the event with the given id
func (s *Store) Event(id string) (*models.Event, error) {
	var ev *models.Event
	s.read(func(doc *models.Document) {
		if e, ok := doc.Events[id]; ok {
			ev = e.Clone()
		}
	})
	if ev == nil {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

// Current returns a copy of the selected event
func (s *Store) Current() (*models.Event, error) {
	var ev *models.Event
	s.read(func(doc *models.Document) {
		if e := doc.Current(); e != nil {
			ev = e.Clone()
		}
	})
	if ev == nil {
		return nil, ErrNoCurrentEvent
	}
	return ev, nil
}

// CreateEvent adds an event with the default board and selects it. An empty
// name becomes "Event N".
func (s *Store) CreateEvent(ctx context.Context, name string) (*models.Event, error) {
	var created *models.Event
	err := s.commit(ctx, func(doc *models.Document) error {
		if name == "" {
			name = fmt.Sprintf("Event %d", len(doc.Events)+1)
		}
		ev := models.NewEvent(name, s.now())
		doc.Events[ev.ID] = ev
		doc.EventID = &ev.ID
		created = ev.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("event_id", created.ID).Str("name", created.Name).Msg("event created")
	return created, nil
}

// DeleteEvent removes an event. Deleting the current event selects the
// oldest remaining one. Unknown ids are ignored.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	var exists bool
	s.read(func(doc *models.Document) { _, exists = doc.Events[id] })
	if !exists {
		return nil
	}

	err := s.commit(ctx, func(doc *models.Document) error {
		delete(doc.Events, id)
		if doc.EventID != nil && *doc.EventID == id {
			doc.EventID = nil
			if rest := doc.Ordered(); len(rest) > 0 {
				doc.EventID = &rest[0].ID
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("event_id", id).Msg("event deleted")
	return nil
}

// DuplicateEvent deep-copies an event under a new id. The selection is
// left alone.
func (s *Store) DuplicateEvent(ctx context.Context, id string) (*models.Event, error) {
	var dup *models.Event
	err := s.commit(ctx, func(doc *models.Document) error {
		src, ok := doc.Events[id]
		if !ok {
			return ErrEventNotFound
		}
		clone := src.Clone()
		clone.ID = models.NewID()
		clone.Name = src.Name + " (copy)"
		doc.Events[clone.ID] = clone
		dup = clone.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dup, nil
}

// RenameEvent sets an event's name
func (s *Store) RenameEvent(ctx context.Context, id, name string) error {
	return s.commit(ctx, func(doc *models.Document) error {
		ev, ok := doc.Events[id]
		if !ok {
			return ErrEventNotFound
		}
		ev.Name = name
		return nil
	})
}

// SwitchTo makes id the current event
func (s *Store) SwitchTo(ctx context.Context, id string) error {
	return s.commit(ctx, func(doc *models.Document) error {
		if _, ok := doc.Events[id]; !ok {
			return ErrEventNotFound
		}
		doc.EventID = &id
		return nil
	})
}

// Reset drops every event and the selection. The empty document is
// persisted, so a later Open loads it instead of seeding a new event.
func (s *Store) Reset(ctx context.Context) error {
	err := s.commit(ctx, func(doc *models.Document) error {
		*doc = *models.NewDocument()
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Msg("state reset")
	return nil
}
