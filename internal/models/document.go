package models

import (
	"cmp"
	"slices"
)

// Document is the export/persistence form of the whole store
type Document struct {
	Events  map[string]*Event `json:"events"`
	EventID *string           `json:"eventId"` // current event, null if none
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{Events: map[string]*Event{}}
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	c := &Document{Events: make(map[string]*Event, len(d.Events))}
	for id, e := range d.Events {
		c.Events[id] = e.Clone()
	}
	if d.EventID != nil {
		id := *d.EventID
		c.EventID = &id
	}
	return c
}

// Current returns the selected event, or nil
func (d *Document) Current() *Event {
	if d.EventID == nil {
		return nil
	}
	return d.Events[*d.EventID]
}

// Ordered returns events sorted by creation time, then id
func (d *Document) Ordered() []*Event {
	out := make([]*Event, 0, len(d.Events))
	for _, e := range d.Events {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Event) int {
		if c := cmp.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Normalize fills nil collections left by sparse JSON, pulls team
// positions back onto their board and repoints the selection at the first
// event when it is missing or dangling.
func (d *Document) Normalize() {
	if d.Events == nil {
		d.Events = map[string]*Event{}
	}
	for id, e := range d.Events {
		if e == nil {
			delete(d.Events, id)
			continue
		}
		if e.Teams == nil {
			e.Teams = map[string]*Team{}
		}
		if e.Board.Tiles == nil {
			e.Board.Tiles = []Tile{}
		}
		for tid, t := range e.Teams {
			if t == nil {
				delete(e.Teams, tid)
				continue
			}
			if t.Members == nil {
				t.Members = []string{}
			}
			t.Position = clampPosition(t.Position, e.Board.Size())
		}
	}
	if d.Current() != nil {
		return
	}
	d.EventID = nil
	if ordered := d.Ordered(); len(ordered) > 0 {
		id := ordered[0].ID
		d.EventID = &id
	}
}

func clampPosition(pos, size int) int {
	switch {
	case size <= 0 || pos < 0:
		return 0
	case pos >= size:
		return size - 1
	}
	return pos
}
