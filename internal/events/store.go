package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meur/moonshade/internal/game"
	"github.com/meur/moonshade/internal/models"
)

// SeedEventName names the event created when nothing has been persisted yet
const SeedEventName = "TileTrials"

// Persister loads and saves the whole store document. Load returns
// (nil, nil) when nothing has been stored.
type Persister interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
}

// ShareRepository keeps share tokens under short codes. GetShare returns
// ("", nil) for unknown codes.
type ShareRepository interface {
	PutShare(ctx context.Context, code, token string) error
	GetShare(ctx context.Context, code string) (string, error)
}

// Notifier receives every committed document
type Notifier interface {
	Publish(doc *models.Document)
}

// Option configures a Store
type Option func(*Store)

// WithShares enables short share links
func WithShares(repo ShareRepository) Option {
	return func(s *Store) { s.shares = repo }
}

// WithNotifier registers a listener for committed changes
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithRoller replaces the six-sided die used by RollTeam
func WithRoller(r game.Roller) Option {
	return func(s *Store) { s.roll = r }
}

// WithShareCodes replaces the generator for short share codes
func WithShareCodes(gen func() string) Option {
	return func(s *Store) { s.shareCode = gen }
}

// WithClock replaces time.Now for event timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns the events, the current selection and their persistence.
// Every mutation works on a deep copy which replaces the live document only
// after it has been saved, so a failed operation leaves no trace.
type Store struct {
	mu  sync.Mutex
	doc *models.Document

	// pubMu is taken before mu is released so notifications go out in
	// commit order
	pubMu sync.Mutex

	persister Persister
	shares    ShareRepository
	notifier  Notifier
	roll      game.Roller
	now       func() time.Time
	shareCode func() string
}

// New creates an empty Store backed by p
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		doc:       models.NewDocument(),
		persister: p,
		roll:      game.D6,
		now:       time.Now,
		shareCode: newShareCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the initial state. A valid share token wins; otherwise the
// persisted document is used, and an empty backend is seeded with one event.
func (s *Store) Open(ctx context.Context, token string) error {
	if token != "" {
		doc, err := DecodeShareToken(token)
		if err == nil {
			log.Info().Int("events", len(doc.Events)).Msg("loaded state from share token")
			return s.replace(ctx, doc)
		}
		log.Warn().Err(err).Msg("ignoring share token")
	}

	doc, err := s.persister.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("persisted state unreadable, seeding defaults")
		doc = nil
	}
	if doc != nil {
		doc.Normalize()
		s.mu.Lock()
		s.swapLocked(doc)
		log.Info().Int("events", len(doc.Events)).Msg("loaded persisted state")
		return nil
	}

	seed := models.NewDocument()
	ev := models.NewEvent(SeedEventName, s.now())
	seed.Events[ev.ID] = ev
	seed.EventID = &ev.ID
	log.Info().Str("event_id", ev.ID).Msg("seeded default event")
	return s.replace(ctx, seed)
}

// commit applies mutate to a copy of the document, saves it and swaps it in
func (s *Store) commit(ctx context.Context, mutate func(doc *models.Document) error) error {
	s.mu.Lock()
	next := s.doc.Clone()
	if err := mutate(next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.persister.Save(ctx, next); err != nil {
		s.mu.Unlock()
		log.Error().Err(err).Msg("failed to persist document")
		return fmt.Errorf("persist document: %w", err)
	}
	s.swapLocked(next)
	return nil
}

// swapLocked installs doc and notifies listeners. It must be called with mu
// held and returns with mu released.
func (s *Store) swapLocked(doc *models.Document) {
	s.doc = doc
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	s.publish(doc)
}

// updateCurrent runs mutate against the current event
func (s *Store) updateCurrent(ctx context.Context, mutate func(ev *models.Event) error) error {
	return s.commit(ctx, func(doc *models.Document) error {
		ev := doc.Current()
		if ev == nil {
			return ErrNoCurrentEvent
		}
		return mutate(ev)
	})
}

func (s *Store) replace(ctx context.Context, doc *models.Document) error {
	return s.commit(ctx, func(next *models.Document) error {
		*next = *doc.Clone()
		return nil
	})
}

func (s *Store) publish(doc *models.Document) {
	if s.notifier != nil {
		s.notifier.Publish(doc)
	}
}

// read runs fn under the lock against the live document
func (s *Store) read(fn func(doc *models.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}
