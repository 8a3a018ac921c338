package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/meur/moonshade/internal/models"
)

// Export returns a deep copy of the whole document
func (s *Store) Export() *models.Document {
	var doc *models.Document
	s.read(func(d *models.Document) { doc = d.Clone() })
	return doc
}

// ExportJSON renders the document as an indented file download
func (s *Store) ExportJSON() ([]byte, error) {
	return MarshalDocument(s.Export(), true)
}

// Import replaces all events and the selection with the document in data.
// Malformed input fails with ErrParse and changes nothing.
func (s *Store) Import(ctx context.Context, data []byte) error {
	doc, err := ParseDocument(data)
	if err != nil {
		return err
	}
	return s.ImportDocument(ctx, doc)
}

// ImportDocument replaces all events and the selection with doc
func (s *Store) ImportDocument(ctx context.Context, doc *models.Document) error {
	doc = doc.Clone()
	doc.Normalize()
	if err := s.replace(ctx, doc); err != nil {
		return err
	}
	log.Info().Int("events", len(doc.Events)).Msg("document imported")
	return nil
}

// ShareToken encodes the current document for a URL fragment
func (s *Store) ShareToken() (string, error) {
	return EncodeShareToken(s.Export())
}

// CreateShareLink stores the current share token under a short code
func (s *Store) CreateShareLink(ctx context.Context) (code, token string, err error) {
	if s.shares == nil {
		return "", "", ErrSharesUnavailable
	}
	token, err = s.ShareToken()
	if err != nil {
		return "", "", err
	}
	for attempt := 1; ; attempt++ {
		code = s.shareCode()
		err = s.shares.PutShare(ctx, code, token)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrShareCodeTaken) || attempt == shareCodeAttempts {
			return "", "", fmt.Errorf("store share link: %w", err)
		}
		log.Debug().Str("code", code).Msg("share code collision, retrying")
	}
	log.Info().Str("code", code).Msg("share link created")
	return code, token, nil
}

// ResolveShareLink decodes the document stored under code
func (s *Store) ResolveShareLink(ctx context.Context, code string) (*models.Document, error) {
	if s.shares == nil {
		return nil, ErrSharesUnavailable
	}
	token, err := s.shares.GetShare(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load share link: %w", err)
	}
	if token == "" {
		return nil, ErrShareNotFound
	}
	return DecodeShareToken(token)
}

// shareCodeAttempts bounds how many fresh codes CreateShareLink tries
const shareCodeAttempts = 5

// newShareCode creates a short unique share code
func newShareCode() string {
	return uuid.New().String()[:8]
}
