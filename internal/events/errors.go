package events

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrIndex    = errors.New("tile index out of range")
	ErrParse    = errors.New("malformed document")

	ErrEventNotFound     = fmt.Errorf("event %w", ErrNotFound)
	ErrTeamNotFound      = fmt.Errorf("team %w", ErrNotFound)
	ErrShareNotFound     = fmt.Errorf("share link %w", ErrNotFound)
	ErrNoCurrentEvent    = fmt.Errorf("current event %w", ErrNotFound)
	ErrNoSelection       = fmt.Errorf("selected team %w", ErrNotFound)
	ErrSharesUnavailable = errors.New("share links are not configured")
	ErrShareCodeTaken    = errors.New("share code already in use")
)
