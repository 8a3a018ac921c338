package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/meur/moonshade/internal/events"
	"github.com/meur/moonshade/internal/models"
)

// Memory is a process-local backend for tests and throwaway servers. It
// keeps the serialized form so callers never share pointers with it.
type Memory struct {
	mu     sync.RWMutex
	body   []byte
	shares map[string]string
}

func NewMemory() *Memory {
	return &Memory{shares: make(map[string]string)}
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) Load(ctx context.Context) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.body == nil {
		return nil, nil
	}
	var doc models.Document
	if err := json.Unmarshal(m.body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Memory) Save(ctx context.Context, doc *models.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.body = body
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.body = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutShare(ctx context.Context, code, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.shares[code]; taken {
		return fmt.Errorf("share %q: %w", code, events.ErrShareCodeTaken)
	}
	m.shares[code] = token
	return nil
}

func (m *Memory) GetShare(ctx context.Context, code string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shares[code], nil
}
