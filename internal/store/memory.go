package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps documents in process. It is used for tests and for
// running without any backend.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]Document
	revs *revisions
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]Document),
		revs: newRevisions(),
		now:  time.Now,
	}
}

func (m *Memory) Create(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := m.now().UTC()
	m.mu.Lock()
	m.docs[id] = Document{ID: id, CreatedAt: now, UpdatedAt: now, Revision: m.revs.Tick(id)}
	m.mu.Unlock()
	log.Printf("[STORE] Created canvas %s", id)
	return id, nil
}

func (m *Memory) Load(ctx context.Context, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	m.mu.RLock()
	doc, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	doc.CanvasData = append(json.RawMessage(nil), doc.CanvasData...)
	return &doc, nil
}

func (m *Memory) Save(ctx context.Context, id string, data json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := validateData(data); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	m.mu.Lock()
	doc := m.docs[id]
	doc.ID = id
	doc.CanvasData = append(json.RawMessage(nil), data...)
	doc.UpdatedAt = m.now().UTC()
	doc.Revision = m.revs.Tick(id)
	m.docs[id] = doc
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
