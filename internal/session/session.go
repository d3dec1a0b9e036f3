// Package session opens canvas sessions against a document store and
// keeps them saved.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"WebCanvas/internal/scene"
	"WebCanvas/internal/store"
)

// Manager creates and opens canvas sessions.
type Manager struct {
	store            store.Store
	timeout          time.Duration
	autosaveInterval time.Duration
}

// NewManager returns a manager over st. A zero timeout leaves store calls
// unbounded.
func NewManager(st store.Store, timeout, autosaveInterval time.Duration) *Manager {
	return &Manager{store: st, timeout: timeout, autosaveInterval: autosaveInterval}
}

// Create makes a new, empty canvas and returns its id.
func (m *Manager) Create(ctx context.Context) (string, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	id, err := m.store.Create(ctx)
	if err != nil {
		return "", fmt.Errorf("create canvas: %w", err)
	}
	return id, nil
}

// Session is one open canvas.
type Session struct {
	ID    string
	Scene *scene.Scene
	Saver *Saver
	// LoadErr is set when the stored canvas could not be read and the
	// session started blank instead.
	LoadErr error
}

// Open loads id into a fresh scene. A canvas that has never been saved, or
// does not exist yet, opens blank. A failed load is logged, also opens
// blank, and is reported through Session.LoadErr rather than as an error.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}
	sc := scene.New()
	s := &Session{ID: id, Scene: sc}

	lctx, cancel := m.withTimeout(ctx)
	doc, err := m.store.Load(lctx, id)
	cancel()
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Printf("[SESSION] Canvas %s not found, starting blank", id)
	case err != nil:
		log.Printf("[SESSION] Error loading canvas %s: %v", id, err)
		s.LoadErr = err
	case doc.Empty():
		log.Printf("[SESSION] Canvas %s has no saved data yet", id)
	default:
		if err := sc.Load(doc.CanvasData); err != nil {
			log.Printf("[SESSION] Canvas %s has unreadable data: %v", id, err)
			s.LoadErr = err
		}
	}

	s.Saver = NewSaver(id, m.store, sc, m.timeout, m.autosaveInterval)
	return s, nil
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}
