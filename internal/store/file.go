package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// File stores each canvas as <dir>/<id>.json. Writes go through a
// temporary file and a rename so a crash never leaves a torn document.
type File struct {
	dir  string
	mu   sync.Mutex
	revs *revisions
	now  func() time.Time
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{dir: dir, revs: newRevisions(), now: time.Now}, nil
}

func (f *File) Create(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := f.now().UTC()
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := Document{ID: id, CreatedAt: now, UpdatedAt: now, Revision: f.revs.Tick(id)}
	if err := f.write(doc); err != nil {
		return "", fmt.Errorf("create canvas: %w", err)
	}
	log.Printf("[STORE] Created canvas %s in %s", id, f.dir)
	return id, nil
}

func (f *File) Load(ctx context.Context, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read(id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *File) Save(ctx context.Context, id string, data json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := validateData(data); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read(id)
	if errors.Is(err, ErrNotFound) {
		doc = &Document{ID: id}
	} else if err != nil {
		return err
	}
	f.revs.Observe(id, doc.Revision)
	doc.CanvasData = data
	doc.UpdatedAt = f.now().UTC()
	doc.Revision = f.revs.Tick(id)
	if err := f.write(*doc); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *File) read(id string) (*Document, error) {
	data, err := os.ReadFile(f.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("load %s: corrupt document: %w", id, err)
	}
	doc.ID = id
	return &doc, nil
}

func (f *File) write(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, doc.ID+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(doc.ID))
}
