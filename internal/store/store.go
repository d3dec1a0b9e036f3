// Package store persists one JSON snapshot per canvas id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("canvas not found")
	ErrInvalidID = errors.New("invalid canvas id")
)

// Document is the stored record for one canvas. CanvasData is nil until
// the first save.
type Document struct {
	ID         string          `json:"id"`
	CanvasData json.RawMessage `json:"canvasData"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Revision   uint64          `json:"revision,omitempty"`
}

// Empty reports whether the document holds no snapshot.
func (d *Document) Empty() bool {
	if d == nil {
		return true
	}
	s := strings.TrimSpace(string(d.CanvasData))
	return s == "" || s == "null"
}

// Store is a key-document store for canvas sessions. Save overwrites
// unconditionally and creates the document when it does not exist.
type Store interface {
	Create(ctx context.Context) (string, error)
	Load(ctx context.Context, id string) (*Document, error)
	Save(ctx context.Context, id string, canvasData json.RawMessage) error
	Close() error
}

// ValidateID rejects ids that could not be used as a document key or a
// file name.
func ValidateID(id string) error {
	if id == "" || len(id) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}

func validateData(data json.RawMessage) error {
	if len(data) == 0 {
		return nil
	}
	if !json.Valid(data) {
		return errors.New("canvas data is not valid JSON")
	}
	return nil
}
