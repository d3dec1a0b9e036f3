package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemory(),
		"file":   f,
	}
}

func TestCreateLoadSave(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.Create(ctx)
			require.NoError(t, err)
			require.NoError(t, ValidateID(id))

			doc, err := s.Load(ctx, id)
			require.NoError(t, err)
			assert.True(t, doc.Empty(), "new canvas has no snapshot")
			assert.False(t, doc.CreatedAt.IsZero())
			created := doc.CreatedAt

			data := json.RawMessage(`{"version":"1","objects":[]}`)
			require.NoError(t, s.Save(ctx, id, data))
			doc, err = s.Load(ctx, id)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(doc.CanvasData))
			assert.Equal(t, created, doc.CreatedAt)
			assert.False(t, doc.UpdatedAt.Before(created))

			second := json.RawMessage(`{"version":"1","objects":[{"id":"a","type":"rect"}]}`)
			require.NoError(t, s.Save(ctx, id, second))
			doc, err = s.Load(ctx, id)
			require.NoError(t, err)
			assert.JSONEq(t, string(second), string(doc.CanvasData))
			assert.Equal(t, uint64(3), doc.Revision)
			require.NoError(t, s.Close())
		})
	}
}

func TestLoadMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(context.Background(), "does-not-exist")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSaveCreatesMissingDocument(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, "fresh", json.RawMessage(`{"a":1}`)))
			doc, err := s.Load(ctx, "fresh")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, string(doc.CanvasData))
			assert.True(t, doc.CreatedAt.IsZero(), "merge write does not set createdAt")
		})
	}
}

func TestRejectsBadInput(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Load(ctx, "../etc/passwd")
			assert.ErrorIs(t, err, ErrInvalidID)
			assert.ErrorIs(t, s.Save(ctx, "", nil), ErrInvalidID)
			assert.Error(t, s.Save(ctx, "ok", json.RawMessage(`{nope`)))
		})
	}
}

func TestCancelledContext(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.Create(ctx)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	a, err := NewFile(dir)
	require.NoError(t, err)
	id, err := a.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, id, json.RawMessage(`{"x":1}`)))

	b, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, id, json.RawMessage(`{"x":2}`)))
	doc, err := b.Load(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":2}`, string(doc.CanvasData))
	assert.Equal(t, uint64(3), doc.Revision)

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))
	_, err = f.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryTimestamps(t *testing.T) {
	m := NewMemory()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	id, err := m.Create(ctx)
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	require.NoError(t, m.Save(ctx, id, json.RawMessage(`{}`)))

	doc, err := m.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), doc.CreatedAt)
	assert.Equal(t, clock, doc.UpdatedAt)
}

func TestDocumentEmpty(t *testing.T) {
	var nilDoc *Document
	assert.True(t, nilDoc.Empty())
	assert.True(t, (&Document{CanvasData: json.RawMessage("null")}).Empty())
	assert.False(t, (&Document{CanvasData: json.RawMessage("{}")}).Empty())
}
