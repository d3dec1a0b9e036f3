package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebCanvas/internal/scene"
	"WebCanvas/internal/store"
)

// fakeStore wraps a memory store, counting saves and optionally failing
// or blocking them.
type fakeStore struct {
	*store.Memory
	saves   atomic.Int32
	saveErr error
	loadErr error
	block   chan struct{}
	entered chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{Memory: store.NewMemory()}
}

func (f *fakeStore) Load(ctx context.Context, id string) (*store.Document, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.Memory.Load(ctx, id)
}

func (f *fakeStore) Save(ctx context.Context, id string, data json.RawMessage) error {
	f.saves.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Memory.Save(ctx, id, data)
}

func TestCreateThenOpenIsBlank(t *testing.T) {
	st := newFakeStore()
	m := NewManager(st, time.Second, time.Second)
	id, err := m.Create(context.Background())
	require.NoError(t, err)

	s, err := m.Open(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, 0, s.Scene.Len())
	assert.NoError(t, s.LoadErr)
}

func TestOpenUnknownIDIsBlankWithoutError(t *testing.T) {
	m := NewManager(newFakeStore(), 0, time.Second)
	s, err := m.Open(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Scene.Len())
	assert.NoError(t, s.LoadErr)
}

func TestOpenLoadFailureFallsBackToBlank(t *testing.T) {
	st := newFakeStore()
	st.loadErr = errors.New("network down")
	m := NewManager(st, 0, time.Second)

	s, err := m.Open(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Scene.Len())
	assert.EqualError(t, s.LoadErr, "network down")
}

func TestOpenRejectsBadID(t *testing.T) {
	m := NewManager(newFakeStore(), 0, time.Second)
	_, err := m.Open(context.Background(), "a/b")
	assert.ErrorIs(t, err, store.ErrInvalidID)
}

func TestSaveThenReopen(t *testing.T) {
	st := newFakeStore()
	m := NewManager(st, time.Second, time.Second)
	ctx := context.Background()
	id, err := m.Create(ctx)
	require.NoError(t, err)

	s, err := m.Open(ctx, id)
	require.NoError(t, err)
	s.Scene.Add(scene.Shape{Kind: scene.KindRect, Width: 10, Height: 10})
	require.NoError(t, s.Saver.Save(ctx))

	again, err := m.Open(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, s.Scene.Shapes(), again.Scene.Shapes())
}

func TestOpenCorruptDataReportsLoadErr(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, st.Memory.Save(context.Background(), "bad", json.RawMessage(`{"version":"7"}`)))
	m := NewManager(st, 0, time.Second)
	s, err := m.Open(context.Background(), "bad")
	require.NoError(t, err)
	assert.Error(t, s.LoadErr)
	assert.Equal(t, 0, s.Scene.Len())
}

type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) install(s *Saver) {
	m.ch = make(chan time.Time)
	s.newTicker = func(time.Duration) (<-chan time.Time, func()) { return m.ch, func() {} }
}

func (m *manualTicker) tick() {
	m.ch <- time.Now()
}

func TestAutosaveFiresOncePerEdit(t *testing.T) {
	st := newFakeStore()
	sc := scene.New()
	s := NewSaver("c1", st, sc, time.Second, 5*time.Second)
	var tk manualTicker
	tk.install(s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	tk.tick()
	sc.Add(scene.Shape{Kind: scene.KindRect})
	s.MarkDirty()
	tk.tick()
	tk.tick()
	tk.tick()
	cancel()
	<-done

	assert.Equal(t, int32(1), st.saves.Load())
	assert.False(t, s.Dirty())
}

func TestStoppingAutosaveFinishesRunningSave(t *testing.T) {
	st := newFakeStore()
	st.block = make(chan struct{})
	st.entered = make(chan struct{}, 1)
	sc := scene.New()
	s := NewSaver("c1", st, sc, 0, 5*time.Second)
	var tk manualTicker
	tk.install(s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	sc.Add(scene.Shape{Kind: scene.KindRect, Width: 10, Height: 10})
	s.MarkDirty()
	tk.tick()
	<-st.entered
	cancel()

	select {
	case <-done:
		t.Fatal("Run returned while a save was still running")
	case <-time.After(20 * time.Millisecond):
	}
	close(st.block)
	<-done

	doc, err := st.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, doc.Empty())
	assert.False(t, s.Dirty())
	assert.Equal(t, int32(1), st.saves.Load())
}

func TestManualSaveWhileSavingIsRejected(t *testing.T) {
	st := newFakeStore()
	st.block = make(chan struct{})
	st.entered = make(chan struct{}, 1)
	s := NewSaver("c1", st, scene.New(), 0, time.Second)

	errs := make(chan error, 1)
	go func() { errs <- s.Save(context.Background()) }()
	<-st.entered

	assert.True(t, s.Saving())
	assert.ErrorIs(t, s.Save(context.Background()), ErrSaveInProgress)

	close(st.block)
	require.NoError(t, <-errs)
	assert.False(t, s.Saving())
	assert.Equal(t, int32(1), st.saves.Load())
}

func TestEditDuringSaveStaysDirty(t *testing.T) {
	st := newFakeStore()
	st.block = make(chan struct{})
	st.entered = make(chan struct{}, 1)
	s := NewSaver("c1", st, scene.New(), 0, time.Second)

	var mu sync.Mutex
	var statuses []Status
	s.OnStatus(func(st Status, _ error) {
		mu.Lock()
		statuses = append(statuses, st)
		mu.Unlock()
	})

	s.MarkDirty()
	errs := make(chan error, 1)
	go func() { errs <- s.Save(context.Background()) }()
	<-st.entered
	s.MarkDirty()
	close(st.block)
	require.NoError(t, <-errs)

	assert.True(t, s.Dirty())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusUnsaved, StatusSaving, StatusUnsaved}, statuses)
}

func TestFailedSaveIsReportedAndNotRequeued(t *testing.T) {
	st := newFakeStore()
	st.saveErr = errors.New("unreachable")
	s := NewSaver("c1", st, scene.New(), 0, time.Second)

	var last Status
	var lastErr error
	s.OnStatus(func(st Status, err error) { last, lastErr = st, err })

	s.MarkDirty()
	err := s.Save(context.Background())
	assert.EqualError(t, err, "unreachable")
	assert.Equal(t, StatusFailed, last)
	assert.Equal(t, err, lastErr)
	assert.False(t, s.Dirty())

	st.saveErr = nil
	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, StatusSaved, last)
	assert.Equal(t, int32(2), st.saves.Load())
}

func TestSaveTimeout(t *testing.T) {
	st := newFakeStore()
	st.block = make(chan struct{})
	s := NewSaver("c1", st, scene.New(), 20*time.Millisecond, time.Second)
	err := s.Save(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "Saving...", StatusSaving.String())
	assert.Equal(t, "Ready", StatusIdle.String())
}
