package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"WebCanvas/internal/store"
)

// ErrSaveInProgress is returned by Save while another save of the same
// canvas is still running.
var ErrSaveInProgress = errors.New("save already in progress")

// Status is the persistence state shown to the user.
type Status int

const (
	StatusIdle Status = iota
	StatusUnsaved
	StatusSaving
	StatusSaved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnsaved:
		return "Unsaved changes"
	case StatusSaving:
		return "Saving..."
	case StatusSaved:
		return "All changes saved"
	case StatusFailed:
		return "Save failed"
	}
	return "Ready"
}

// Saver writes a canvas snapshot to the store, either on demand or from
// the autosave loop. At most one save per Saver is in flight at a time.
type Saver struct {
	id       string
	store    store.Store
	source   json.Marshaler
	timeout  time.Duration
	interval time.Duration

	saving atomic.Bool

	mu       sync.Mutex
	dirty    bool
	onStatus func(Status, error)

	// newTicker is replaced in tests to drive the loop by hand.
	newTicker func(time.Duration) (<-chan time.Time, func())
}

func NewSaver(id string, st store.Store, source json.Marshaler, timeout, interval time.Duration) *Saver {
	return &Saver{
		id:       id,
		store:    st,
		source:   source,
		timeout:  timeout,
		interval: interval,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// OnStatus registers the status listener. It may be called from any
// goroutine.
func (s *Saver) OnStatus(f func(Status, error)) {
	s.mu.Lock()
	s.onStatus = f
	s.mu.Unlock()
}

// MarkDirty records a local change that has not been saved yet.
func (s *Saver) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
	if !s.saving.Load() {
		s.emit(StatusUnsaved, nil)
	}
}

func (s *Saver) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Saver) Saving() bool {
	return s.saving.Load()
}

// Save writes the current snapshot. A failed save is reported and not
// retried; changes made while the save was running stay dirty.
func (s *Saver) Save(ctx context.Context) error {
	if !s.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer s.saving.Store(false)

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	s.emit(StatusSaving, nil)

	err := s.write(ctx)
	if err != nil {
		log.Printf("[SAVE] Error saving canvas %s: %v", s.id, err)
		s.emit(StatusFailed, err)
		return err
	}

	if s.Dirty() {
		s.emit(StatusUnsaved, nil)
	} else {
		s.emit(StatusSaved, nil)
	}
	log.Printf("[SAVE] Canvas %s saved", s.id)
	return nil
}

// Run saves once per interval while there are unsaved changes, until ctx
// is cancelled. Cancelling stops the ticker only: a save already running
// completes before Run returns.
func (s *Saver) Run(ctx context.Context) {
	ticks, stop := s.newTicker(s.interval)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if !s.Dirty() {
				continue
			}
			if err := s.Save(context.WithoutCancel(ctx)); errors.Is(err, ErrSaveInProgress) {
				log.Printf("[SAVE] Autosave skipped for %s: %v", s.id, err)
			}
		}
	}
}

func (s *Saver) write(ctx context.Context) error {
	data, err := s.source.MarshalJSON()
	if err != nil {
		return fmt.Errorf("serialize canvas: %w", err)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.store.Save(ctx, s.id, data)
}

func (s *Saver) emit(st Status, err error) {
	s.mu.Lock()
	f := s.onStatus
	s.mu.Unlock()
	if f != nil {
		f(st, err)
	}
}
