package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/storage"
	"github.com/mcoot/navalcombat/internal/storage/codec"
)

// Storage is an in-memory snapshot store. Saves go through the codec so
// callers get the same copy and corruption semantics as the durable stores.
type Storage struct {
	mu sync.RWMutex

	primary []byte
	backup  []byte

	failSaves bool
	saves     int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{}
}

// Ensure Storage implements the interface
var _ storage.SnapshotStore = (*Storage)(nil)

func (s *Storage) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSaveFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaves {
		return fmt.Errorf("%w: store configured to fail", model.ErrSaveFailed)
	}
	if len(s.primary) > 0 {
		s.backup = s.primary
	}
	s.primary = data
	s.saves++
	return nil
}

func (s *Storage) Load(ctx context.Context) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.primary == nil {
		return nil, model.ErrNoSavedGame
	}
	snap, primaryErr := codec.Decode(s.primary)
	if primaryErr == nil {
		return snap, nil
	}
	snap, backupErr := codec.Decode(s.backup)
	if backupErr == nil {
		return snap, nil
	}
	return nil, fmt.Errorf("%w: %w", model.ErrLoadFailed, errors.Join(primaryErr, backupErr))
}

func (s *Storage) HasSavedGame(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.primary) > 0
}

func (s *Storage) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary = nil
	s.backup = nil
	return nil
}

// SetFailSaves makes every Save fail, for exercising error paths
func (s *Storage) SetFailSaves(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = fail
}

// SetPrimary overwrites the raw primary bytes
func (s *Storage) SetPrimary(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary = data
}

// Saves returns how many saves have succeeded
func (s *Storage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
