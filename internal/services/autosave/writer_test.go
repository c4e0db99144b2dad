package autosave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/storage/memory"
	"github.com/mcoot/navalcombat/internal/testutil"
)

type WriterSuite struct {
	suite.Suite
	store  *memory.Storage
	writer *Writer
	ctx    context.Context

	mu      sync.Mutex
	results []error
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterSuite))
}

func (s *WriterSuite) SetupTest() {
	s.store = memory.New()
	s.results = nil
	s.writer = New(s.store, testutil.NopLogger(), WithResultFunc(func(_ *model.Snapshot, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.results = append(s.results, err)
	}))
	s.ctx = context.Background()
}

func (s *WriterSuite) TearDownTest() {
	s.writer.Close()
}

func snapshot(nickname string) *model.Snapshot {
	snap := &model.Snapshot{
		Version:  model.SnapshotVersion,
		Nickname: nickname,
		SavedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli(),
	}
	snap.PlayerBoard.Occupied[0][0] = true
	return snap
}

func (s *WriterSuite) TestSubmitThenFlush() {
	s.Require().NoError(s.writer.Submit(snapshot("Ishmael")))
	s.Require().NoError(s.writer.Flush(s.ctx))

	loaded, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("Ishmael", loaded.Nickname)
}

func (s *WriterSuite) TestLatestSubmissionWins() {
	for _, name := range []string{"one", "two", "three"} {
		s.Require().NoError(s.writer.Submit(snapshot(name)))
	}
	s.Require().NoError(s.writer.Flush(s.ctx))

	loaded, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("three", loaded.Nickname)
	s.LessOrEqual(s.store.Saves(), 3)
}

func (s *WriterSuite) TestSaveNowReportsFailure() {
	s.store.SetFailSaves(true)

	err := s.writer.SaveNow(s.ctx, snapshot("Queequeg"))
	s.ErrorIs(err, model.ErrSaveFailed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().Len(s.results, 1)
	s.ErrorIs(s.results[0], model.ErrSaveFailed)
}

func (s *WriterSuite) TestFailedSaveKeepsPreviousSave() {
	s.Require().NoError(s.writer.SaveNow(s.ctx, snapshot("first")))
	s.store.SetFailSaves(true)
	s.Require().NoError(s.writer.Submit(snapshot("second")))
	s.Require().ErrorIs(s.writer.Flush(s.ctx), model.ErrSaveFailed)

	loaded, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("first", loaded.Nickname)
}

func (s *WriterSuite) TestFlushWithNothingPending() {
	s.NoError(s.writer.Flush(s.ctx))
	s.Equal(0, s.store.Saves())
}

func (s *WriterSuite) TestCloseWritesPending() {
	s.Require().NoError(s.writer.Submit(snapshot("Starbuck")))
	s.writer.Close()

	s.True(s.store.HasSavedGame(s.ctx))
	s.ErrorIs(s.writer.Submit(snapshot("late")), ErrClosed)
	s.NoError(s.writer.Flush(s.ctx))
}

func (s *WriterSuite) TestSaveNowHonoursContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	// Either the write wins the race or the cancelled context does
	err := s.writer.SaveNow(ctx, snapshot("Flask"))
	if err != nil {
		s.ErrorIs(err, context.Canceled)
	}
}
