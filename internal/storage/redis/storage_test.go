package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/storage/storagetest"
	"github.com/mcoot/navalcombat/internal/testutil"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	client  *redis.Client
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(s.client, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestLoadWithoutSave() {
	_, err := s.storage.Load(s.ctx)
	s.ErrorIs(err, model.ErrNoSavedGame)
	s.False(s.storage.HasSavedGame(s.ctx))
}

func (s *StorageSuite) TestSaveAndLoad() {
	snap := storagetest.SampleSnapshot()

	s.Require().NoError(s.storage.Save(s.ctx, snap))
	s.True(s.storage.HasSavedGame(s.ctx))
	s.True(s.mini.Exists("navalcombat:save:last_game:primary"))
	s.False(s.mini.Exists("navalcombat:save:last_game:backup"))

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(snap, loaded)
	s.True(loaded.CPUBoard.ShotAt[1][8])
}

func (s *StorageSuite) TestSecondSaveBacksUpFirst() {
	s.Require().NoError(s.storage.Save(s.ctx, storagetest.SampleSnapshot()))

	second := storagetest.SampleSnapshot()
	second.Nickname = "Second"
	s.Require().NoError(s.storage.Save(s.ctx, second))

	s.True(s.mini.Exists("navalcombat:save:last_game:backup"))

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("Second", loaded.Nickname)
}

func (s *StorageSuite) TestCorruptPrimaryFallsBackToBackup() {
	s.Require().NoError(s.storage.Save(s.ctx, storagetest.SampleSnapshot()))
	s.Require().NoError(s.storage.Save(s.ctx, storagetest.SampleSnapshot()))
	s.Require().NoError(s.mini.Set("navalcombat:save:last_game:primary", "junk"))

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("Nemo", loaded.Nickname)
}

func (s *StorageSuite) TestCorruptPrimaryWithoutBackup() {
	s.Require().NoError(s.mini.Set("navalcombat:save:last_game:primary", "junk"))

	_, err := s.storage.Load(s.ctx)
	s.ErrorIs(err, model.ErrLoadFailed)
	s.ErrorIs(err, model.ErrCorruptSnapshot)
}

func (s *StorageSuite) TestSlotsAreIndependent() {
	cfg := DefaultConfig()
	cfg.Slot = "other"
	other := NewWithClient(s.client, cfg, testutil.NopLogger())

	s.Require().NoError(s.storage.Save(s.ctx, storagetest.SampleSnapshot()))
	s.False(other.HasSavedGame(s.ctx))
}

func (s *StorageSuite) TestSaveTTL() {
	cfg := DefaultConfig()
	cfg.SaveTTL = time.Hour
	store := NewWithClient(s.client, cfg, testutil.NopLogger())

	s.Require().NoError(store.Save(s.ctx, storagetest.SampleSnapshot()))
	s.Equal(time.Hour, s.mini.TTL("navalcombat:save:last_game:primary"))

	s.mini.FastForward(2 * time.Hour)
	s.False(store.HasSavedGame(s.ctx))
}

func (s *StorageSuite) TestDelete() {
	s.Require().NoError(s.storage.Save(s.ctx, storagetest.SampleSnapshot()))
	s.Require().NoError(s.storage.Save(s.ctx, storagetest.SampleSnapshot()))

	s.Require().NoError(s.storage.Delete(s.ctx))
	s.False(s.mini.Exists("navalcombat:save:last_game:primary"))
	s.False(s.mini.Exists("navalcombat:save:last_game:backup"))

	s.NoError(s.storage.Delete(s.ctx))
}

func (s *StorageSuite) TestSaveFailsWhenRedisIsDown() {
	s.mini.Close()

	err := s.storage.Save(s.ctx, storagetest.SampleSnapshot())
	s.ErrorIs(err, model.ErrSaveFailed)
	s.False(s.storage.HasSavedGame(s.ctx))
	s.mini = nil
}

func (s *StorageSuite) TestNewConnects() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	store, err := New(cfg, testutil.NopLogger())
	s.Require().NoError(err)
	defer store.Close()

	s.False(store.HasSavedGame(s.ctx))
}

func (s *StorageSuite) TestConnectClosesClientWhenRedisIsDown() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.mini.Close()
	s.mini = nil

	store, err := connect(client, DefaultConfig(), testutil.NopLogger())
	s.Error(err)
	s.Nil(store)
	s.ErrorIs(client.Ping(s.ctx).Err(), redis.ErrClosed)
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	cfg := DefaultConfig()
	cfg.URL = "not a url"

	_, err := New(cfg, testutil.NopLogger())
	s.Error(err)
}
