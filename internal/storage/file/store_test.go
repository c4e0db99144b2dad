package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/storage/codec"
	"github.com/mcoot/navalcombat/internal/storage/storagetest"
	"github.com/mcoot/navalcombat/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	dir   string
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.dir = filepath.Join(s.T().TempDir(), DefaultDir)
	s.store = New(s.dir, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *StoreSuite) TestDefaultDir() {
	s.Equal(DefaultDir, New("", testutil.NopLogger()).Dir())
}

func (s *StoreSuite) TestLoadWithoutSave() {
	_, err := s.store.Load(s.ctx)
	s.ErrorIs(err, model.ErrNoSavedGame)
	s.False(s.store.HasSavedGame(s.ctx))
}

func (s *StoreSuite) TestSaveAndLoad() {
	snap := storagetest.SampleSnapshot()

	s.Require().NoError(s.store.Save(s.ctx, snap))
	s.True(s.store.HasSavedGame(s.ctx))
	s.FileExists(filepath.Join(s.dir, PrimaryFile))
	s.NoFileExists(filepath.Join(s.dir, BackupFile))

	loaded, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(snap, loaded)
	s.Equal(storagetest.SavedAt.UnixMilli(), loaded.SavedAt)
	s.True(loaded.CPUBoard.ShotAt[1][8])
	s.False(loaded.CPUBoard.ShotAt[8][1])
}

func (s *StoreSuite) TestSecondSaveBacksUpFirst() {
	first := storagetest.SampleSnapshot()
	s.Require().NoError(s.store.Save(s.ctx, first))

	second := storagetest.SampleSnapshot()
	second.Nickname = "Second"
	s.Require().NoError(s.store.Save(s.ctx, second))

	backup, err := readSnapshot(s.store.BackupPath())
	s.Require().NoError(err)
	s.Equal("Nemo", backup.Nickname)

	loaded, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("Second", loaded.Nickname)
}

func (s *StoreSuite) TestCorruptPrimaryFallsBackToBackup() {
	s.Require().NoError(s.store.Save(s.ctx, storagetest.SampleSnapshot()))
	s.Require().NoError(s.store.Save(s.ctx, storagetest.SampleSnapshot()))

	s.Require().NoError(os.WriteFile(s.store.PrimaryPath(), []byte("not a save"), 0o644))

	loaded, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("Nemo", loaded.Nickname)
}

func (s *StoreSuite) TestInconsistentPrimaryFallsBackToBackup() {
	s.Require().NoError(s.store.Save(s.ctx, storagetest.SampleSnapshot()))

	// A ship record pointing at a cell the board says is empty
	bad := storagetest.SampleSnapshot()
	bad.Nickname = "Broken"
	cell := bad.PlayerShips[0].Cells[0]
	bad.PlayerBoard.Occupied[cell.Row][cell.Col] = false
	bad.PlayerBoard.Hit[cell.Row][cell.Col] = false
	data, err := codec.Encode(bad)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(s.ctx, storagetest.SampleSnapshot()))
	s.Require().NoError(os.WriteFile(s.store.PrimaryPath(), data, 0o644))

	loaded, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("Nemo", loaded.Nickname)
}

func (s *StoreSuite) TestCorruptPrimaryAndBackup() {
	s.Require().NoError(os.MkdirAll(s.dir, 0o755))
	s.Require().NoError(os.WriteFile(s.store.PrimaryPath(), []byte("{"), 0o644))
	s.Require().NoError(os.WriteFile(s.store.BackupPath(), []byte("}"), 0o644))

	_, err := s.store.Load(s.ctx)
	s.ErrorIs(err, model.ErrLoadFailed)
	s.ErrorIs(err, model.ErrCorruptSnapshot)
}

func (s *StoreSuite) TestCorruptPrimaryWithoutBackup() {
	s.Require().NoError(os.MkdirAll(s.dir, 0o755))
	s.Require().NoError(os.WriteFile(s.store.PrimaryPath(), []byte("garbage"), 0o644))

	_, err := s.store.Load(s.ctx)
	s.ErrorIs(err, model.ErrLoadFailed)
}

func (s *StoreSuite) TestBackupOnlyIsNoSave() {
	data, err := codec.Encode(storagetest.SampleSnapshot())
	s.Require().NoError(err)
	s.Require().NoError(os.MkdirAll(s.dir, 0o755))
	s.Require().NoError(os.WriteFile(s.store.BackupPath(), data, 0o644))

	_, err = s.store.Load(s.ctx)
	s.ErrorIs(err, model.ErrNoSavedGame)
}

func (s *StoreSuite) TestEmptyPrimaryIsNotASave() {
	s.Require().NoError(os.MkdirAll(s.dir, 0o755))
	s.Require().NoError(os.WriteFile(s.store.PrimaryPath(), nil, 0o644))

	s.False(s.store.HasSavedGame(s.ctx))
}

func (s *StoreSuite) TestSaveFailsWhenDirIsAFile() {
	parent := s.T().TempDir()
	blocker := filepath.Join(parent, "blocked")
	s.Require().NoError(os.WriteFile(blocker, []byte("x"), 0o644))

	store := New(filepath.Join(blocker, "saves"), testutil.NopLogger())
	err := store.Save(s.ctx, storagetest.SampleSnapshot())
	s.ErrorIs(err, model.ErrSaveFailed)
}

func (s *StoreSuite) TestSaveLeavesNoTempFiles() {
	s.Require().NoError(s.store.Save(s.ctx, storagetest.SampleSnapshot()))
	s.Require().NoError(s.store.Save(s.ctx, storagetest.SampleSnapshot()))

	entries, err := os.ReadDir(s.dir)
	s.Require().NoError(err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	s.ElementsMatch([]string{PrimaryFile, BackupFile}, names)
}

func (s *StoreSuite) TestDelete() {
	s.Require().NoError(s.store.Save(s.ctx, storagetest.SampleSnapshot()))
	s.Require().NoError(s.store.Save(s.ctx, storagetest.SampleSnapshot()))

	s.Require().NoError(s.store.Delete(s.ctx))
	s.NoFileExists(s.store.PrimaryPath())
	s.NoFileExists(s.store.BackupPath())
	s.False(s.store.HasSavedGame(s.ctx))

	// Deleting again is fine
	s.NoError(s.store.Delete(s.ctx))
}

func (s *StoreSuite) TestSaveHonoursCancelledContext() {
	ctx, cancel := context.WithTimeout(s.ctx, time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := s.store.Save(ctx, storagetest.SampleSnapshot())
	s.ErrorIs(err, model.ErrSaveFailed)
}
