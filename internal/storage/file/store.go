package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/storage"
	"github.com/mcoot/navalcombat/internal/storage/codec"
)

// Save file layout
const (
	DefaultDir  = "battleship_saves"
	PrimaryFile = "last_game.dat"
	BackupFile  = "last_game_backup.dat"
)

// Store keeps the saved game as a pair of files in one directory
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a file store rooted at dir, or DefaultDir when dir is empty
func New(dir string, logger *slog.Logger) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{
		dir:    dir,
		logger: logger.With(slog.String("component", "file-store")),
	}
}

// Ensure Store implements the interface
var _ storage.SnapshotStore = (*Store)(nil)

// Dir returns the save directory
func (s *Store) Dir() string {
	return s.dir
}

// PrimaryPath returns the path of the primary save file
func (s *Store) PrimaryPath() string {
	return filepath.Join(s.dir, PrimaryFile)
}

// BackupPath returns the path of the backup save file
func (s *Store) BackupPath() string {
	return filepath.Join(s.dir, BackupFile)
}

func (s *Store) Save(ctx context.Context, snap *model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrSaveFailed, err)
	}

	data, err := codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSaveFailed, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create save directory: %v", model.ErrSaveFailed, err)
	}

	s.backupPrimary()

	if err := writeAtomic(s.dir, s.PrimaryPath(), data); err != nil {
		return fmt.Errorf("%w: %v", model.ErrSaveFailed, err)
	}

	info, err := os.Stat(s.PrimaryPath())
	if err != nil {
		return fmt.Errorf("%w: verify save: %v", model.ErrSaveFailed, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: save file is empty", model.ErrSaveFailed)
	}

	s.logger.Info("game saved",
		slog.String("path", s.PrimaryPath()),
		slog.Int64("bytes", info.Size()),
	)
	return nil
}

// backupPrimary copies the current primary over the backup. A failed copy is
// logged and the save carries on.
func (s *Store) backupPrimary() {
	data, err := os.ReadFile(s.PrimaryPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("could not read primary for backup", slog.String("error", err.Error()))
		}
		return
	}
	if len(data) == 0 {
		return
	}
	if err := writeAtomic(s.dir, s.BackupPath(), data); err != nil {
		s.logger.Warn("could not write backup", slog.String("error", err.Error()))
	}
}

func (s *Store) Load(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrLoadFailed, err)
	}

	if _, err := os.Stat(s.PrimaryPath()); errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrNoSavedGame
	}

	snap, primaryErr := readSnapshot(s.PrimaryPath())
	if primaryErr == nil {
		return snap, nil
	}
	s.logger.Warn("primary save unreadable, trying backup", slog.String("error", primaryErr.Error()))

	snap, backupErr := readSnapshot(s.BackupPath())
	if backupErr == nil {
		s.logger.Info("restored from backup save", slog.String("path", s.BackupPath()))
		return snap, nil
	}

	return nil, fmt.Errorf("%w: %w", model.ErrLoadFailed, errors.Join(primaryErr, backupErr))
}

func readSnapshot(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return codec.Decode(data)
}

func (s *Store) HasSavedGame(ctx context.Context) bool {
	info, err := os.Stat(s.PrimaryPath())
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func (s *Store) Delete(ctx context.Context) error {
	var errs []error
	for _, path := range []string{s.PrimaryPath(), s.BackupPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("could not remove save file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeAtomic writes data to a temp file in dir and renames it over path,
// so a reader never sees a partially written file
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".save-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
