package storage

import (
	"context"

	"github.com/mcoot/navalcombat/internal/model"
)

// SnapshotStore persists the single saved game.
// Every backend keeps a primary copy and the previous primary as a backup.
type SnapshotStore interface {
	// Save copies the current primary to the backup slot, then writes snap as
	// the new primary. Failures wrap model.ErrSaveFailed.
	Save(ctx context.Context, snap *model.Snapshot) error

	// Load returns model.ErrNoSavedGame when there is no primary. A corrupt
	// primary falls back to the backup; if both fail the error wraps
	// model.ErrLoadFailed.
	Load(ctx context.Context) (*model.Snapshot, error)

	// HasSavedGame reports whether a non-empty primary exists
	HasSavedGame(ctx context.Context) bool

	// Delete removes the primary and backup. Missing copies are not an error.
	Delete(ctx context.Context) error
}
