package ports

import (
	"time"

	"github.com/quorumchat/quorum/internal/core/domain"
)

// SnapshotGateway persists the whole aggregate as a single opaque file.
type SnapshotGateway interface {
	// Save serializes the aggregate atomically. It never panics past this
	// boundary; any I/O failure comes back as an error.
	Save(store *domain.Store, path string) error
	// Load rebuilds an aggregate from the file. A missing file yields
	// domain.ErrSnapshotMissing; a decode failure never produces a
	// partially populated store.
	Load(path string) (*domain.Store, error)
	// ModTime reports the file's modification time, for the staleness
	// watermark. Missing file yields domain.ErrSnapshotMissing.
	ModTime(path string) (time.Time, error)
}
