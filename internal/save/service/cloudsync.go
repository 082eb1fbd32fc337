package service

import (
	"context"
	"errors"

	"github.com/louisbranch/monsterkeep/internal/save/domain"
)

// ErrCloudSyncUnavailable indicates the cloud sync backend is not wired up.
var ErrCloudSyncUnavailable = errors.New("cloud sync is not available")

// CloudSyncer mirrors saves to a remote backend. The save layer treats sync
// as best-effort: push failures are logged, never fatal.
type CloudSyncer interface {
	Push(ctx context.Context, slot int, meta domain.SaveMetadata, payload []byte) error
	Pull(ctx context.Context, slot int) ([]byte, error)
}

// NoopCloudSyncer is the stub backend used until real sync ships.
type NoopCloudSyncer struct{}

// Push reports ErrCloudSyncUnavailable.
func (NoopCloudSyncer) Push(context.Context, int, domain.SaveMetadata, []byte) error {
	return ErrCloudSyncUnavailable
}

// Pull reports ErrCloudSyncUnavailable.
func (NoopCloudSyncer) Pull(context.Context, int) ([]byte, error) {
	return nil, ErrCloudSyncUnavailable
}
