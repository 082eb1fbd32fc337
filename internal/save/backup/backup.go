// Package backup maintains the rotating per-slot backup chain and the
// corruption-triggered fallback restoration path.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/monsterkeep/internal/save/codec"
	"github.com/louisbranch/monsterkeep/internal/save/digest"
	"github.com/louisbranch/monsterkeep/internal/save/domain"
	"github.com/louisbranch/monsterkeep/internal/storage"
)

// ErrNoValidBackup indicates no backup rank passed digest verification.
var ErrNoValidBackup = errors.New("no valid backup found")

var tracer = otel.Tracer("github.com/louisbranch/monsterkeep/internal/save/backup")

// Manager owns the backup lifecycle for every slot. Backup keys are written
// by no other component.
type Manager struct {
	store      storage.KV
	keys       storage.Keys
	codec      *codec.Codec
	maxBackups int
}

// NewManager creates a backup manager keeping up to maxBackups per slot.
func NewManager(store storage.KV, keys storage.Keys, c *codec.Codec, maxBackups int) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if c == nil {
		return nil, fmt.Errorf("codec is required")
	}
	if maxBackups < 1 {
		return nil, fmt.Errorf("max backups must be at least 1, got %d", maxBackups)
	}
	return &Manager{store: store, keys: keys, codec: c, maxBackups: maxBackups}, nil
}

// entry is one staged backup record. absent marks a rank with no stored
// record, so rollback knows to remove rather than rewrite.
type entry struct {
	payload []byte
	meta    []byte
	absent  bool
}

// Rotate shifts ranks 1..maxBackups-1 to 2..maxBackups, discards what falls
// off the end, and copies the slot's current primary into rank 1. It is a
// no-op when the slot is empty. The returned rollback restores the chain to
// its pre-rotation state and is used by the caller when a subsequent primary
// write fails, so a failed save never leaves a rotated-but-unwritten state.
func (m *Manager) Rotate(ctx context.Context, slot int) (rollback func(context.Context) error, err error) {
	ctx, span := tracer.Start(ctx, "backup.rotate",
		trace.WithAttributes(attribute.Int("save.slot", slot)))
	defer span.End()

	noop := func(context.Context) error { return nil }

	primary, err := m.read(ctx, m.keys.Primary(slot), m.keys.Metadata(slot))
	if err != nil {
		return noop, err
	}
	if primary.absent {
		return noop, nil
	}

	staged := make(map[int]entry, m.maxBackups)
	for rank := 1; rank <= m.maxBackups; rank++ {
		e, err := m.read(ctx, m.keys.Backup(slot, rank), m.keys.BackupMetadata(slot, rank))
		if err != nil {
			return noop, err
		}
		staged[rank] = e
	}

	backupMeta, err := asBackupMetadata(primary.meta)
	if err != nil {
		return noop, err
	}

	next := make(map[int]entry, m.maxBackups)
	next[1] = entry{payload: primary.payload, meta: backupMeta}
	for rank := 2; rank <= m.maxBackups; rank++ {
		next[rank] = staged[rank-1]
	}

	restore := func(ctx context.Context) error {
		var firstErr error
		for rank := 1; rank <= m.maxBackups; rank++ {
			if err := m.write(ctx, slot, rank, staged[rank]); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for rank := 1; rank <= m.maxBackups; rank++ {
		if err := m.write(ctx, slot, rank, next[rank]); err != nil {
			if rerr := restore(ctx); rerr != nil {
				log.Printf("backup rotation rollback failed slot=%d error=%v", slot, rerr)
			}
			return noop, err
		}
	}
	return restore, nil
}

// RestoreFirstValid iterates backup ranks 1..maxBackups in order and returns
// the decoded document of the first rank whose digest verifies. The ordering
// is strict: a valid earlier rank is never skipped in favor of a later one.
func (m *Manager) RestoreFirstValid(ctx context.Context, slot int) (domain.SaveDocument, domain.SaveMetadata, error) {
	ctx, span := tracer.Start(ctx, "backup.restore_first_valid",
		trace.WithAttributes(attribute.Int("save.slot", slot)))
	defer span.End()

	for rank := 1; rank <= m.maxBackups; rank++ {
		e, err := m.read(ctx, m.keys.Backup(slot, rank), m.keys.BackupMetadata(slot, rank))
		if err != nil {
			return domain.SaveDocument{}, domain.SaveMetadata{}, err
		}
		if e.absent {
			continue
		}

		meta, err := domain.UnmarshalMetadata(e.meta)
		if err != nil {
			log.Printf("backup metadata unreadable slot=%d rank=%d error=%v", slot, rank, err)
			continue
		}
		if !digest.Verify(e.payload, meta.Digest) {
			log.Printf("backup digest mismatch slot=%d rank=%d", slot, rank)
			continue
		}

		doc, err := m.codec.Decode(e.payload)
		if err != nil {
			log.Printf("backup decode failed slot=%d rank=%d error=%v", slot, rank, err)
			continue
		}

		span.SetAttributes(attribute.Int("save.backup_rank", rank))
		return doc, meta, nil
	}
	return domain.SaveDocument{}, domain.SaveMetadata{}, fmt.Errorf("%w: slot %d", ErrNoValidBackup, slot)
}

// DeleteChain removes every backup record of a slot. No backup outlives its
// primary's deletion.
func (m *Manager) DeleteChain(ctx context.Context, slot int) error {
	for rank := 1; rank <= m.maxBackups; rank++ {
		if err := m.store.Remove(ctx, m.keys.Backup(slot, rank)); err != nil {
			return fmt.Errorf("remove backup rank %d: %w", rank, err)
		}
		if err := m.store.Remove(ctx, m.keys.BackupMetadata(slot, rank)); err != nil {
			return fmt.Errorf("remove backup metadata rank %d: %w", rank, err)
		}
	}
	return nil
}

// Count reports how many backup payloads a slot currently holds.
func (m *Manager) Count(ctx context.Context, slot int) (int, error) {
	keys, err := m.store.List(ctx, m.keys.BackupPrefix(slot))
	if err != nil {
		return 0, fmt.Errorf("list backups: %w", err)
	}
	return len(keys), nil
}

// read fetches a payload/metadata pair, tolerating absence of either key.
func (m *Manager) read(ctx context.Context, payloadKey, metaKey string) (entry, error) {
	payload, err := m.store.Get(ctx, payloadKey)
	if errors.Is(err, storage.ErrNotFound) {
		return entry{absent: true}, nil
	}
	if err != nil {
		return entry{}, fmt.Errorf("read %s: %w", payloadKey, err)
	}

	meta, err := m.store.Get(ctx, metaKey)
	if errors.Is(err, storage.ErrNotFound) {
		// Half-state: the payload exists without its metadata. Treated as
		// absent, but the overwrite should be observable.
		log.Printf("payload without metadata key=%s meta_key=%s", payloadKey, metaKey)
		return entry{absent: true}, nil
	}
	if err != nil {
		return entry{}, fmt.Errorf("read %s: %w", metaKey, err)
	}
	return entry{payload: payload, meta: meta}, nil
}

// write stores a payload/metadata pair at a rank, removing the rank when the
// entry is absent.
func (m *Manager) write(ctx context.Context, slot, rank int, e entry) error {
	payloadKey := m.keys.Backup(slot, rank)
	metaKey := m.keys.BackupMetadata(slot, rank)

	if e.absent {
		if err := m.store.Remove(ctx, payloadKey); err != nil {
			return fmt.Errorf("remove %s: %w", payloadKey, err)
		}
		if err := m.store.Remove(ctx, metaKey); err != nil {
			return fmt.Errorf("remove %s: %w", metaKey, err)
		}
		return nil
	}

	if err := m.store.Set(ctx, payloadKey, e.payload); err != nil {
		return fmt.Errorf("write %s: %w", payloadKey, err)
	}
	if err := m.store.Set(ctx, metaKey, e.meta); err != nil {
		return fmt.Errorf("write %s: %w", metaKey, err)
	}
	return nil
}

// asBackupMetadata re-marks a primary metadata record as a backup copy.
func asBackupMetadata(raw []byte) ([]byte, error) {
	meta, err := domain.UnmarshalMetadata(raw)
	if err != nil {
		return nil, fmt.Errorf("parse primary metadata: %w", err)
	}
	meta.IsBackup = true
	return domain.MarshalMetadata(meta)
}
