// Package service implements the slot orchestrator, the public surface of
// the save-game persistence layer. It composes the codec, digest verifier,
// integrity registry, migration engine, and backup chain manager against an
// external byte store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	mkerrors "github.com/louisbranch/monsterkeep/internal/errors"
	"github.com/louisbranch/monsterkeep/internal/platform/config"
	"github.com/louisbranch/monsterkeep/internal/save/backup"
	"github.com/louisbranch/monsterkeep/internal/save/codec"
	"github.com/louisbranch/monsterkeep/internal/save/digest"
	"github.com/louisbranch/monsterkeep/internal/save/domain"
	"github.com/louisbranch/monsterkeep/internal/save/integrity"
	"github.com/louisbranch/monsterkeep/internal/save/migrate"
	"github.com/louisbranch/monsterkeep/internal/storage"
)

var tracer = otel.Tracer("github.com/louisbranch/monsterkeep/internal/save/service")

// Options configures an Orchestrator. Store is required; every other field
// defaults from Config.
type Options struct {
	Config     config.Save
	Store      storage.KV
	Codec      *codec.Codec
	Registry   *integrity.Registry
	Migrations *migrate.Engine
	Backups    *backup.Manager
	CloudSync  CloudSyncer
	Clock      func() time.Time
	NewID      func() (string, error)
}

// Orchestrator implements the save/load/list/delete slot operations. It owns
// its collaborators; there is no ambient global state.
type Orchestrator struct {
	cfg        config.Save
	store      storage.KV
	keys       storage.Keys
	codec      *codec.Codec
	registry   *integrity.Registry
	migrations *migrate.Engine
	backups    *backup.Manager
	cloud      CloudSyncer
	clock      func() time.Time
	newID      func() (string, error)

	// locks is the per-slot lock arena. A save or load for slot S runs to
	// completion before another operation on S begins; cross-slot
	// operations proceed concurrently.
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// New creates an orchestrator from options, filling in defaults for any
// collaborator left nil.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	keys := storage.NewKeys(opts.Config.Namespace)

	c := opts.Codec
	if c == nil {
		c = codec.New(opts.Config.Compaction)
	}

	registry := opts.Registry
	if registry == nil {
		var err error
		registry, err = integrity.NewDefaultRegistry(integrity.Config{
			LedgerTolerance: opts.Config.LedgerTolerance,
			StartingBalance: opts.Config.StartingBalance,
			MonsterLevelMin: opts.Config.MonsterLevelMin,
			MonsterLevelMax: opts.Config.MonsterLevelMax,
		})
		if err != nil {
			return nil, fmt.Errorf("default integrity registry: %w", err)
		}
	}

	migrations := opts.Migrations
	if migrations == nil {
		var err error
		migrations, err = migrate.NewDefaultEngine()
		if err != nil {
			return nil, fmt.Errorf("default migration engine: %w", err)
		}
	}

	backups := opts.Backups
	if backups == nil {
		var err error
		backups, err = backup.NewManager(opts.Store, keys, c, opts.Config.MaxBackups)
		if err != nil {
			return nil, fmt.Errorf("backup manager: %w", err)
		}
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = domain.NewID
	}

	return &Orchestrator{
		cfg:        opts.Config,
		store:      opts.Store,
		keys:       keys,
		codec:      c,
		registry:   registry,
		migrations: migrations,
		backups:    backups,
		cloud:      opts.CloudSync,
		clock:      clock,
		newID:      newID,
		locks:      make(map[int]*sync.Mutex),
	}, nil
}

// slotLock returns the lock for a slot, creating it on first use.
func (o *Orchestrator) slotLock(slot int) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.locks[slot]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[slot] = lock
	}
	return lock
}

// validSlot rejects slot indices outside [1, MaxSlots] before any I/O.
func (o *Orchestrator) validSlot(slot int) error {
	if slot < 1 || slot > o.cfg.MaxSlots {
		return mkerrors.E(mkerrors.CodeInvalidSlot,
			fmt.Errorf("%w: %d not in [1,%d]", ErrInvalidSlot, slot, o.cfg.MaxSlots))
	}
	return nil
}

// Save snapshots the game context into a slot. It runs integrity checks
// (repairing where possible), encodes, digests, rotates backups when the
// slot already holds a save, and writes the primary payload plus a fresh
// metadata record. Exactly one new backup is created per successful save
// that overwrites an existing slot.
func (o *Orchestrator) Save(ctx context.Context, slot int, game GameContext) (domain.SaveMetadata, error) {
	if err := o.validSlot(slot); err != nil {
		return domain.SaveMetadata{}, err
	}

	lock := o.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, span := tracer.Start(ctx, "save.write",
		trace.WithAttributes(attribute.Int("save.slot", slot)))
	defer span.End()

	doc := BuildDocument(game, o.clock)
	doc.Progression.Statistics.TotalSaves++

	result := o.registry.RunAll(doc)
	if !result.Valid {
		return domain.SaveMetadata{}, mkerrors.E(mkerrors.CodeCriticalIntegrityViolation,
			&CriticalViolationError{Violations: result.Violations})
	}
	for _, v := range result.Violations {
		log.Printf("save integrity violation slot=%d check=%s repaired=%v error=%v",
			slot, v.Check, v.Repaired, v.Err)
	}
	doc = result.Repaired

	payload, err := o.codec.Encode(doc)
	if err != nil {
		return domain.SaveMetadata{}, fmt.Errorf("encode save: %w", err)
	}
	dg := digest.Digest(payload)

	meta, err := domain.NewMetadata(domain.NewMetadataInput{
		Name:    doc.Player.Name,
		Version: doc.Version,
		Size:    int64(len(payload)),
		Digest:  dg,
	}, o.clock, o.newID)
	if err != nil {
		return domain.SaveMetadata{}, fmt.Errorf("build metadata: %w", err)
	}
	metaBytes, err := domain.MarshalMetadata(meta)
	if err != nil {
		return domain.SaveMetadata{}, err
	}

	rollback, err := o.backups.Rotate(ctx, slot)
	if err != nil {
		return domain.SaveMetadata{}, mkerrors.E(mkerrors.CodeStoreIO,
			fmt.Errorf("rotate backups: %w", err))
	}

	if err := o.writePrimary(ctx, slot, payload, metaBytes); err != nil {
		if rerr := rollback(ctx); rerr != nil {
			log.Printf("save rollback failed slot=%d error=%v", slot, rerr)
		}
		return domain.SaveMetadata{}, mkerrors.E(mkerrors.CodeStoreIO, err)
	}

	if o.cloud != nil {
		if err := o.cloud.Push(ctx, slot, meta, payload); err != nil {
			if !errors.Is(err, ErrCloudSyncUnavailable) {
				log.Printf("cloud sync push failed slot=%d error=%v", slot, err)
			}
		}
	}

	log.Printf("save written slot=%d id=%s size=%d digest=%s", slot, meta.ID, meta.Size, dg)
	return meta, nil
}

func (o *Orchestrator) writePrimary(ctx context.Context, slot int, payload, metaBytes []byte) error {
	if err := o.store.Set(ctx, o.keys.Primary(slot), payload); err != nil {
		return fmt.Errorf("write primary: %w", err)
	}
	if err := o.store.Set(ctx, o.keys.Metadata(slot), metaBytes); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Load reads a slot's primary save, verifies its digest, and returns the
// decoded, migrated, integrity-checked document. On digest mismatch the
// metadata is marked corrupted and the backup chain is tried in rank order.
func (o *Orchestrator) Load(ctx context.Context, slot int) (domain.SaveDocument, error) {
	if err := o.validSlot(slot); err != nil {
		return domain.SaveDocument{}, err
	}

	lock := o.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, span := tracer.Start(ctx, "save.load",
		trace.WithAttributes(attribute.Int("save.slot", slot)))
	defer span.End()

	metaBytes, err := o.store.Get(ctx, o.keys.Metadata(slot))
	if errors.Is(err, storage.ErrNotFound) {
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeSlotEmpty,
			fmt.Errorf("%w: slot %d", ErrSlotEmpty, slot))
	}
	if err != nil {
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeStoreIO,
			fmt.Errorf("read metadata: %w", err))
	}
	meta, err := domain.UnmarshalMetadata(metaBytes)
	if err != nil {
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeDecodeFailed, err)
	}

	payload, err := o.store.Get(ctx, o.keys.Primary(slot))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeStoreIO,
			fmt.Errorf("read primary: %w", err))
	}

	// A missing primary with live metadata is treated like a digest
	// mismatch: fall back to the backup chain.
	if errors.Is(err, storage.ErrNotFound) || !digest.Verify(payload, meta.Digest) {
		log.Printf("save digest mismatch slot=%d id=%s", slot, meta.ID)
		return o.loadFromBackups(ctx, slot, meta, metaBytes)
	}

	doc, err := o.codec.Decode(payload)
	if err != nil {
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeDecodeFailed, err)
	}
	return o.finalize(ctx, slot, doc)
}

// loadFromBackups marks the primary corrupted and restores the first backup
// rank that verifies.
func (o *Orchestrator) loadFromBackups(ctx context.Context, slot int, meta domain.SaveMetadata, metaBytes []byte) (domain.SaveDocument, error) {
	if !meta.IsCorrupted {
		meta.IsCorrupted = true
		if corrupted, err := domain.MarshalMetadata(meta); err == nil {
			if err := o.store.Set(ctx, o.keys.Metadata(slot), corrupted); err != nil {
				log.Printf("mark corrupted failed slot=%d error=%v", slot, err)
			}
		}
	}

	doc, backupMeta, err := o.backups.RestoreFirstValid(ctx, slot)
	if errors.Is(err, backup.ErrNoValidBackup) {
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeCorruptedNoBackup,
			fmt.Errorf("%w: slot %d", ErrCorruptedNoBackup, slot))
	}
	if err != nil {
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeStoreIO, err)
	}

	log.Printf("save restored from backup slot=%d backup_id=%s", slot, backupMeta.ID)
	return o.finalize(ctx, slot, doc)
}

// finalize migrates a decoded document to the current schema and runs the
// integrity registry over it.
func (o *Orchestrator) finalize(ctx context.Context, slot int, doc domain.SaveDocument) (domain.SaveDocument, error) {
	migrated, err := o.migrations.Migrate(doc)
	if err != nil {
		if errors.Is(err, migrate.ErrNoPath) {
			return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeMigrationNoPath, err)
		}
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeMigrationValidationFailed, err)
	}

	result := o.registry.RunAll(migrated)
	if !result.Valid {
		return domain.SaveDocument{}, mkerrors.E(mkerrors.CodeCriticalIntegrityViolation,
			&CriticalViolationError{Violations: result.Violations})
	}
	for _, v := range result.Violations {
		log.Printf("load integrity violation slot=%d check=%s repaired=%v error=%v",
			slot, v.Check, v.Repaired, v.Err)
	}
	return result.Repaired, nil
}

// ListSlots returns metadata-only views for every configured slot index.
// Slots whose metadata is missing or unreadable report IsEmpty=true.
func (o *Orchestrator) ListSlots(ctx context.Context) ([]domain.SaveSlot, error) {
	slots := make([]domain.SaveSlot, 0, o.cfg.MaxSlots)
	for index := 1; index <= o.cfg.MaxSlots; index++ {
		slot := domain.SaveSlot{Index: index, IsEmpty: true}

		metaBytes, err := o.store.Get(ctx, o.keys.Metadata(index))
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return nil, mkerrors.E(mkerrors.CodeStoreIO,
				fmt.Errorf("read metadata for slot %d: %w", index, err))
		default:
			if meta, err := domain.UnmarshalMetadata(metaBytes); err == nil {
				slot.IsEmpty = false
				slot.Metadata = meta
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// DeleteSave removes a slot's primary payload, metadata, and entire backup
// chain.
func (o *Orchestrator) DeleteSave(ctx context.Context, slot int) error {
	if err := o.validSlot(slot); err != nil {
		return err
	}

	lock := o.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, span := tracer.Start(ctx, "save.delete",
		trace.WithAttributes(attribute.Int("save.slot", slot)))
	defer span.End()

	if err := o.store.Remove(ctx, o.keys.Primary(slot)); err != nil {
		return mkerrors.E(mkerrors.CodeStoreIO, fmt.Errorf("remove primary: %w", err))
	}
	if err := o.store.Remove(ctx, o.keys.Metadata(slot)); err != nil {
		return mkerrors.E(mkerrors.CodeStoreIO, fmt.Errorf("remove metadata: %w", err))
	}
	if err := o.backups.DeleteChain(ctx, slot); err != nil {
		return mkerrors.E(mkerrors.CodeStoreIO, err)
	}

	log.Printf("save deleted slot=%d", slot)
	return nil
}
