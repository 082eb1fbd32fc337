package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyMetadataName indicates a missing save display name.
	ErrEmptyMetadataName = errors.New("save name is required")
	// ErrEmptyDigest indicates a missing payload digest.
	ErrEmptyDigest = errors.New("save digest is required")
)

// SaveMetadata is the per-slot descriptor persisted alongside the primary
// payload. A new record is created on every successful write; completed
// records are never mutated in place.
type SaveMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     Version   `json:"version"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Digest      string    `json:"digest"`
	IsCorrupted bool      `json:"is_corrupted"`
	IsBackup    bool      `json:"is_backup"`
}

// NewMetadataInput describes what a metadata record captures about a write.
type NewMetadataInput struct {
	Name    string
	Version Version
	Size    int64
	Digest  string
}

// NewMetadata creates a metadata record for a freshly written save.
func NewMetadata(input NewMetadataInput, now func() time.Time, idGenerator func() (string, error)) (SaveMetadata, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return SaveMetadata{}, ErrEmptyMetadataName
	}
	if strings.TrimSpace(input.Digest) == "" {
		return SaveMetadata{}, ErrEmptyDigest
	}

	id, err := idGenerator()
	if err != nil {
		return SaveMetadata{}, fmt.Errorf("generate metadata id: %w", err)
	}

	createdAt := now().UTC()
	return SaveMetadata{
		ID:        id,
		Name:      input.Name,
		Version:   input.Version,
		Size:      input.Size,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Digest:    input.Digest,
	}, nil
}

// MarshalMetadata encodes a metadata record for storage.
func MarshalMetadata(meta SaveMetadata) ([]byte, error) {
	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal save metadata: %w", err)
	}
	return payload, nil
}

// UnmarshalMetadata decodes a stored metadata record.
func UnmarshalMetadata(payload []byte) (SaveMetadata, error) {
	var meta SaveMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return SaveMetadata{}, fmt.Errorf("unmarshal save metadata: %w", err)
	}
	return meta, nil
}

// SaveSlot is a metadata-only view of one fixed-index save container.
type SaveSlot struct {
	Index    int
	IsEmpty  bool
	Metadata SaveMetadata
}
