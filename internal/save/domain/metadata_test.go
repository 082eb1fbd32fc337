package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewMetadata(t *testing.T) {
	fixedTime := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	input := NewMetadataInput{
		Name:    "  Riverbend Ranch  ",
		Version: Version{1, 2, 0},
		Size:    2048,
		Digest:  "abc123",
	}

	meta, err := NewMetadata(input, func() time.Time { return fixedTime }, func() (string, error) {
		return "meta123", nil
	})
	if err != nil {
		t.Fatalf("new metadata: %v", err)
	}

	if meta.ID != "meta123" {
		t.Fatalf("expected id meta123, got %q", meta.ID)
	}
	if meta.Name != "Riverbend Ranch" {
		t.Fatalf("expected trimmed name, got %q", meta.Name)
	}
	if meta.Version != (Version{1, 2, 0}) {
		t.Fatalf("expected version 1.2.0, got %v", meta.Version)
	}
	if meta.Size != 2048 {
		t.Fatalf("expected size 2048, got %d", meta.Size)
	}
	if !meta.CreatedAt.Equal(fixedTime) || !meta.UpdatedAt.Equal(fixedTime) {
		t.Fatal("expected timestamps to match fixed time")
	}
	if meta.IsCorrupted || meta.IsBackup {
		t.Fatal("expected fresh metadata flags to be unset")
	}
}

func TestNewMetadataValidation(t *testing.T) {
	tests := []struct {
		name  string
		input NewMetadataInput
		err   error
	}{
		{
			name:  "empty name",
			input: NewMetadataInput{Name: "  ", Digest: "abc"},
			err:   ErrEmptyMetadataName,
		},
		{
			name:  "empty digest",
			input: NewMetadataInput{Name: "Ranch", Digest: " "},
			err:   ErrEmptyDigest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMetadata(tt.input, nil, nil)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	meta := SaveMetadata{
		ID:        "meta123",
		Name:      "Ranch",
		Version:   Version{1, 2, 0},
		Size:      512,
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Digest:    "abc123",
	}

	payload, err := MarshalMetadata(meta)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	got, err := UnmarshalMetadata(payload)
	if err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if got != meta {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, meta)
	}
}

func TestUnmarshalMetadataMalformed(t *testing.T) {
	if _, err := UnmarshalMetadata([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed metadata")
	}
}
