// Package codec serializes save documents to the textual byte form that is
// digested and persisted, with an optional reversible gzip compaction pass.
package codec

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/louisbranch/monsterkeep/internal/save/domain"
)

// ErrDecode indicates a payload that cannot be decoded into a save document.
var ErrDecode = errors.New("save document decode failed")

// gzipMagic is the two-byte header identifying a compacted payload.
var gzipMagic = []byte{0x1f, 0x8b}

// Codec encodes and decodes save documents. Encoding is deterministic for
// identical input so the digest over the output is reproducible.
type Codec struct {
	compact bool
}

// New creates a codec. When compact is true, encoded output is gzipped;
// Decode accepts both forms regardless.
func New(compact bool) *Codec {
	return &Codec{compact: compact}
}

// Encode serializes a document, applying compaction when enabled.
func (c *Codec) Encode(doc domain.SaveDocument) ([]byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal save document: %w", err)
	}
	if !c.compact {
		return payload, nil
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("init compaction: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("compact save document: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish compaction: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode. It fails with ErrDecode on malformed
// input and never returns a partially populated document.
func (c *Codec) Decode(raw []byte) (domain.SaveDocument, error) {
	if len(raw) == 0 {
		return domain.SaveDocument{}, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	payload := raw
	if bytes.HasPrefix(raw, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return domain.SaveDocument{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		expanded, err := io.ReadAll(zr)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return domain.SaveDocument{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		payload = expanded
	}

	var doc domain.SaveDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return domain.SaveDocument{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if doc.Version.IsZero() {
		return domain.SaveDocument{}, fmt.Errorf("%w: missing schema version", ErrDecode)
	}
	return doc, nil
}
