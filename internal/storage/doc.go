// Package storage defines the persistence interfaces for the monsterkeep
// save system.
//
// It provides the byte-store collaborator abstraction the save layer writes
// through, plus the key scheme used to namespace primary saves, metadata
// records, and rotating backups per slot. Implementations (e.g., using
// sqlite) can be found in subpackages.
//
// # Error Types
//
// The package defines common error types used across storage implementations:
//   - ErrNotFound: Indicates a requested record is missing.
package storage
