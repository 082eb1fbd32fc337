package storage

import (
	"fmt"
	"strings"
)

// Keys builds namespaced store keys for save slots. The scheme is
// {namespace}-{kind}-{slot} for primary records and
// {namespace}-{kind}-{slot}-backup-{rank} for backup records.
type Keys struct {
	Namespace string
}

// NewKeys creates a key builder for a namespace. An empty namespace falls
// back to "monsterkeep".
func NewKeys(namespace string) Keys {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "monsterkeep"
	}
	return Keys{Namespace: namespace}
}

// Primary returns the key holding a slot's encoded save document.
func (k Keys) Primary(slot int) string {
	return fmt.Sprintf("%s-save-%d", k.Namespace, slot)
}

// Metadata returns the key holding a slot's metadata record.
func (k Keys) Metadata(slot int) string {
	return fmt.Sprintf("%s-meta-%d", k.Namespace, slot)
}

// Backup returns the key holding a slot's backup payload at the given rank.
// Rank 1 is the most recent backup.
func (k Keys) Backup(slot, rank int) string {
	return fmt.Sprintf("%s-save-%d-backup-%d", k.Namespace, slot, rank)
}

// BackupMetadata returns the key holding a slot's backup metadata at the
// given rank.
func (k Keys) BackupMetadata(slot, rank int) string {
	return fmt.Sprintf("%s-meta-%d-backup-%d", k.Namespace, slot, rank)
}

// BackupPrefix returns the prefix shared by every backup payload key of a
// slot, for prefix enumeration.
func (k Keys) BackupPrefix(slot int) string {
	return fmt.Sprintf("%s-save-%d-backup-", k.Namespace, slot)
}
