package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MutationKind is the remote operation a pending mutation represents.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// PendingMutation is a locally applied change that is not yet acknowledged
// by the remote store. The queue is flushed in Sequence order on reconnect.
//
// A row with Kind == MutationDelete doubles as the tombstone for its entity:
// as long as it exists, remote snapshots must not resurrect the entity.
type PendingMutation struct {
	Sequence   uint            `json:"sequence" gorm:"primaryKey;autoIncrement"`
	CreatedAt  time.Time       `json:"createdAt"`
	UserID     uuid.UUID       `json:"userId"`
	Kind       MutationKind    `json:"kind"`
	EntityType string          `json:"entityType"` // table-like name, e.g. "envelopes"
	EntityID   uuid.UUID       `json:"entityId" gorm:"index"`
	Payload    json.RawMessage `json:"payload" gorm:"type:TEXT"`
	Attempts   uint            `json:"attempts"`
	LastError  string          `json:"lastError,omitempty"`
}

// PendingDeleteIDs returns the set of entity IDs that are locally deleted
// but whose remote delete has not been acknowledged yet.
func PendingDeleteIDs(db *gorm.DB) (map[uuid.UUID]bool, error) {
	var tombstones []PendingMutation
	err := db.Where(&PendingMutation{Kind: MutationDelete}).Find(&tombstones).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[uuid.UUID]bool, len(tombstones))
	for _, tombstone := range tombstones {
		ids[tombstone.EntityID] = true
	}

	return ids, nil
}

// PendingMutationIDs returns the set of entity IDs with any unacknowledged
// local mutation, tombstones included.
func PendingMutationIDs(db *gorm.DB) (map[uuid.UUID]bool, error) {
	var pending []PendingMutation
	err := db.Find(&pending).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[uuid.UUID]bool, len(pending))
	for _, mutation := range pending {
		ids[mutation.EntityID] = true
	}

	return ids, nil
}
