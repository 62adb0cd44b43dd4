// Package remote defines the contract of the remote store the engine syncs
// against and provides the HTTP/websocket client implementation.
//
// The remote store's internal replication and consistency model are not our
// concern, the engine only reacts to this interface. Every call can fail
// with a network-classified error (see errors.go) or a semantic one.
package remote

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/types"
)

// Snapshot is the remote representation of a user's data set. Change
// notifications deliver partial snapshots, ListByUser a full one.
type Snapshot struct {
	Envelopes             []models.Envelope             `json:"envelopes"`
	Transactions          []models.Transaction          `json:"transactions"`
	IncomeSources         []models.IncomeSource         `json:"incomeSources"`
	Allocations           []models.Allocation           `json:"allocations"`
	DistributionTemplates []models.DistributionTemplate `json:"distributionTemplates"`
	AppSettings           *models.AppSettings           `json:"appSettings,omitempty"`

	// Deleted lists IDs removed remotely since the previous notification.
	Deleted []uuid.UUID `json:"deleted,omitempty"`
}

// Store is the remote persistence the sync engine reconciles the local
// cache against.
type Store interface {
	Create(ctx context.Context, userID uuid.UUID, entityType string, id uuid.UUID, payload json.RawMessage) error
	Update(ctx context.Context, userID uuid.UUID, entityType string, id uuid.UUID, payload json.RawMessage) error
	Delete(ctx context.Context, userID uuid.UUID, entityType string, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	ListByMonth(ctx context.Context, userID uuid.UUID, month types.Month) (Snapshot, error)

	// Subscribe delivers remote change notifications until the context is
	// cancelled. The returned channel is closed when the stream ends.
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Snapshot, error)
}
