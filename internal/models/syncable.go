package models

import (
	"github.com/google/uuid"
)

// Syncable is implemented by every entity that the sync engine mirrors to
// the remote store. Self returns the remote collection name.
type Syncable interface {
	Self() string
	GetID() uuid.UUID
}

// GetID returns the resource ID.
func (m DefaultModel) GetID() uuid.UUID {
	return m.ID
}

func (Envelope) Self() string             { return "envelopes" }
func (Transaction) Self() string          { return "transactions" }
func (IncomeSource) Self() string         { return "incomeSources" }
func (Allocation) Self() string           { return "allocations" }
func (DistributionTemplate) Self() string { return "distributionTemplates" }
func (AppSettings) Self() string          { return "appSettings" }
