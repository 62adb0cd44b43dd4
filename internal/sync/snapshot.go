package sync

import (
	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/remote"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ApplySnapshot merges a remote snapshot into the local cache.
//
// The reconciliation rule is "local intent wins over a stale remote echo":
// entities with an in-flight local mutation or a pending-delete tombstone
// are not overwritten or resurrected until that intent is acknowledged or
// abandoned.
func (e *Engine) ApplySnapshot(snapshot remote.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending, err := models.PendingMutationIDs(e.db)
	if err != nil {
		return err
	}

	for i := range snapshot.Envelopes {
		err = e.upsert(&snapshot.Envelopes[i], pending)
		if err != nil {
			return err
		}
	}

	for i := range snapshot.Transactions {
		err = e.upsert(&snapshot.Transactions[i], pending)
		if err != nil {
			return err
		}
	}

	for i := range snapshot.IncomeSources {
		err = e.upsert(&snapshot.IncomeSources[i], pending)
		if err != nil {
			return err
		}
	}

	for i := range snapshot.Allocations {
		err = e.upsert(&snapshot.Allocations[i], pending)
		if err != nil {
			return err
		}
	}

	for i := range snapshot.DistributionTemplates {
		err = e.upsert(&snapshot.DistributionTemplates[i], pending)
		if err != nil {
			return err
		}
	}

	if snapshot.AppSettings != nil {
		err = e.upsert(snapshot.AppSettings, pending)
		if err != nil {
			return err
		}
	}

	for _, id := range snapshot.Deleted {
		if pending[id] {
			// Deferred until the local mutation for this entity resolves
			log.Debug().Str("id", id.String()).Msg("remote delete deferred, local mutation in flight")
			continue
		}

		err = e.removeEverywhere(id)
		if err != nil {
			return err
		}
	}

	return nil
}

// upsert writes one remote entity into the cache. Insertion is guarded by
// an existence check on the identifier so that re-delivered snapshots do
// not duplicate rows.
func (e *Engine) upsert(entity models.Syncable, pending map[uuid.UUID]bool) error {
	if pending[entity.GetID()] {
		log.Debug().Str("entity", entity.Self()).Str("id", entity.GetID().String()).Msg("remote echo ignored, local mutation in flight")
		return nil
	}

	var count int64
	err := e.db.Unscoped().Model(entity).Where("id = ?", entity.GetID()).Count(&count).Error
	if err != nil {
		return err
	}

	session := e.db.Session(&gorm.Session{FullSaveAssociations: true})
	if count == 0 {
		return session.Create(entity).Error
	}

	return session.Save(entity).Error
}

// removeEverywhere deletes the ID from all entity tables. Remote deletes
// carry no type information, and IDs are unique across the data set.
func (e *Engine) removeEverywhere(id uuid.UUID) error {
	for _, model := range []any{
		&models.Transaction{},
		&models.Allocation{},
		&models.IncomeSource{},
		&models.TemplateShare{},
		&models.DistributionTemplate{},
		&models.Envelope{},
		&models.AppSettings{},
	} {
		err := e.db.Unscoped().Where("id = ?", id).Delete(model).Error
		if err != nil {
			return err
		}
	}

	return nil
}
