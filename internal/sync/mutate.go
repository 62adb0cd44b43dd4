package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/remote"
	"github.com/rs/zerolog/log"
)

// Outcome is the result of a mutation going through the optimistic-update
// path.
type Outcome string

const (
	// OutcomeConfirmed means the remote store acknowledged the write.
	OutcomeConfirmed Outcome = "confirmed"

	// OutcomeQueued means the remote write failed with a network-classified
	// error: the optimistic local state is kept and the mutation waits in
	// the queue for the next SyncData. To the user this is "saved locally,
	// will sync".
	OutcomeQueued Outcome = "queued"

	// OutcomeReverted means the remote rejected the write for a semantic
	// reason: the optimistic local state was rolled back and the error
	// needs user action.
	OutcomeReverted Outcome = "reverted"
)

// CreateEntity applies an optimistic local insert and pushes it to the
// remote store.
func (e *Engine) CreateEntity(ctx context.Context, entity models.Syncable) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.allowWrites()
	if err != nil {
		return OutcomeReverted, err
	}

	err = e.db.Create(entity).Error
	if err != nil {
		// Local validation failure, nothing was applied
		return OutcomeReverted, err
	}

	payload, err := json.Marshal(entity)
	if err != nil {
		return OutcomeReverted, err
	}

	err = e.store.Create(ctx, e.userID, entity.Self(), entity.GetID(), payload)
	if err == nil {
		return OutcomeConfirmed, nil
	}

	if remote.IsNetworkError(err) {
		err = e.enqueue(models.MutationCreate, entity, payload)
		if err != nil {
			return OutcomeReverted, err
		}

		return OutcomeQueued, nil
	}

	// Semantic remote failure, take the optimistic insert back
	revertErr := e.db.Unscoped().Where("id = ?", entity.GetID()).Delete(entity).Error
	if revertErr != nil {
		log.Error().Err(revertErr).Str("entity", entity.Self()).Msg("reverting optimistic create failed")
	}

	return OutcomeReverted, err
}

// UpdateEntity applies an optimistic local update and pushes it to the
// remote store.
func (e *Engine) UpdateEntity(ctx context.Context, entity models.Syncable) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.allowWrites()
	if err != nil {
		return OutcomeReverted, err
	}

	// Remember the prior state for the semantic-failure revert
	prior := reflect.New(reflect.TypeOf(entity).Elem()).Interface()
	err = e.db.First(prior, "id = ?", entity.GetID()).Error
	if err != nil {
		return OutcomeReverted, err
	}

	err = e.db.Save(entity).Error
	if err != nil {
		return OutcomeReverted, err
	}

	payload, err := json.Marshal(entity)
	if err != nil {
		return OutcomeReverted, err
	}

	err = e.store.Update(ctx, e.userID, entity.Self(), entity.GetID(), payload)
	if err == nil {
		return OutcomeConfirmed, nil
	}

	if remote.IsNetworkError(err) {
		err = e.enqueue(models.MutationUpdate, entity, payload)
		if err != nil {
			return OutcomeReverted, err
		}

		return OutcomeQueued, nil
	}

	revertErr := e.db.Save(prior).Error
	if revertErr != nil {
		log.Error().Err(revertErr).Str("entity", entity.Self()).Msg("reverting optimistic update failed")
	}

	return OutcomeReverted, err
}

// DeleteEntity removes the entity from the visible local state immediately
// and pushes the delete to the remote store.
//
// While offline, the entity ID stays in the pending-delete set as a
// tombstone until the remote delete is acknowledged. This prevents a remote
// change notification arriving mid-offline-window from silently
// resurrecting a record the user deleted.
func (e *Engine) DeleteEntity(ctx context.Context, entity models.Syncable) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.allowWrites()
	if err != nil {
		return OutcomeReverted, err
	}

	err = e.db.Where("id = ?", entity.GetID()).Delete(entity).Error
	if err != nil {
		return OutcomeReverted, err
	}

	err = e.store.Delete(ctx, e.userID, entity.Self(), entity.GetID())
	if err == nil {
		// Acknowledged, remove the row entirely
		purgeErr := e.db.Unscoped().Where("id = ?", entity.GetID()).Delete(entity).Error
		if purgeErr != nil {
			log.Error().Err(purgeErr).Str("entity", entity.Self()).Msg("purging deleted entity failed")
		}

		return OutcomeConfirmed, nil
	}

	if remote.IsNetworkError(err) {
		err = e.enqueue(models.MutationDelete, entity, nil)
		if err != nil {
			return OutcomeReverted, err
		}

		return OutcomeQueued, nil
	}

	// Semantic remote failure, make the entity visible again
	revertErr := e.db.Unscoped().Model(entity).Where("id = ?", entity.GetID()).Update("deleted_at", nil).Error
	if revertErr != nil {
		log.Error().Err(revertErr).Str("entity", entity.Self()).Msg("reverting optimistic delete failed")
	}

	return OutcomeReverted, err
}

// CreateTransaction implements ledger.TransactionWriter: the normal
// transaction-creation path for user entry, transfer legs and
// distributions.
func (e *Engine) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	if transaction.UserID == uuid.Nil {
		transaction.UserID = e.userID
	}

	// Queued and confirmed both count as locally recorded
	_, err := e.CreateEntity(ctx, transaction)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

// CreateIncomeSource implements rollover.EntityWriter.
func (e *Engine) CreateIncomeSource(ctx context.Context, source *models.IncomeSource) error {
	if source.UserID == uuid.Nil {
		source.UserID = e.userID
	}

	_, err := e.CreateEntity(ctx, source)
	return err
}

// CreateAllocation implements rollover.EntityWriter.
func (e *Engine) CreateAllocation(ctx context.Context, allocation *models.Allocation) error {
	if allocation.UserID == uuid.Nil {
		allocation.UserID = e.userID
	}

	_, err := e.CreateEntity(ctx, allocation)
	return err
}

func (e *Engine) enqueue(kind models.MutationKind, entity models.Syncable, payload json.RawMessage) error {
	mutation := models.PendingMutation{
		UserID:     e.userID,
		Kind:       kind,
		EntityType: entity.Self(),
		EntityID:   entity.GetID(),
		Payload:    payload,
	}

	err := e.db.Create(&mutation).Error
	if err != nil {
		return fmt.Errorf("queueing mutation for retry failed: %w", err)
	}

	queueLength.Inc()
	return nil
}

func (e *Engine) allowWrites() error {
	if e.grace == nil {
		return nil
	}

	return e.grace.AllowWrites(e.monitor.IsOnline())
}
