package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/remote"
	"github.com/rs/zerolog/log"
)

// SyncData flushes the queue of locally-originated, not-yet-acknowledged
// mutations in original submission order.
//
// The flush stops at the first network-classified failure and leaves the
// rest of the queue for the next invocation, there are no inline retries
// against a recovering connection. Semantic failures can not succeed later:
// the mutation is dropped with a log entry, the local state stays for the
// user to reconcile.
func (e *Engine) SyncData(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pending []models.PendingMutation
	err := e.db.Order("sequence ASC").Find(&pending).Error
	if err != nil {
		return err
	}

	for _, mutation := range pending {
		err := e.push(ctx, mutation)

		if err != nil && remote.IsNetworkError(err) {
			attemptErr := e.db.Model(&mutation).Updates(map[string]any{
				"attempts":   mutation.Attempts + 1,
				"last_error": err.Error(),
			}).Error
			if attemptErr != nil {
				log.Error().Err(attemptErr).Msg("recording flush attempt failed")
			}

			return fmt.Errorf("flushing the mutation queue stopped at sequence %d: %w", mutation.Sequence, err)
		}

		if err != nil {
			log.Error().Err(err).
				Str("entity", mutation.EntityType).
				Str("id", mutation.EntityID.String()).
				Msg("queued mutation rejected by the remote store, dropping it")
		}

		removeErr := e.db.Delete(&mutation).Error
		if removeErr != nil {
			return removeErr
		}

		queueLength.Dec()
	}

	return nil
}

func (e *Engine) push(ctx context.Context, mutation models.PendingMutation) error {
	switch mutation.Kind {
	case models.MutationCreate:
		err := e.store.Create(ctx, mutation.UserID, mutation.EntityType, mutation.EntityID, mutation.Payload)

		// The remote already has the entity, e.g. from a flush interrupted
		// after the write went through. That counts as acknowledged.
		var statusErr remote.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusConflict {
			return nil
		}

		return err

	case models.MutationUpdate:
		return e.store.Update(ctx, mutation.UserID, mutation.EntityType, mutation.EntityID, mutation.Payload)

	case models.MutationDelete:
		err := e.store.Delete(ctx, mutation.UserID, mutation.EntityType, mutation.EntityID)
		if err != nil {
			return err
		}

		// The tombstone is cleared with the queue row, purge the
		// soft-deleted entity itself as well
		return e.purge(mutation)

	default:
		return fmt.Errorf("unknown mutation kind %q", mutation.Kind)
	}
}

// purge removes a soft-deleted row once its remote delete is acknowledged.
func (e *Engine) purge(mutation models.PendingMutation) error {
	model, err := modelFor(mutation.EntityType)
	if err != nil {
		return err
	}

	return e.db.Unscoped().Where("id = ?", mutation.EntityID).Delete(model).Error
}

func modelFor(entityType string) (any, error) {
	switch entityType {
	case models.Envelope{}.Self():
		return &models.Envelope{}, nil
	case models.Transaction{}.Self():
		return &models.Transaction{}, nil
	case models.IncomeSource{}.Self():
		return &models.IncomeSource{}, nil
	case models.Allocation{}.Self():
		return &models.Allocation{}, nil
	case models.DistributionTemplate{}.Self():
		return &models.DistributionTemplate{}, nil
	case models.AppSettings{}.Self():
		return &models.AppSettings{}, nil
	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
}
