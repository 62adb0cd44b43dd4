// Package rollover initializes a new budgeting month from the prior one.
package rollover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/ledger"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrTargetMonthZero     = errors.New("the target month for the rollover must be set")
	ErrTargetMonthNotEmpty = errors.New("the target month already has income sources or allocations")
)

// EntityWriter is the optimistic-update path for rollover writes,
// implemented by the sync engine.
type EntityWriter interface {
	ledger.TransactionWriter
	CreateIncomeSource(ctx context.Context, source *models.IncomeSource) error
	CreateAllocation(ctx context.Context, allocation *models.Allocation) error
}

// Result reports what a rollover copied.
type Result struct {
	Month         types.Month           `json:"month"`
	IncomeSources []models.IncomeSource `json:"incomeSources"`
	Allocations   []models.Allocation   `json:"allocations"`
	Seeds         []models.Transaction  `json:"seeds"`
}

// CopyPreviousMonthAllocations copies the prior month's income sources and
// allocations, piggybank-targeted ones included, into the target month and
// seeds each allocated envelope with an "Initial Deposit" income
// transaction.
//
// The target month is passed explicitly by the caller. It is never inferred
// from an ambient "current month", because the month being initialized and
// the month the user is looking at can diverge.
func CopyPreviousMonthAllocations(ctx context.Context, db *gorm.DB, writer EntityWriter, userID uuid.UUID, target types.Month) (Result, error) {
	if target.IsZero() {
		return Result{}, ErrTargetMonthZero
	}

	empty, err := TargetIsEmpty(db, target)
	if err != nil {
		return Result{}, err
	}

	if !empty {
		return Result{}, fmt.Errorf("%w: %s", ErrTargetMonthNotEmpty, target)
	}

	previous := target.AddDate(0, -1)
	result := Result{Month: target}

	var incomeSources []models.IncomeSource
	err = db.Where("month = ?", previous).Find(&incomeSources).Error
	if err != nil {
		return Result{}, err
	}

	for _, source := range incomeSources {
		copied := models.IncomeSource{
			UserID: userID,
			Month:  target,
			Name:   source.Name,
			Amount: source.Amount,
		}

		err := writer.CreateIncomeSource(ctx, &copied)
		if err != nil {
			return result, fmt.Errorf("copying income source %q failed: %w", source.Name, err)
		}

		result.IncomeSources = append(result.IncomeSources, copied)
	}

	var allocations []models.Allocation
	err = db.Where("month = ?", previous).Find(&allocations).Error
	if err != nil {
		return result, err
	}

	firstOfMonth := time.Time(target)
	for _, allocation := range allocations {
		copied := models.Allocation{
			UserID:     userID,
			Month:      target,
			EnvelopeID: allocation.EnvelopeID,
			Amount:     allocation.Amount,
		}

		err := writer.CreateAllocation(ctx, &copied)
		if err != nil {
			return result, fmt.Errorf("copying allocation for envelope %s failed: %w", allocation.EnvelopeID, err)
		}

		result.Allocations = append(result.Allocations, copied)

		if allocation.Amount.IsZero() {
			continue
		}

		seed := models.Transaction{
			UserID:     userID,
			EnvelopeID: allocation.EnvelopeID,
			Type:       models.TransactionTypeIncome,
			Amount:     allocation.Amount,
			Date:       firstOfMonth,
			Note:       "Initial Deposit",
		}

		err = writer.CreateTransaction(ctx, &seed)
		if err != nil {
			return result, fmt.Errorf("seeding envelope %s failed: %w", allocation.EnvelopeID, err)
		}

		result.Seeds = append(result.Seeds, seed)
	}

	log.Info().
		Str("month", target.String()).
		Int("incomeSources", len(result.IncomeSources)).
		Int("allocations", len(result.Allocations)).
		Msg("rolled over month")

	return result, nil
}

// TargetIsEmpty reports whether the target month has neither income sources
// nor allocations.
//
// A freshly navigated-to month may still be mid-load: callers gating a
// rollover prompt on this check have to wait for the engine's Ready signal
// first, a fixed delay races the still-loading cache.
func TargetIsEmpty(db *gorm.DB, target types.Month) (bool, error) {
	var incomeCount, allocationCount int64

	err := db.Model(&models.IncomeSource{}).Where("month = ?", target).Count(&incomeCount).Error
	if err != nil {
		return false, err
	}

	err = db.Model(&models.Allocation{}).Where("month = ?", target).Count(&allocationCount).Error
	if err != nil {
		return false, err
	}

	return incomeCount == 0 && allocationCount == 0, nil
}
