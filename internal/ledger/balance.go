// Package ledger derives envelope balances from the transaction log and
// implements the multi-leg operations composed from it.
//
// All monetary math uses shopspring/decimal. Binary floating point is never
// used for amounts, comparisons or persisted values.
package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrMonthRequired = errors.New("a month is required to calculate the balance of a regular envelope")

// Balance derives the balance of an envelope from the transaction log.
//
// For piggybank envelopes the month is ignored and all transactions are
// aggregated. For regular envelopes, only transactions of the given month
// count and the month must not be zero.
//
// An unknown envelope ID is not an error: the balance is zero and a
// diagnostic is logged.
func Balance(db *gorm.DB, envelopeID uuid.UUID, month types.Month) (decimal.Decimal, error) {
	var envelope models.Envelope
	err := db.First(&envelope, "id = ?", envelopeID).Error
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("envelope", envelopeID.String()).Msg("balance requested for unknown envelope")
			return decimal.Zero, nil
		}

		return decimal.Zero, err
	}

	if !envelope.Piggybank && month.IsZero() {
		return decimal.Zero, ErrMonthRequired
	}

	query := db.Where("envelope_id = ?", envelopeID)
	if !envelope.Piggybank {
		query = query.Where("month = ?", month)
	}

	// The amounts are summed here and not with SQL SUM: sqlite coerces the
	// DECIMAL column to REAL for aggregation, which loses precision.
	var transactions []models.Transaction
	err = query.Find(&transactions).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading transactions for envelope %s failed: %w", envelopeID, err)
	}

	balance := decimal.Zero
	for _, transaction := range transactions {
		balance = balance.Add(transaction.Signed())
	}

	return balance, nil
}
