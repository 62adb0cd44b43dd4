package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrDistributionUnbalanced   = errors.New("the distribution does not match the deposit amount")
	ErrDepositAmountNotPositive = errors.New("the deposit amount must be positive")
	ErrTemplateUnbalanced       = errors.New("the template can only be saved when its shares are balanced")
)

// distributionEpsilon is the tolerance when comparing a distribution against
// its deposit. Manual entry accumulates rounding, so up to one cent of
// difference is accepted.
var distributionEpsilon = decimal.NewFromFloat(0.01)

// DistributionResult reports the transactions created by a distribution.
type DistributionResult struct {
	Deposit      decimal.Decimal      `json:"deposit"`
	Transactions []models.Transaction `json:"transactions"`
}

// Distribute splits a deposit over multiple envelopes, appending one income
// transaction per non-zero share.
//
// The shares must sum to the deposit amount within distributionEpsilon,
// otherwise the distribution is rejected with the remaining amount and the
// ledger is not touched.
func Distribute(ctx context.Context, db *gorm.DB, writer TransactionWriter, userID uuid.UUID, deposit decimal.Decimal, shares map[uuid.UUID]decimal.Decimal, note string, date time.Time) (DistributionResult, error) {
	if !deposit.IsPositive() {
		return DistributionResult{}, ErrDepositAmountNotPositive
	}

	total := decimal.Zero
	for _, amount := range shares {
		if amount.IsNegative() {
			return DistributionResult{}, models.ErrAmountNegative
		}

		total = total.Add(amount)
	}

	remaining := deposit.Sub(total)
	if remaining.Abs().GreaterThan(distributionEpsilon) {
		return DistributionResult{}, fmt.Errorf("%w: %s remaining", ErrDistributionUnbalanced, remaining)
	}

	for envelopeID := range shares {
		err := envelopeExists(db, envelopeID)
		if err != nil {
			return DistributionResult{}, err
		}
	}

	result := DistributionResult{Deposit: deposit}
	for envelopeID, amount := range shares {
		if amount.IsZero() {
			continue
		}

		transaction := models.Transaction{
			UserID:     userID,
			EnvelopeID: envelopeID,
			Type:       models.TransactionTypeIncome,
			Amount:     amount,
			Date:       date,
			Note:       note,
		}

		err := writer.CreateTransaction(ctx, &transaction)
		if err != nil {
			return result, fmt.Errorf("distributing to envelope %s failed: %w", envelopeID, err)
		}

		result.Transactions = append(result.Transactions, transaction)
	}

	return result, nil
}

// ApplyTemplate distributes a deposit according to a saved template.
func ApplyTemplate(ctx context.Context, db *gorm.DB, writer TransactionWriter, userID uuid.UUID, template models.DistributionTemplate, deposit decimal.Decimal, note string, date time.Time) (DistributionResult, error) {
	shares := make(map[uuid.UUID]decimal.Decimal, len(template.Shares))
	for _, share := range template.Shares {
		shares[share.EnvelopeID] = share.Amount
	}

	return Distribute(ctx, db, writer, userID, deposit, shares, note, date)
}

// ValidateTemplate checks that a template's shares are balanced against the
// total it was built for. Stored templates carry no sum invariant, the check
// runs only when saving against a currently entered deposit.
func ValidateTemplate(template models.DistributionTemplate, against decimal.Decimal) error {
	remaining := against.Sub(template.Total())
	if remaining.Abs().GreaterThan(distributionEpsilon) {
		return fmt.Errorf("%w: %s remaining", ErrTemplateUnbalanced, remaining)
	}

	return nil
}
