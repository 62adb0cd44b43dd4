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
	ErrTransferSameEnvelope      = errors.New("source and destination envelope of a transfer must be different")
	ErrTransferAmountNotPositive = errors.New("the transfer amount must be positive")
	ErrTransferNotFound          = errors.New("no transfer legs exist for this transfer ID")
	ErrTransferComplete          = errors.New("both legs of this transfer already exist")
	ErrEnvelopeNotFound          = errors.New("no envelope exists with this ID")
)

// TransactionWriter is the normal transaction-creation path. It is
// implemented by the sync engine: writes are applied optimistically to the
// local cache and then pushed to the remote store.
type TransactionWriter interface {
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
}

// TransferResult reports the outcome of a transfer operation.
type TransferResult struct {
	TransferID uuid.UUID           `json:"transferId"`
	Expense    *models.Transaction `json:"expense,omitempty"`
	Income     *models.Transaction `json:"income,omitempty"`
}

// Transfer moves an amount between two envelopes by appending an expense leg
// on the source and an income leg on the destination, correlated by one
// transfer ID.
//
// When the second leg fails, the first leg stays recorded: an auditable
// orphaned leg is preferred over silently removing money. The returned
// result carries the transfer ID so that the caller can retry only the
// missing leg with RetryLeg.
func Transfer(ctx context.Context, db *gorm.DB, writer TransactionWriter, userID, fromID, toID uuid.UUID, amount decimal.Decimal, note string, date time.Time) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, ErrTransferAmountNotPositive
	}

	if fromID == toID {
		return TransferResult{}, ErrTransferSameEnvelope
	}

	for _, id := range []uuid.UUID{fromID, toID} {
		err := envelopeExists(db, id)
		if err != nil {
			return TransferResult{}, err
		}
	}

	transferID := uuid.New()
	result := TransferResult{TransferID: transferID}

	expense := models.Transaction{
		UserID:     userID,
		EnvelopeID: fromID,
		Type:       models.TransactionTypeExpense,
		Amount:     amount,
		Date:       date,
		Note:       note,
		TransferID: &transferID,
	}

	err := writer.CreateTransaction(ctx, &expense)
	if err != nil {
		return result, fmt.Errorf("creating the expense leg failed: %w", err)
	}
	result.Expense = &expense

	income := models.Transaction{
		UserID:     userID,
		EnvelopeID: toID,
		Type:       models.TransactionTypeIncome,
		Amount:     amount,
		Date:       date,
		Note:       note,
		TransferID: &transferID,
	}

	err = writer.CreateTransaction(ctx, &income)
	if err != nil {
		// No rollback of the expense leg. The partial transfer is reported
		// and can be completed with RetryLeg for the same transfer ID.
		return result, fmt.Errorf("creating the income leg failed, transfer %s is partial: %w", transferID, err)
	}
	result.Income = &income

	return result, nil
}

// RetryLeg creates the missing leg of a partial transfer. The existing leg
// determines amount, date and note; the new leg gets the opposite type and
// is written to the given envelope.
func RetryLeg(ctx context.Context, db *gorm.DB, writer TransactionWriter, transferID, envelopeID uuid.UUID) (TransferResult, error) {
	var legs []models.Transaction
	err := db.Where("transfer_id = ?", transferID).Order("created_at ASC").Find(&legs).Error
	if err != nil {
		return TransferResult{}, err
	}

	switch len(legs) {
	case 0:
		return TransferResult{}, ErrTransferNotFound
	case 1:
		// continue below
	default:
		return TransferResult{}, ErrTransferComplete
	}

	err = envelopeExists(db, envelopeID)
	if err != nil {
		return TransferResult{}, err
	}

	existing := legs[0]
	missingType := models.TransactionTypeIncome
	if existing.Type == models.TransactionTypeIncome {
		missingType = models.TransactionTypeExpense
	}

	leg := models.Transaction{
		UserID:     existing.UserID,
		EnvelopeID: envelopeID,
		Type:       missingType,
		Amount:     existing.Amount,
		Date:       existing.Date,
		Note:       existing.Note,
		TransferID: existing.TransferID,
	}

	err = writer.CreateTransaction(ctx, &leg)
	if err != nil {
		return TransferResult{TransferID: transferID}, fmt.Errorf("creating the missing leg failed: %w", err)
	}

	result := TransferResult{TransferID: transferID}
	if leg.Type == models.TransactionTypeIncome {
		result.Income = &leg
		result.Expense = &existing
	} else {
		result.Expense = &leg
		result.Income = &existing
	}

	return result, nil
}

func envelopeExists(db *gorm.DB, id uuid.UUID) error {
	var count int64
	err := db.Model(&models.Envelope{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		return fmt.Errorf("%w: %s", ErrEnvelopeNotFound, id)
	}

	return nil
}
