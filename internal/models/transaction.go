package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType determines the sign a transaction contributes to an
// envelope balance. Amounts themselves are always non-negative.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents one entry in the append-only envelope ledger.
type Transaction struct {
	DefaultModel
	UserID uuid.UUID `json:"userId"`

	// No foreign key on purpose: an envelope can be deleted while
	// transactions referencing it are still queued or kept for history,
	// orphans are handled by the cleanup pass.
	EnvelopeID uuid.UUID       `json:"envelopeId" gorm:"index"`
	Type       TransactionType `json:"type"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Date       time.Time       `json:"date"` // Time of day is currently only used for sorting
	Month      types.Month     `json:"month"`
	Note       string          `json:"note,omitempty"`
	Merchant   string          `json:"merchant,omitempty"`
	Reconciled bool            `json:"reconciled"`
	TransferID *uuid.UUID      `json:"transferId,omitempty"` // Set on both legs of a transfer
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
//
// We already store them in UTC, but somehow reading
// them from the database returns them as +0000.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return
}

// BeforeSave
//   - sets the timezone for the Date to UTC
//   - derives the owning month from the date when it is not set
//   - validates type and amount
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	t.Note = strings.TrimSpace(t.Note)
	t.Merchant = strings.TrimSpace(t.Merchant)

	if t.Type != TransactionTypeIncome && t.Type != TransactionTypeExpense {
		return ErrTransactionTypeInvalid
	}

	if t.Amount.IsNegative() {
		return ErrAmountNegative
	}

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	if t.Month.IsZero() {
		t.Month = types.MonthOf(t.Date)
	}

	// Ensure that the transfer ID is nil and not a pointer to a nil UUID
	if t.TransferID != nil && *t.TransferID == uuid.Nil {
		t.TransferID = nil
	}

	return
}

// Signed returns the amount with the sign implied by the transaction type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}

	return t.Amount
}

// Reconcile marks the transaction as reconciled. After this, only an
// explicit un-reconcile permits further changes.
func (t *Transaction) Reconcile(db *gorm.DB, reconciled bool) error {
	return db.Model(t).Select("Reconciled").Updates(Transaction{Reconciled: reconciled}).Error
}

// UpdateFields applies changes to the transaction. Reconciled transactions
// are immutable, the update is rejected before touching the database.
func (t *Transaction) UpdateFields(db *gorm.DB, update Transaction) error {
	if t.Reconciled {
		return fmt.Errorf("%w: transaction %s", ErrTransactionReconciled, t.ID)
	}

	return db.Model(t).Select("Type", "Amount", "Date", "Month", "Note", "Merchant", "EnvelopeID").Updates(update).Error
}
