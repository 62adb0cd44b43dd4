package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Envelope represents a named budget bucket. Its balance is always derived
// from the transaction log, it is never stored.
type Envelope struct {
	DefaultModel
	UserID       uuid.UUID           `json:"userId" gorm:"uniqueIndex:envelope_user_name"`
	Name         string              `json:"name" gorm:"uniqueIndex:envelope_user_name"`
	Archived     bool                `json:"archived"`
	SortOrder    uint                `json:"sortOrder"`
	Piggybank    bool                `json:"piggybank"`    // Piggybank envelopes accumulate across months
	BudgetTarget decimal.NullDecimal `json:"budgetTarget" gorm:"type:DECIMAL(20,8)"`
}

func (e *Envelope) BeforeSave(_ *gorm.DB) error {
	e.Name = strings.TrimSpace(e.Name)
	return nil
}
