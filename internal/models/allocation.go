package models

import (
	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Allocation is the amount budgeted for one envelope in one month.
type Allocation struct {
	DefaultModel
	UserID     uuid.UUID       `json:"userId"`
	Month      types.Month     `json:"month" gorm:"uniqueIndex:allocation_month_envelope"`
	EnvelopeID uuid.UUID       `json:"envelopeId" gorm:"uniqueIndex:allocation_month_envelope"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
}

func (a *Allocation) BeforeSave(_ *gorm.DB) error {
	if a.Amount.IsNegative() {
		return ErrAmountNegative
	}

	return nil
}
