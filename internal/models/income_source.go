package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IncomeSource is an expected source of income for one month, e.g. a salary.
type IncomeSource struct {
	DefaultModel
	UserID uuid.UUID       `json:"userId"`
	Month  types.Month     `json:"month" gorm:"index"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
}

func (i *IncomeSource) BeforeSave(_ *gorm.DB) error {
	i.Name = strings.TrimSpace(i.Name)

	if i.Amount.IsNegative() {
		return ErrAmountNegative
	}

	return nil
}
