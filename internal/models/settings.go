package models

import (
	"github.com/google/uuid"
)

// AppSettings holds display preferences. The engine only reads them as an
// opaque blob, interpretation is up to the caller rendering the state.
type AppSettings struct {
	DefaultModel
	UserID       uuid.UUID `json:"userId" gorm:"uniqueIndex"`
	Theme        string    `json:"theme"`
	CurrencyCode string    `json:"currencyCode"`
	HideArchived bool      `json:"hideArchived"`
}
