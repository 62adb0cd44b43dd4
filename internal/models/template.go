package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DistributionTemplate is a saved set of per-envelope amounts that can be
// re-applied to future deposits. The shares must balance against the deposit
// the template is built for when it is saved, stored templates carry no
// ongoing sum invariant.
type DistributionTemplate struct {
	DefaultModel
	UserID uuid.UUID       `json:"userId"`
	Name   string          `json:"name"`
	Note   string          `json:"note,omitempty"`
	Shares []TemplateShare `json:"shares" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
}

// TemplateShare is one envelope entry of a distribution template.
type TemplateShare struct {
	DefaultModel
	TemplateID uuid.UUID       `json:"templateId" gorm:"uniqueIndex:template_share_envelope"`
	EnvelopeID uuid.UUID       `json:"envelopeId" gorm:"uniqueIndex:template_share_envelope"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
}

func (t *DistributionTemplate) BeforeSave(_ *gorm.DB) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Note = strings.TrimSpace(t.Note)
	return nil
}

// Total returns the sum of all shares of the template.
func (t DistributionTemplate) Total() decimal.Decimal {
	total := decimal.Zero
	for _, share := range t.Shares {
		total = total.Add(share.Amount)
	}

	return total
}
