// Package backup serializes the full data set to a versioned JSON document
// and back, and projects transactions to a flattened CSV report.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/moneyfold/backend/internal/models"
	"gorm.io/gorm"
)

// FormatVersion is the version written to exported documents. Import
// accepts documents of the same major format.
const FormatVersion = "2.0"

var (
	ErrEnvelopesMissing    = errors.New("the backup document must contain an envelopes array")
	ErrTransactionsMissing = errors.New("the backup document must contain a transactions array")
)

// Document is the on-disk backup format.
type Document struct {
	AppVersion            string                        `json:"appVersion"`
	BackupDate            time.Time                     `json:"backupDate"`
	Envelopes             []models.Envelope             `json:"envelopes"`
	Transactions          []models.Transaction          `json:"transactions"`
	IncomeSources         []models.IncomeSource         `json:"incomeSources"`
	Allocations           []models.Allocation           `json:"allocations"`
	DistributionTemplates []models.DistributionTemplate `json:"distributionTemplates"`
	AppSettings           *models.AppSettings           `json:"appSettings,omitempty"`
}

// Export serializes all entities plus format version and timestamp.
func Export(db *gorm.DB) (Document, error) {
	doc := Document{
		AppVersion: FormatVersion,
		BackupDate: time.Now().In(time.UTC),

		// Empty arrays, not null: the absence checks on import depend on
		// the arrays being present
		Envelopes:             []models.Envelope{},
		Transactions:          []models.Transaction{},
		IncomeSources:         []models.IncomeSource{},
		Allocations:           []models.Allocation{},
		DistributionTemplates: []models.DistributionTemplate{},
	}

	err := db.Order("sort_order ASC").Find(&doc.Envelopes).Error
	if err != nil {
		return Document{}, err
	}

	err = db.Order("date ASC").Find(&doc.Transactions).Error
	if err != nil {
		return Document{}, err
	}

	err = db.Find(&doc.IncomeSources).Error
	if err != nil {
		return Document{}, err
	}

	err = db.Find(&doc.Allocations).Error
	if err != nil {
		return Document{}, err
	}

	err = db.Preload("Shares").Find(&doc.DistributionTemplates).Error
	if err != nil {
		return Document{}, err
	}

	var settings models.AppSettings
	err = db.First(&settings).Error
	if err == nil {
		doc.AppSettings = &settings
	} else if !errors.Is(err, models.ErrResourceNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, err
	}

	return doc, nil
}

// Validate checks a raw backup document without mutating any state.
//
// The checks run against the raw JSON: a document where envelopes or
// transactions is absent, null or not an array is rejected even when it
// would decode into zero-valued slices.
func Validate(raw json.RawMessage) (Document, error) {
	var shape struct {
		Envelopes    json.RawMessage `json:"envelopes"`
		Transactions json.RawMessage `json:"transactions"`
	}

	err := json.Unmarshal(raw, &shape)
	if err != nil {
		return Document{}, err
	}

	if !isArray(shape.Envelopes) {
		return Document{}, ErrEnvelopesMissing
	}

	if !isArray(shape.Transactions) {
		return Document{}, ErrTransactionsMissing
	}

	var doc Document
	err = json.Unmarshal(raw, &doc)
	if err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Import validates the document and replaces the local entity state with
// its content.
//
// The replace runs in one database transaction: a partially applied import
// is never observable, on any failure the previous state stays.
func Import(db *gorm.DB, raw json.RawMessage) error {
	doc, err := Validate(raw)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// Foreign keys are checked, delete dependents before their targets
		for _, model := range []any{
			models.Transaction{},
			models.Allocation{},
			models.IncomeSource{},
			models.TemplateShare{},
			models.DistributionTemplate{},
			models.AppSettings{},
			models.Envelope{},
		} {
			err := tx.Unscoped().Where("true").Delete(&model).Error
			if err != nil {
				return err
			}
		}

		for i := range doc.Envelopes {
			err := tx.Create(&doc.Envelopes[i]).Error
			if err != nil {
				return err
			}
		}

		for i := range doc.Transactions {
			err := tx.Create(&doc.Transactions[i]).Error
			if err != nil {
				return err
			}
		}

		for i := range doc.IncomeSources {
			err := tx.Create(&doc.IncomeSources[i]).Error
			if err != nil {
				return err
			}
		}

		for i := range doc.Allocations {
			err := tx.Create(&doc.Allocations[i]).Error
			if err != nil {
				return err
			}
		}

		for i := range doc.DistributionTemplates {
			err := tx.Create(&doc.DistributionTemplates[i]).Error
			if err != nil {
				return err
			}
		}

		if doc.AppSettings != nil {
			err := tx.Create(doc.AppSettings).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
