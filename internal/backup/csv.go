package backup

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"gorm.io/gorm"
)

// csvHeader is the fixed column set of the transaction report.
var csvHeader = []string{"Date", "Merchant", "Notes", "Amount", "Type", "Envelope", "Reconciled"}

// ExportCSV writes all transactions as a flattened CSV report.
//
// Dates are YYYY-MM-DD, amounts fixed to two decimals, the envelope name is
// resolved by lookup. Quoting of delimiters and quote characters in notes
// and merchants is handled by encoding/csv.
func ExportCSV(db *gorm.DB, w io.Writer) error {
	var envelopes []models.Envelope
	err := db.Unscoped().Find(&envelopes).Error
	if err != nil {
		return err
	}

	names := make(map[uuid.UUID]string, len(envelopes))
	for _, envelope := range envelopes {
		names[envelope.ID] = envelope.Name
	}

	var transactions []models.Transaction
	err = db.Order("date ASC").Find(&transactions).Error
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	err = writer.Write(csvHeader)
	if err != nil {
		return err
	}

	for _, transaction := range transactions {
		reconciled := "no"
		if transaction.Reconciled {
			reconciled = "yes"
		}

		err = writer.Write([]string{
			transaction.Date.Format("2006-01-02"),
			transaction.Merchant,
			transaction.Note,
			transaction.Amount.StringFixed(2),
			typeLabel(transaction.Type),
			names[transaction.EnvelopeID],
			reconciled,
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func typeLabel(t models.TransactionType) string {
	if t == "" {
		return ""
	}

	return strings.ToUpper(string(t[0])) + string(t[1:])
}

// CleanupOrphanedReferences removes template shares and allocations whose
// envelope no longer exists.
//
// This is a destructive normalization pass, it only runs on demand. A
// template that ends up with zero shares is deleted outright.
func CleanupOrphanedReferences(db *gorm.DB) (removed int64, err error) {
	var ids []uuid.UUID
	err = db.Model(&models.Envelope{}).Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		shares := tx.Unscoped().Where("envelope_id NOT IN ?", emptyGuard(ids)).Delete(&models.TemplateShare{})
		if shares.Error != nil {
			return shares.Error
		}
		removed += shares.RowsAffected

		allocations := tx.Unscoped().Where("envelope_id NOT IN ?", emptyGuard(ids)).Delete(&models.Allocation{})
		if allocations.Error != nil {
			return allocations.Error
		}
		removed += allocations.RowsAffected

		// Templates whose shares are all gone serve no purpose anymore
		templates := tx.Unscoped().
			Where("id NOT IN (?)", tx.Model(&models.TemplateShare{}).Select("template_id")).
			Delete(&models.DistributionTemplate{})
		if templates.Error != nil {
			return templates.Error
		}
		removed += templates.RowsAffected

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cleaning up orphaned references failed: %w", err)
	}

	return removed, nil
}

// emptyGuard keeps "NOT IN" from matching everything when no envelope
// exists at all: sqlite treats NOT IN () as an error and NOT IN (NULL) as
// never true.
func emptyGuard(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}
	}

	return ids
}
