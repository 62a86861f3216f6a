package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/models"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/utils"
	"gorm.io/gorm"
)

// DefaultProblematicLimit bounds the problematic-batch list.
const DefaultProblematicLimit = 10

// BatchReconRow is one import batch with its claimed count from the
// manifest and the derived count obtained by counting linked sales facts.
type BatchReconRow struct {
	BatchId            string                   `json:"batch_id"`
	PharmacyId         int                      `json:"pharmacy_id"`
	SourceFilename     string                   `json:"source_filename"`
	UploadedAt         time.Time                `json:"uploaded_at"`
	ClaimedRecordCount int                      `json:"claimed_record_count"`
	DerivedRecordCount int                      `json:"derived_record_count"`
	Status             models.ImportBatchStatus `json:"status"`
	ErrorMessage       *string                  `json:"error_message,omitempty"`
}

// ImportReconciliation is the outcome of the claimed-vs-persisted check.
// A nil LatestSuccess means no batch has ever produced derived records,
// which is its own reported condition, not an empty problematic list.
type ImportReconciliation struct {
	Problematic   []*BatchReconRow `json:"problematic"`
	LatestSuccess *BatchReconRow   `json:"latest_success,omitempty"`
}

func (r *ImportReconciliation) NoSuccessfulImport() bool {
	return r.LatestSuccess == nil
}

const batchReconSelect = `
SELECT
	b.id AS batch_id,
	b.pharmacy_id,
	b.source_filename,
	b.uploaded_at,
	b.claimed_record_count,
	COUNT(sf.id) AS derived_record_count,
	b.status,
	b.error_message
FROM
	import_batches AS b
	LEFT JOIN sales_facts AS sf ON sf.import_batch_id = b.id
GROUP BY
	b.id, b.pharmacy_id, b.source_filename, b.uploaded_at,
	b.claimed_record_count, b.status, b.error_message
`

// GetImportReconciliation flags batches whose manifest claims records but
// for which nothing was persisted, and reports the most recent batch that
// did produce derived rows. Read-only; never raises on "no data".
func GetImportReconciliation(ctx context.Context, db *gorm.DB, limit int) (*ImportReconciliation, error) {
	if db == nil {
		return nil, utils.ConfigurationError("no store connection configured", nil)
	}
	if limit <= 0 {
		limit = DefaultProblematicLimit
	}

	result := &ImportReconciliation{}

	problemSQL := batchReconSelect + `
HAVING b.claimed_record_count > 0 AND COUNT(sf.id) = 0
ORDER BY b.uploaded_at DESC
LIMIT @limit
`
	if err := db.WithContext(ctx).Raw(problemSQL, map[string]interface{}{
		"limit": limit,
	}).Scan(&result.Problematic).Error; err != nil {
		return nil, utils.StoreError("query problematic import batches", err)
	}

	successSQL := batchReconSelect + `
HAVING COUNT(sf.id) > 0
ORDER BY b.uploaded_at DESC
LIMIT 1
`
	var latest []*BatchReconRow
	if err := db.WithContext(ctx).Raw(successSQL).Scan(&latest).Error; err != nil {
		return nil, utils.StoreError("query latest successful import batch", err)
	}
	if len(latest) > 0 {
		result.LatestSuccess = latest[0]
	}
	// A nil LatestSuccess here is the explicit no-successful-import state.

	return result, nil
}
