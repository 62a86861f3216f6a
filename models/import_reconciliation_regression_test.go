package models_test

import (
	"context"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/models"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/models/reports"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createBatch(t *testing.T, db *gorm.DB, pharmacyID int, file string, uploadedAt time.Time, claimed int, status models.ImportBatchStatus) *models.ImportBatch {
	t.Helper()
	b := &models.ImportBatch{
		PharmacyId:         pharmacyID,
		SourceFilename:     file,
		UploadedAt:         uploadedAt,
		ClaimedRecordCount: claimed,
		Status:             status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func TestImportReconciliation_ClaimedVsDerived(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()

	createPharmacy(t, db, 1, "Alpha Pharmacy")
	product := createProduct(t, db, "P1", "Paracetamol 500mg")

	now := time.Now().UTC().Truncate(time.Second)
	today := utils.DateOnly(time.Now())

	// Phase 1: one batch claiming records, nothing persisted.
	batchA := createBatch(t, db, 1, "alpha_monday.csv", now.Add(-2*time.Hour), 50, models.ImportBatchStatusCompleted)

	recon, err := reports.GetImportReconciliation(ctx, db, 0)
	require.NoError(t, err)
	require.Len(t, recon.Problematic, 1)
	require.Equal(t, batchA.ID.String(), recon.Problematic[0].BatchId)
	require.Equal(t, 50, recon.Problematic[0].ClaimedRecordCount)
	require.Equal(t, 0, recon.Problematic[0].DerivedRecordCount)
	require.True(t, recon.NoSuccessfulImport(),
		"zero successful batches is its own reported condition")

	// Phase 2: a later batch whose claim matches the persisted facts.
	batchB := createBatch(t, db, 1, "alpha_tuesday.csv", now.Add(-time.Hour), 2, models.ImportBatchStatusCompleted)
	bid := batchB.ID.String()
	addFact(t, db, 1, product.ID, today.AddDate(0, 0, -1), "4", &bid)
	addFact(t, db, 1, product.ID, today.AddDate(0, 0, -2), "6", &bid)

	recon, err = reports.GetImportReconciliation(ctx, db, 0)
	require.NoError(t, err)
	require.Len(t, recon.Problematic, 1)
	require.Equal(t, batchA.ID.String(), recon.Problematic[0].BatchId)
	require.False(t, recon.NoSuccessfulImport())
	require.Equal(t, batchB.ID.String(), recon.LatestSuccess.BatchId)
	require.Equal(t, 2, recon.LatestSuccess.DerivedRecordCount)

	// Phase 3: newest problematic batch first; limit bounds the list.
	batchC := createBatch(t, db, 1, "alpha_wednesday.csv", now, 7, models.ImportBatchStatusFailed)
	// Claimed zero with zero derived is unremarkable, not problematic.
	createBatch(t, db, 1, "alpha_empty.csv", now.Add(-30*time.Minute), 0, models.ImportBatchStatusCompleted)

	recon, err = reports.GetImportReconciliation(ctx, db, 0)
	require.NoError(t, err)
	require.Len(t, recon.Problematic, 2)
	require.Equal(t, batchC.ID.String(), recon.Problematic[0].BatchId)
	require.Equal(t, batchA.ID.String(), recon.Problematic[1].BatchId)

	recon, err = reports.GetImportReconciliation(ctx, db, 1)
	require.NoError(t, err)
	require.Len(t, recon.Problematic, 1)
	require.Equal(t, batchC.ID.String(), recon.Problematic[0].BatchId)
}

func TestImportReconciliation_EmptyStore(t *testing.T) {
	db := setupIntegrationDB(t)

	recon, err := reports.GetImportReconciliation(context.Background(), db, 0)
	require.NoError(t, err)
	require.Empty(t, recon.Problematic)
	require.True(t, recon.NoSuccessfulImport())
}
