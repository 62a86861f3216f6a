package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportBatch is the manifest row written once per import operation.
// claimed_record_count is what the importer said it delivered; the actual
// derived count is never stored, it is counted from linked sales_facts on
// demand (see reports.GetImportReconciliation). Status and error_message
// are set by the importer; this repository never mutates the manifest.
type ImportBatch struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	PharmacyId     int       `gorm:"not null;index" json:"pharmacy_id"`
	SourceFilename string    `gorm:"size:255" json:"source_filename"`
	UploadedAt     time.Time `gorm:"not null;index" json:"uploaded_at"`

	ClaimedRecordCount int               `gorm:"not null;default:0" json:"claimed_record_count"`
	Status             ImportBatchStatus `gorm:"size:32;not null;default:'Pending'" json:"status"`
	ErrorMessage       *string           `gorm:"size:1024" json:"error_message"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (b *ImportBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
