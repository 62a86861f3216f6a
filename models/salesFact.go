package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesFact is one day of stock/sales activity for a product at a pharmacy.
// The ingestion pipeline appends these; this repository only reads them.
// Identity is (pharmacy_id, product_id, business_date).
type SalesFact struct {
	ID           int             `gorm:"primaryKey" json:"id"`
	PharmacyId   int             `gorm:"not null;uniqueIndex:idx_sf_key,priority:1" json:"pharmacy_id"`
	ProductId    int             `gorm:"not null;uniqueIndex:idx_sf_key,priority:2" json:"product_id"`
	BusinessDate time.Time       `gorm:"type:date;not null;uniqueIndex:idx_sf_key,priority:3;index:idx_sf_date" json:"business_date"`
	QtySold      decimal.Decimal `gorm:"type:decimal(12,3);default:0" json:"qty_sold"`

	// ImportBatchId links the fact to the import batch that produced it.
	// Nullable: facts can also arrive through channels with no manifest.
	ImportBatchId *string `gorm:"size:36;index:idx_sf_batch" json:"import_batch_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
