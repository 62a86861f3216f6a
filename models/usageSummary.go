package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageSummary is the derived per-(pharmacy, product) rolling-average table.
//
// Grain: (pharmacy_id, product_id). A row exists only for keys with at
// least one qualifying sale inside the 180-day lookback window; every
// recompute overwrites the three averages in place.
//
// NOTE: this table is derived data and can always be rebuilt from
// sales_facts.
type UsageSummary struct {
	PharmacyId int `gorm:"primaryKey" json:"pharmacy_id"`
	ProductId  int `gorm:"primaryKey" json:"product_id"`

	AvgQty30d  decimal.Decimal `gorm:"type:decimal(12,3);default:0" json:"avg_qty_30d"`
	AvgQty90d  decimal.Decimal `gorm:"type:decimal(12,3);default:0" json:"avg_qty_90d"`
	AvgQty180d decimal.Decimal `gorm:"type:decimal(12,3);default:0" json:"avg_qty_180d"`

	// LastRecalcAt strictly advances across successive recomputes of the
	// same key; datetime(6) so back-to-back runs still order correctly.
	LastRecalcAt time.Time `gorm:"type:datetime(6);not null" json:"last_recalc_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
