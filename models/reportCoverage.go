package models

import (
	"time"
)

// ReportCoverage records which report kinds have been received for one
// (pharmacy, business date) pair. The ingestion side creates a row when the
// first kind for the pair arrives; a pair with no observed kinds simply has
// no row. Read-only here.
type ReportCoverage struct {
	PharmacyId   int       `gorm:"primaryKey" json:"pharmacy_id"`
	BusinessDate time.Time `gorm:"type:date;primaryKey" json:"business_date"`

	HasTurnover         bool `gorm:"not null;default:false" json:"has_turnover"`
	HasTradingStock     bool `gorm:"not null;default:false" json:"has_trading_stock"`
	HasScriptsDispensed bool `gorm:"not null;default:false" json:"has_scripts_dispensed"`
	HasGrossProfit      bool `gorm:"not null;default:false" json:"has_gross_profit"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Flags maps each report kind to its received flag. Keyed off
// AllReportKinds so the kind set stays defined in one place.
func (rc *ReportCoverage) Flags() map[ReportKind]bool {
	return map[ReportKind]bool{
		ReportKindTurnover:         rc.HasTurnover,
		ReportKindTradingStock:     rc.HasTradingStock,
		ReportKindScriptsDispensed: rc.HasScriptsDispensed,
		ReportKindGrossProfit:      rc.HasGrossProfit,
	}
}

// MissingKinds returns the kinds not yet received for this pair, in
// display order. Empty means the day is fully covered.
func (rc *ReportCoverage) MissingKinds() []ReportKind {
	flags := rc.Flags()
	var missing []ReportKind
	for _, kind := range AllReportKinds {
		if !flags[kind] {
			missing = append(missing, kind)
		}
	}
	return missing
}

// IsComplete reports whether every kind has been received.
func (rc *ReportCoverage) IsComplete() bool {
	return len(rc.MissingKinds()) == 0
}
