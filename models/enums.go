package models

// ReportKind identifies one of the daily report feeds a pharmacy is
// expected to deliver. The set is closed; adding a kind is a schema change.
type ReportKind string

const (
	ReportKindTurnover         ReportKind = "turnover"
	ReportKindTradingStock     ReportKind = "trading-stock"
	ReportKindScriptsDispensed ReportKind = "scripts-dispensed"
	ReportKindGrossProfit      ReportKind = "gross-profit"
)

// AllReportKinds is the single source of truth for the kind set, in display
// order. Call sites iterate this instead of hard-coding kinds.
var AllReportKinds = []ReportKind{
	ReportKindTurnover,
	ReportKindTradingStock,
	ReportKindScriptsDispensed,
	ReportKindGrossProfit,
}

// Column is the report_coverages flag column backing this kind.
func (k ReportKind) Column() string {
	switch k {
	case ReportKindTurnover:
		return "has_turnover"
	case ReportKindTradingStock:
		return "has_trading_stock"
	case ReportKindScriptsDispensed:
		return "has_scripts_dispensed"
	case ReportKindGrossProfit:
		return "has_gross_profit"
	}
	return ""
}

func (k ReportKind) Label() string {
	switch k {
	case ReportKindTurnover:
		return "Turnover"
	case ReportKindTradingStock:
		return "Trading Stock"
	case ReportKindScriptsDispensed:
		return "Scripts Dispensed"
	case ReportKindGrossProfit:
		return "Gross Profit"
	}
	return string(k)
}

type ImportBatchStatus string

const (
	ImportBatchStatusPending   ImportBatchStatus = "Pending"
	ImportBatchStatusCompleted ImportBatchStatus = "Completed"
	ImportBatchStatusFailed    ImportBatchStatus = "Failed"
)
