package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/models"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/utils"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// DefaultCoverageDaysBack is the trailing window used when the caller
// gives no explicit range: today and the preceding 29 days.
const DefaultCoverageDaysBack = 30

var validate = validator.New()

// CoverageParams selects and orders coverage rows. DaysBack and Since are
// mutually exclusive range selectors; Until is only meaningful with Since.
type CoverageParams struct {
	DaysBack     int    `validate:"omitempty,min=1,max=3650"`
	Since        string `validate:"omitempty,datetime=2006-01-02"`
	Until        string `validate:"omitempty,datetime=2006-01-02"`
	PharmacyID   int    `validate:"omitempty,min=1"`
	NameContains string
	MissingOnly  bool
	SortDesc     bool
}

func (p *CoverageParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return utils.ConfigurationError("invalid coverage parameters", err)
	}
	if p.Since != "" && p.DaysBack > 0 {
		return utils.ConfigurationError("since and days-back are mutually exclusive", nil)
	}
	if p.Until != "" && p.Since == "" {
		return utils.ConfigurationError("until requires since", nil)
	}
	return nil
}

// Resolve turns the selectors into a closed [from, to] date interval
// anchored at now.
func (p *CoverageParams) Resolve(now time.Time) (time.Time, time.Time, error) {
	if err := p.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	if p.Since != "" {
		from, _ := time.ParseInLocation("2006-01-02", p.Since, time.UTC)
		to := utils.DateOnly(now)
		if p.Until != "" {
			to, _ = time.ParseInLocation("2006-01-02", p.Until, time.UTC)
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, utils.ConfigurationError("until precedes since", nil)
		}
		return from, to, nil
	}

	days := p.DaysBack
	if days <= 0 {
		days = DefaultCoverageDaysBack
	}
	from, to := utils.TrailingRange(now, days)
	return from, to, nil
}

// CoverageRow is one (pharmacy, business date) pair with its received
// flags and the kinds still missing (empty when the day is complete).
type CoverageRow struct {
	PharmacyId   int       `json:"pharmacy_id"`
	PharmacyName string    `json:"pharmacy_name"`
	BusinessDate time.Time `json:"business_date"`

	HasTurnover         bool `json:"has_turnover"`
	HasTradingStock     bool `json:"has_trading_stock"`
	HasScriptsDispensed bool `json:"has_scripts_dispensed"`
	HasGrossProfit      bool `json:"has_gross_profit"`

	MissingKinds []models.ReportKind `gorm:"-" json:"missing_kinds"`
}

// Flags maps each report kind to its received flag for this row.
func (r *CoverageRow) Flags() map[models.ReportKind]bool {
	return r.coverage().Flags()
}

func (r *CoverageRow) coverage() *models.ReportCoverage {
	return &models.ReportCoverage{
		PharmacyId:          r.PharmacyId,
		BusinessDate:        r.BusinessDate,
		HasTurnover:         r.HasTurnover,
		HasTradingStock:     r.HasTradingStock,
		HasScriptsDispensed: r.HasScriptsDispensed,
		HasGrossProfit:      r.HasGrossProfit,
	}
}

// GetCoverageReport lists which report kinds have been observed per
// (pharmacy, business date) inside the resolved range. Pairs with no
// observed kind at all never appear. Pure projection, no side effects.
func GetCoverageReport(ctx context.Context, db *gorm.DB, params CoverageParams) ([]*CoverageRow, error) {
	if db == nil {
		return nil, utils.ConfigurationError("no store connection configured", nil)
	}
	fromDate, toDate, err := params.Resolve(time.Now())
	if err != nil {
		return nil, err
	}

	// Flag expressions come off the kind set so the four columns stay
	// defined in one place.
	cols := make([]string, 0, len(models.AllReportKinds))
	for _, kind := range models.AllReportKinds {
		cols = append(cols, "rc."+kind.Column())
	}
	anyKind := strings.Join(cols, " OR ")
	everyKind := strings.Join(cols, " AND ")

	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	sqlT := fmt.Sprintf(`
SELECT
	rc.pharmacy_id,
	p.name AS pharmacy_name,
	rc.business_date,
	rc.has_turnover,
	rc.has_trading_stock,
	rc.has_scripts_dispensed,
	rc.has_gross_profit
FROM
	report_coverages AS rc
	JOIN pharmacies AS p ON p.id = rc.pharmacy_id
WHERE
	rc.business_date BETWEEN @fromDate AND @toDate
	AND (%s)
	{{- if .pharmacyId }} AND rc.pharmacy_id = @pharmacyId {{- end }}
	{{- if .nameContains }} AND LOWER(p.name) LIKE @nameContains {{- end }}
	{{- if .missingOnly }} AND NOT (%s) {{- end }}
ORDER BY rc.business_date %s, rc.pharmacy_id ASC
`, anyKind, everyKind, direction)

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"pharmacyId":   params.PharmacyID,
		"nameContains": params.NameContains,
		"missingOnly":  params.MissingOnly,
	})
	if err != nil {
		return nil, utils.StoreError("build coverage report sql", err)
	}

	var rows []*CoverageRow
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate":     fromDate,
		"toDate":       toDate,
		"pharmacyId":   params.PharmacyID,
		"nameContains": "%" + utils.EscapeLike(strings.ToLower(params.NameContains)) + "%",
	}).Scan(&rows).Error; err != nil {
		return nil, utils.StoreError("query report coverage", err)
	}

	for _, row := range rows {
		row.MissingKinds = row.coverage().MissingKinds()
	}
	return rows, nil
}
