package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UsageWindow is one trailing-average window over sales_facts.
type UsageWindow struct {
	Days   int
	Column string
}

// UsageWindows drives the recompute SQL. The largest entry doubles as the
// lookback bound; columns map 1:1 onto usage_summaries.
var UsageWindows = []UsageWindow{
	{Days: 30, Column: "avg_qty_30d"},
	{Days: 90, Column: "avg_qty_90d"},
	{Days: 180, Column: "avg_qty_180d"},
}

// DefaultRecomputeTimeout bounds a full-scope recompute. Exceeding it
// aborts the run; keys merged so far stay refreshed, the rest stay stale
// but valid (per-key merges are atomic, the run as a whole is not).
const DefaultRecomputeTimeout = 10 * time.Minute

const averageScale = 3

// UsageAggregator recomputes trailing average daily sold quantities per
// (pharmacy, product) and merges them into usage_summaries.
//
// Both scopes run the exact same SQL routine; a single-key recompute only
// adds WHERE fragments, so the arithmetic cannot diverge between "all" and
// "one". The divisor is the fixed window length, not the count of active
// days: infrequently-sold items get averages diluted toward zero. That is
// the intended meaning of the metric, do not "fix" it.
type UsageAggregator struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewUsageAggregator(db *gorm.DB) *UsageAggregator {
	return &UsageAggregator{
		DB:      db,
		Timeout: DefaultRecomputeTimeout,
	}
}

// usageScope narrows the recompute to one (pharmacy, product) key.
// Zero values mean full scope.
type usageScope struct {
	PharmacyId int
	ProductId  int
}

// RecomputeAll refreshes every key with qualifying lookback activity and
// returns the number of summary rows present afterwards.
func (a *UsageAggregator) RecomputeAll(ctx context.Context) (int64, error) {
	if a.DB == nil {
		return 0, utils.ConfigurationError("no store connection configured", nil)
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultRecomputeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.merge(ctx, usageScope{}); err != nil {
		return 0, err
	}

	var count int64
	if err := a.DB.WithContext(ctx).Model(&UsageSummary{}).Count(&count).Error; err != nil {
		return 0, utils.StoreError("count usage summaries", err)
	}
	return count, nil
}

// RecomputeOne refreshes a single (pharmacy, product code) key and returns
// the resulting triple. An unknown product code is a data-unavailable
// error. A known product with zero qualifying sales in the lookback window
// yields a zero-valued triple and persists nothing.
func (a *UsageAggregator) RecomputeOne(ctx context.Context, pharmacyID int, productCode string) (*UsageSummary, error) {
	if a.DB == nil {
		return nil, utils.ConfigurationError("no store connection configured", nil)
	}

	product, err := GetProductByCode(ctx, a.DB, productCode)
	if err != nil {
		return nil, err
	}

	scope := usageScope{PharmacyId: pharmacyID, ProductId: product.ID}
	if err := a.merge(ctx, scope); err != nil {
		return nil, err
	}

	var summary UsageSummary
	err = a.DB.WithContext(ctx).
		Where("pharmacy_id = ? AND product_id = ?", pharmacyID, product.ID).
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No qualifying activity: the conceptual average is zero but no row
		// is materialized.
		return &UsageSummary{
			PharmacyId: pharmacyID,
			ProductId:  product.ID,
			AvgQty30d:  decimal.Zero,
			AvgQty90d:  decimal.Zero,
			AvgQty180d: decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, utils.StoreError("read usage summary", err)
	}
	return &summary, nil
}

// merge runs the shared insert-or-update aggregate. Each key's row is
// written by a single atomic statement, so racing recomputes over
// overlapping keys converge last-writer-wins without duplicates.
func (a *UsageAggregator) merge(ctx context.Context, scope usageScope) error {
	lookback := UsageWindows[len(UsageWindows)-1]
	anchor := utils.DateOnly(time.Now())

	params := map[string]interface{}{
		"anchor":     anchor,
		"pharmacyId": scope.PharmacyId,
		"productId":  scope.ProductId,
	}

	var columns []string
	var selects []string
	var updates []string
	for _, w := range UsageWindows {
		param := fmt.Sprintf("from_%d", w.Days)
		params[param] = anchor.AddDate(0, 0, -(w.Days - 1))
		columns = append(columns, w.Column)
		if w.Days == lookback.Days {
			// The lookback window needs no CASE, the WHERE already bounds it.
			selects = append(selects, fmt.Sprintf(
				"ROUND(SUM(sf.qty_sold) / %d, %d) AS %s", w.Days, averageScale, w.Column))
		} else {
			selects = append(selects, fmt.Sprintf(
				"ROUND(SUM(CASE WHEN sf.business_date >= @%s THEN sf.qty_sold ELSE 0 END) / %d, %d) AS %s",
				param, w.Days, averageScale, w.Column))
		}
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", w.Column, w.Column))
	}

	sqlT := fmt.Sprintf(`
INSERT INTO usage_summaries
	(pharmacy_id, product_id, %s, last_recalc_at, created_at, updated_at)
SELECT
	sf.pharmacy_id,
	sf.product_id,
	%s,
	NOW(6) AS last_recalc_at,
	NOW(),
	NOW()
FROM
	sales_facts AS sf
WHERE
	sf.qty_sold > 0
	AND sf.business_date BETWEEN @from_%d AND @anchor
	{{- if .pharmacyId }} AND sf.pharmacy_id = @pharmacyId {{- end }}
	{{- if .productId }} AND sf.product_id = @productId {{- end }}
GROUP BY sf.pharmacy_id, sf.product_id
ON DUPLICATE KEY UPDATE
	%s,
	last_recalc_at = VALUES(last_recalc_at),
	updated_at = NOW()
`,
		strings.Join(columns, ", "),
		strings.Join(selects, ",\n\t"),
		lookback.Days,
		strings.Join(updates, ",\n\t"),
	)

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"pharmacyId": scope.PharmacyId,
		"productId":  scope.ProductId,
	})
	if err != nil {
		return utils.StoreError("build usage merge sql", err)
	}

	if err := a.DB.WithContext(ctx).Exec(sql, params).Error; err != nil {
		return utils.StoreError("merge usage summaries", err)
	}
	return nil
}
