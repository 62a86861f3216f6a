package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/config"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/models"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/utils"
)

// usage-recompute refreshes the per-(pharmacy, product) rolling usage
// averages in usage_summaries.
//
// Full scope (default) recomputes every key with qualifying sales in the
// lookback window. Passing both -pharmacy-id and -product-code recomputes
// exactly one key and prints the refreshed triple.
//
// Example:
//
//	go run ./cmd/usage-recompute/ -pharmacy-id=12 -product-code=PAR500
func main() {
	pharmacyID := flag.Int("pharmacy-id", 0, "Pharmacy id for single-key mode (requires -product-code)")
	productCode := flag.String("product-code", "", "Product code for single-key mode (requires -pharmacy-id)")
	timeout := flag.Duration("timeout", models.DefaultRecomputeTimeout, "Execution time allowance for a full-scope run")
	flag.Parse()

	if err := run(*pharmacyID, strings.TrimSpace(*productCode), *timeout); err != nil {
		config.LogError(config.GetLogger(), "cmd/usage-recompute", "main", "run", map[string]any{
			"pharmacyId":  *pharmacyID,
			"productCode": strings.TrimSpace(*productCode),
		}, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(utils.ExitCode(err))
	}
}

func run(pharmacyID int, productCode string, timeout time.Duration) error {
	singleKey := pharmacyID > 0 || productCode != ""
	if singleKey && (pharmacyID <= 0 || productCode == "") {
		return utils.ConfigurationError("-pharmacy-id and -product-code must be given together", nil)
	}

	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return utils.ConfigurationError("load store config", err)
	}
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return utils.ConfigurationError("connect database", err)
	}
	defer config.CloseDatabase(db)

	// Ensure schema is up-to-date (creates usage_summaries if missing).
	if err := models.MigrateTable(db); err != nil {
		return utils.StoreError("migrate tables", err)
	}

	ctx := context.Background()
	agg := models.NewUsageAggregator(db)
	agg.Timeout = timeout

	if singleKey {
		summary, err := agg.RecomputeOne(ctx, pharmacyID, productCode)
		if err != nil {
			return err
		}
		if summary.LastRecalcAt.IsZero() {
			fmt.Printf("pharmacy=%d product=%s: no qualifying sales in the lookback window; nothing persisted\n",
				pharmacyID, productCode)
			return nil
		}
		fmt.Printf("pharmacy=%d product=%s avg_qty_30d=%s avg_qty_90d=%s avg_qty_180d=%s recalc_at=%s\n",
			pharmacyID, productCode,
			summary.AvgQty30d.String(), summary.AvgQty90d.String(), summary.AvgQty180d.String(),
			summary.LastRecalcAt.Format(time.RFC3339Nano))
		return nil
	}

	count, err := agg.RecomputeAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Usage recompute complete: %d summary rows present\n", count)
	return nil
}
