package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/config"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/models/reports"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/utils"
)

// import-reconcile cross-checks import batch manifests against the sales
// facts actually persisted for each batch. A batch claiming records with
// zero derived rows is a data-loss signal worth chasing.
//
// Diagnostic only: reads, prints, changes nothing.
func main() {
	limit := flag.Int("limit", reports.DefaultProblematicLimit, "Max problematic batches to list (newest first)")
	flag.Parse()

	if err := run(*limit); err != nil {
		config.LogError(config.GetLogger(), "cmd/import-reconcile", "main", "run", map[string]any{
			"limit": *limit,
		}, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(utils.ExitCode(err))
	}
}

func run(limit int) error {
	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return utils.ConfigurationError("load store config", err)
	}
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return utils.ConfigurationError("connect database", err)
	}
	defer config.CloseDatabase(db)

	recon, err := reports.GetImportReconciliation(context.Background(), db, limit)
	if err != nil {
		return err
	}

	if len(recon.Problematic) == 0 {
		fmt.Println("no problematic batches (claimed > 0 with zero derived records)")
	} else {
		fmt.Printf("problematic batches (newest first, limit %d):\n", limit)
		for _, b := range recon.Problematic {
			errMsg := ""
			if b.ErrorMessage != nil && *b.ErrorMessage != "" {
				errMsg = fmt.Sprintf(" error=%q", *b.ErrorMessage)
			}
			fmt.Printf("  batch=%s pharmacy=%d file=%q uploaded=%s claimed=%d derived=%d status=%s%s\n",
				b.BatchId, b.PharmacyId, b.SourceFilename,
				b.UploadedAt.Format("2006-01-02 15:04:05"),
				b.ClaimedRecordCount, b.DerivedRecordCount, b.Status, errMsg)
		}
	}

	if recon.NoSuccessfulImport() {
		fmt.Println("no batch has ever produced derived records")
		return nil
	}

	s := recon.LatestSuccess
	fmt.Printf("latest successful batch: batch=%s pharmacy=%d file=%q uploaded=%s claimed=%d derived=%d\n",
		s.BatchId, s.PharmacyId, s.SourceFilename,
		s.UploadedAt.Format("2006-01-02 15:04:05"),
		s.ClaimedRecordCount, s.DerivedRecordCount)
	return nil
}
