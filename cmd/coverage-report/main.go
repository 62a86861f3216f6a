package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/config"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/models"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/models/reports"
	"bitbucket.org/mmdatafocus/pharmacy_analytics/utils"
)

// coverage-report lists which daily report kinds each pharmacy has
// delivered per business date, with the missing kinds called out.
//
// Range selection: -days for a trailing window (default 30), or -since
// with optional -until. The two selectors are mutually exclusive.
//
// Example:
//
//	go run ./cmd/coverage-report/ -days=7 -missing-only -csv=missing.csv
func main() {
	days := flag.Int("days", 0, "Trailing window in days (default 30; exclusive with -since)")
	since := flag.String("since", "", "Range start (YYYY-MM-DD; exclusive with -days)")
	until := flag.String("until", "", "Range end (YYYY-MM-DD; requires -since, defaults to today)")
	pharmacyID := flag.Int("pharmacy-id", 0, "Restrict to one pharmacy id")
	name := flag.String("name", "", "Case-insensitive pharmacy name substring filter")
	missingOnly := flag.Bool("missing-only", false, "Only rows with at least one missing kind")
	desc := flag.Bool("desc", false, "Sort by business date descending")
	csvOut := flag.String("csv", "", "Optional CSV output path")
	jsonOut := flag.String("json", "", "Optional JSON output path")
	xlsxOut := flag.String("xlsx", "", "Optional XLSX output path")
	flag.Parse()

	params := reports.CoverageParams{
		DaysBack:     *days,
		Since:        strings.TrimSpace(*since),
		Until:        strings.TrimSpace(*until),
		PharmacyID:   *pharmacyID,
		NameContains: strings.TrimSpace(*name),
		MissingOnly:  *missingOnly,
		SortDesc:     *desc,
	}

	if err := run(params, *csvOut, *jsonOut, *xlsxOut); err != nil {
		config.LogError(config.GetLogger(), "cmd/coverage-report", "main", "run", params, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(utils.ExitCode(err))
	}
}

func run(params reports.CoverageParams, csvOut, jsonOut, xlsxOut string) error {
	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return utils.ConfigurationError("load store config", err)
	}
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return utils.ConfigurationError("connect database", err)
	}
	defer config.CloseDatabase(db)

	rows, err := reports.GetCoverageReport(context.Background(), db, params)
	if err != nil {
		return err
	}

	printTable(rows)

	if csvOut != "" {
		if err := writeCSV(rows, csvOut); err != nil {
			return err
		}
		fmt.Printf("CSV report saved to %s\n", csvOut)
	}
	if jsonOut != "" {
		if err := writeJSON(rows, jsonOut); err != nil {
			return err
		}
		fmt.Printf("JSON report saved to %s\n", jsonOut)
	}
	if xlsxOut != "" {
		if err := reports.ExportCoverageExcel(rows, xlsxOut); err != nil {
			return err
		}
		fmt.Printf("XLSX report saved to %s\n", xlsxOut)
	}
	return nil
}

func printTable(rows []*reports.CoverageRow) {
	if len(rows) == 0 {
		fmt.Println("no coverage rows in range")
		return
	}
	fmt.Printf("%-10s  %-30s  %-12s  %s\n", "PHARMACY", "NAME", "DATE", "MISSING")
	for _, r := range rows {
		missing := "-"
		if len(r.MissingKinds) > 0 {
			parts := make([]string, 0, len(r.MissingKinds))
			for _, k := range r.MissingKinds {
				parts = append(parts, string(k))
			}
			missing = strings.Join(parts, ", ")
		}
		fmt.Printf("%-10d  %-30s  %-12s  %s\n",
			r.PharmacyId, r.PharmacyName, r.BusinessDate.Format("2006-01-02"), missing)
	}
	fmt.Printf("rows=%d\n", len(rows))
}

func writeCSV(rows []*reports.CoverageRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"pharmacy_id", "pharmacy_name", "business_date"}
	for _, kind := range models.AllReportKinds {
		header = append(header, kind.Column())
	}
	header = append(header, "missing_kinds")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		missing := make([]string, 0, len(r.MissingKinds))
		for _, k := range r.MissingKinds {
			missing = append(missing, string(k))
		}
		record := []string{
			strconv.Itoa(r.PharmacyId),
			r.PharmacyName,
			r.BusinessDate.Format("2006-01-02"),
		}
		flags := r.Flags()
		for _, kind := range models.AllReportKinds {
			record = append(record, strconv.FormatBool(flags[kind]))
		}
		record = append(record, strings.Join(missing, "|"))
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(rows []*reports.CoverageRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
