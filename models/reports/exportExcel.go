package reports

import (
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/models"
	"github.com/xuri/excelize/v2"
)

// ExportCoverageExcel writes the coverage row sequence to an xlsx file.
// Pure serialization of what GetCoverageReport returned.
func ExportCoverageExcel(rows []*CoverageRow, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	headers := []string{"PharmacyId", "PharmacyName", "BusinessDate"}
	for _, kind := range models.AllReportKinds {
		headers = append(headers, kind.Label())
	}
	headers = append(headers, "MissingKinds")

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		flags := row.coverage().Flags()
		values := []interface{}{
			row.PharmacyId,
			row.PharmacyName,
			row.BusinessDate.Format("2006-01-02"),
		}
		for _, kind := range models.AllReportKinds {
			values = append(values, flags[kind])
		}
		missing := make([]string, 0, len(row.MissingKinds))
		for _, kind := range row.MissingKinds {
			missing = append(missing, string(kind))
		}
		values = append(values, strings.Join(missing, ", "))

		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("save excel export: %w", err)
	}
	return nil
}
