package models_test

import (
	"testing"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/models"
	"github.com/stretchr/testify/require"
)

func TestReportKindSet(t *testing.T) {
	require.Len(t, models.AllReportKinds, 4)

	seenColumns := map[string]bool{}
	for _, kind := range models.AllReportKinds {
		require.NotEmpty(t, kind.Column(), "kind %s has no column", kind)
		require.NotEmpty(t, kind.Label(), "kind %s has no label", kind)
		require.False(t, seenColumns[kind.Column()], "duplicate column %s", kind.Column())
		seenColumns[kind.Column()] = true
	}
}

func TestReportCoverage_MissingKinds(t *testing.T) {
	complete := &models.ReportCoverage{
		HasTurnover:         true,
		HasTradingStock:     true,
		HasScriptsDispensed: true,
		HasGrossProfit:      true,
	}
	require.Empty(t, complete.MissingKinds())
	require.True(t, complete.IsComplete())

	// Flipping any single flag false surfaces exactly that kind.
	partial := &models.ReportCoverage{
		HasTurnover:         true,
		HasTradingStock:     true,
		HasScriptsDispensed: false,
		HasGrossProfit:      true,
	}
	require.Equal(t, []models.ReportKind{models.ReportKindScriptsDispensed}, partial.MissingKinds())
	require.False(t, partial.IsComplete())

	empty := &models.ReportCoverage{}
	require.Equal(t, models.AllReportKinds, empty.MissingKinds())
}

func TestReportCoverage_Flags(t *testing.T) {
	rc := &models.ReportCoverage{HasTurnover: true, HasGrossProfit: true}
	flags := rc.Flags()
	require.Len(t, flags, len(models.AllReportKinds))
	require.True(t, flags[models.ReportKindTurnover])
	require.False(t, flags[models.ReportKindTradingStock])
	require.False(t, flags[models.ReportKindScriptsDispensed])
	require.True(t, flags[models.ReportKindGrossProfit])
}
