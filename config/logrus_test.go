package config_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// The cmd scripts report fatal errors through LogError before exiting;
// the entry must carry the module/funcName/context fields as JSON.
func TestLogError_EmitsStructuredEntry(t *testing.T) {
	logger := config.GetLogger()
	require.NotNil(t, logger)

	var buf bytes.Buffer
	origOut := logger.Out
	origLevel := logger.GetLevel()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.ErrorLevel)
	t.Cleanup(func() {
		logger.SetOutput(origOut)
		logger.SetLevel(origLevel)
	})

	config.LogError(logger, "cmd/usage-recompute", "main", "run", map[string]any{
		"pharmacyId": 7,
	}, errors.New("store operation failed: merge usage summaries"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "cmd/usage-recompute", entry["module"])
	require.Equal(t, "main", entry["funcName"])
	require.Equal(t, "run", entry["context"])
	require.Equal(t, "error", entry["level"])
	require.Contains(t, entry["msg"], "merge usage summaries")
	require.NotNil(t, entry["data"])

	// Without data the field is omitted entirely.
	buf.Reset()
	config.LogError(logger, "cmd/import-reconcile", "main", "run", nil, errors.New("boom"))
	entry = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasData := entry["data"]
	require.False(t, hasData)
}
