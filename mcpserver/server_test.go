package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataveil/dataveil/core"
)

const sampleCSV = "nombre,email,edad\nJuan Perez,juan@mail.com,34\nMaria Garcia,maria@mail.com,17\n"

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	base := t.TempDir()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_SALT", "test-salt")
	t.Setenv("OUTPUTS_DIR", filepath.Join(base, "outputs"))
	t.Setenv("DATA_DIR", filepath.Join(base, "data"))

	cfg := core.LoadConfig()
	require.NoError(t, cfg.EnsureDirs())

	path := filepath.Join(base, "clients.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return New(cfg, core.DefaultRules()), path
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.False(t, result.IsError, "unexpected tool error: %v", result.Content)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestAnalyzeDatasetTool(t *testing.T) {
	svc, path := newTestService(t)

	result, err := svc.handleAnalyze(context.Background(), callRequest("analyze_dataset", map[string]interface{}{"path": path}))
	require.NoError(t, err)

	var analysis core.Analysis
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &analysis))
	assert.Contains(t, analysis.DetectedPIIColumns, "email")
	assert.Equal(t, "mask", analysis.SuggestedStrategies["email"])
}

func TestAnalyzeDatasetToolErrors(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.handleAnalyze(context.Background(), callRequest("analyze_dataset", map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = svc.handleAnalyze(context.Background(), callRequest("analyze_dataset", map[string]interface{}{"path": "missing.csv"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSuggestPlanTool(t *testing.T) {
	svc, path := newTestService(t)

	result, err := svc.handleSuggestPlan(context.Background(), callRequest("suggest_plan", map[string]interface{}{"path": path}))
	require.NoError(t, err)

	var resp struct {
		DetectedPIIColumns  []string          `json:"detected_pii_columns"`
		SuggestedStrategies map[string]string `json:"suggested_strategies"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Contains(t, resp.DetectedPIIColumns, "nombre")
	assert.Equal(t, "mask", resp.SuggestedStrategies["email"])
}

func TestAnonymizeDatasetTool(t *testing.T) {
	svc, path := newTestService(t)

	result, err := svc.handleAnonymize(context.Background(), callRequest("anonymize_dataset", map[string]interface{}{
		"path": path,
		"strategies": map[string]interface{}{
			"email": "mask",
			"edad":  "bucket_age",
		},
	}))
	require.NoError(t, err)

	var report core.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, "clients_anon.csv", report.OutputFilename)

	outPath := filepath.Join(svc.cfg.OutputsDir, "clients_anon.csv")
	assert.FileExists(t, outPath)
	assert.FileExists(t, core.ReportPath(svc.cfg.OutputsDir, "clients_anon.csv"))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "j***@mail.com")
}

func TestAnonymizeDatasetToolRejectsInvalidPlan(t *testing.T) {
	svc, path := newTestService(t)

	result, err := svc.handleAnonymize(context.Background(), callRequest("anonymize_dataset", map[string]interface{}{
		"path":       path,
		"strategies": map[string]interface{}{"email": "hash:length=4"},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	// Missing strategies object.
	result, err = svc.handleAnonymize(context.Background(), callRequest("anonymize_dataset", map[string]interface{}{"path": path}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
