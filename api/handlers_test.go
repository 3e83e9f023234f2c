package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataveil/dataveil/core"
)

const sampleCSV = "nombre,email,edad\nJuan Perez,juan@mail.com,34\nMaria Garcia,maria@mail.com,17\n"

func newTestRouter(t *testing.T) (*gin.Engine, core.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := t.TempDir()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_SALT", "test-salt")
	t.Setenv("DATA_DIR", filepath.Join(base, "data"))
	t.Setenv("OUTPUTS_DIR", filepath.Join(base, "outputs"))

	cfg := core.LoadConfig()
	require.NoError(t, cfg.EnsureDirs())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(cfg, core.DefaultRules(), nil, logger)
	return srv.Router(), cfg
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpload(t *testing.T) {
	router, cfg := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "clients.csv", sampleCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "clients.csv", resp.Filename)
	assert.Equal(t, []string{"nombre", "email", "edad"}, resp.Columns)
	assert.Equal(t, 2, resp.RowCount)
	assert.Len(t, resp.Preview, 2)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "clients.csv"))
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "malware.exe", "MZ"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadSanitizesFilename(t *testing.T) {
	router, cfg := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "../escape me!.csv", sampleCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "escape_me_.csv", resp.Filename)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "escape_me_.csv"))
}

func TestAnalyze(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "clients.csv", sampleCSV))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analyze?filename=clients.csv", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Filename string         `json:"filename"`
		Analysis *core.Analysis `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "clients.csv", resp.Filename)
	require.NotNil(t, resp.Analysis)
	assert.Contains(t, resp.Analysis.DetectedPIIColumns, "email")
	assert.Contains(t, resp.Analysis.DetectedPIIColumns, "nombre")
	assert.Equal(t, "mask", resp.Analysis.SuggestedStrategies["email"])
}

func TestAnalyzeMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analyze?filename=nope.csv", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func anonymizeRequestBody(t *testing.T, strategies map[string]string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(anonymizeRequest{Strategies: strategies})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestAnonymize(t *testing.T) {
	router, cfg := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "clients.csv", sampleCSV))
	require.Equal(t, http.StatusOK, w.Code)

	body := anonymizeRequestBody(t, map[string]string{
		"email": "mask",
		"edad":  "bucket_age",
	})
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/anonymize/clients.csv", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report core.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "clients.csv", report.OriginalFilename)
	assert.Equal(t, "clients_anon.csv", report.OutputFilename)
	assert.Equal(t, map[string]string{"email": "mask", "edad": "bucket_age"}, report.Plan)

	outPath := filepath.Join(cfg.OutputsDir, "clients_anon.csv")
	assert.FileExists(t, outPath)
	assert.FileExists(t, core.ReportPath(cfg.OutputsDir, "clients_anon.csv"))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "j***@mail.com")
	assert.Contains(t, string(data), "30-44")
	assert.NotContains(t, string(data), "juan@mail.com")
}

// A single invalid strategy rejects the whole request and writes nothing.
func TestAnonymizeRejectsInvalidPlan(t *testing.T) {
	router, cfg := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "clients.csv", sampleCSV))
	require.Equal(t, http.StatusOK, w.Code)

	body := anonymizeRequestBody(t, map[string]string{
		"email": "mask",
		"edad":  "hash:length=4",
	})
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/anonymize/clients.csv", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	entries, err := os.ReadDir(cfg.OutputsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnonymizeMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body := anonymizeRequestBody(t, map[string]string{"email": "mask"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/anonymize/nope.csv", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportAndDownload(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "clients.csv", sampleCSV))
	require.Equal(t, http.StatusOK, w.Code)

	body := anonymizeRequestBody(t, map[string]string{"email": "mask"})
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/anonymize/clients.csv", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report/clients_anon.csv", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Report)
	assert.Equal(t, "clients_anon.csv", resp.Report.OutputFilename)
	assert.Len(t, resp.Preview, 2)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/clients_anon.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "clients_anon.csv")
	assert.True(t, strings.Contains(w.Body.String(), "j***@mail.com"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/missing.csv", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report/missing.csv", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
