package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dataveil/dataveil/core"
	"github.com/dataveil/dataveil/fileio"
)

type uploadResponse struct {
	Filename string              `json:"filename"`
	Columns  []string            `json:"columns"`
	RowCount int                 `json:"row_count"`
	Preview  []map[string]string `json:"preview"`
}

type anonymizeRequest struct {
	SelectedColumns []string          `json:"selected_columns"`
	Strategies      map[string]string `json:"strategies"`
}

type reportResponse struct {
	Report  *core.Report        `json:"report"`
	Preview []map[string]string `json:"preview"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleUpload accepts a multipart dataset, validates its extension and
// size, and stores it under the data directory with a sanitized name.
func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "missing multipart field 'file'")
		return
	}
	if !s.cfg.AllowedFile(file.Filename) {
		s.logAudit(core.AuditEvent{
			EventType: "upload_rejected",
			Severity:  core.SeverityWarning,
			Filename:  file.Filename,
			Metadata:  map[string]string{"reason": "unsupported extension"},
		})
		s.respondError(c, http.StatusBadRequest, fmt.Sprintf("unsupported file extension: %s", filepath.Ext(file.Filename)))
		return
	}
	if file.Size > int64(s.cfg.MaxFileMB)*1024*1024 {
		s.logAudit(core.AuditEvent{
			EventType: "upload_rejected",
			Severity:  core.SeverityWarning,
			Filename:  file.Filename,
			Metadata:  map[string]string{"reason": "file too large"},
		})
		s.respondError(c, http.StatusBadRequest, fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxFileMB))
		return
	}

	name := fileio.SafeFilename(file.Filename)
	dest := filepath.Join(s.cfg.DataDir, name)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		s.respondInternal(c, "failed to store upload", err)
		return
	}

	ds, err := fileio.Load(dest)
	if err != nil {
		s.respondLoadError(c, err)
		return
	}

	s.logAudit(core.AuditEvent{
		EventType: "upload",
		Severity:  core.SeverityInfo,
		Filename:  name,
		Metadata:  map[string]string{"rows": strconv.Itoa(ds.RowCount())},
	})
	c.JSON(http.StatusOK, uploadResponse{
		Filename: name,
		Columns:  ds.Names(),
		RowCount: ds.RowCount(),
		Preview:  ds.Head(10),
	})
}

// handleAnalyze classifies and scores a previously uploaded file named by
// the ?filename= query parameter.
func (s *Server) handleAnalyze(c *gin.Context) {
	filename := fileio.SafeFilename(c.Query("filename"))
	if filename == "" || filename == "." {
		s.respondError(c, http.StatusBadRequest, "missing query parameter 'filename'")
		return
	}

	path := filepath.Join(s.cfg.DataDir, filename)
	if _, err := os.Stat(path); err != nil {
		s.respondError(c, http.StatusNotFound, fmt.Sprintf("file not found: %s", filename))
		return
	}

	ds, err := fileio.Load(path)
	if err != nil {
		s.respondLoadError(c, err)
		return
	}

	analysis := s.classifier.AnalyzeDataset(ds, s.cfg.MaxSampleRows)
	s.logAudit(core.AuditEvent{
		EventType: "analyze",
		Severity:  core.SeverityInfo,
		Filename:  filename,
		Metadata: map[string]string{
			"detected_columns": strconv.Itoa(len(analysis.DetectedPIIColumns)),
			"global_score":     strconv.Itoa(analysis.GlobalScore),
		},
	})
	c.JSON(http.StatusOK, gin.H{
		"filename": filename,
		"analysis": analysis,
	})
}

// handleAnonymize validates the whole plan up front, applies it to the
// uploaded file and writes both the anonymized output and its report. A
// single invalid strategy rejects the request with nothing written.
func (s *Server) handleAnonymize(c *gin.Context) {
	filename := fileio.SafeFilename(c.Param("filename"))
	path := filepath.Join(s.cfg.DataDir, filename)
	if _, err := os.Stat(path); err != nil {
		s.respondError(c, http.StatusNotFound, fmt.Sprintf("file not found: %s", filename))
		return
	}

	var req anonymizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Strategies) == 0 {
		s.respondError(c, http.StatusBadRequest, "no strategies provided")
		return
	}

	strategies := req.Strategies
	if len(req.SelectedColumns) > 0 {
		strategies = make(map[string]string, len(req.SelectedColumns))
		for _, col := range req.SelectedColumns {
			if spec, ok := req.Strategies[col]; ok {
				strategies[col] = spec
			}
		}
	}

	plan, err := core.ParsePlan(strategies)
	if err != nil {
		s.logAudit(core.AuditEvent{
			EventType: "anonymize_rejected",
			Severity:  core.SeverityWarning,
			Filename:  filename,
			Metadata:  map[string]string{"reason": err.Error()},
		})
		s.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ds, err := fileio.Load(path)
	if err != nil {
		s.respondLoadError(c, err)
		return
	}

	analysis := s.classifier.AnalyzeDataset(ds, s.cfg.MaxSampleRows)
	anonymized := s.engine.Anonymize(ds, plan)

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	outPath := filepath.Join(s.cfg.OutputsDir, stem+"_anon"+ext)
	actualPath, err := fileio.Save(anonymized, outPath)
	if err != nil {
		s.respondInternal(c, "failed to write output", err)
		return
	}
	outputName := filepath.Base(actualPath)

	report := &core.Report{
		OriginalFilename:   filename,
		OutputFilename:     outputName,
		DetectedPIIColumns: analysis.DetectedPIIColumns,
		ColumnRisk:         analysis.ColumnRisk,
		GlobalScore:        analysis.GlobalScore,
		GeneratedAt:        time.Now().UTC(),
		Plan:               plan.Strings(),
	}
	if err := report.Write(core.ReportPath(s.cfg.OutputsDir, outputName)); err != nil {
		s.respondInternal(c, "failed to write report", err)
		return
	}

	s.logAudit(core.AuditEvent{
		EventType: "anonymize",
		Severity:  core.SeverityInfo,
		Filename:  filename,
		Metadata: map[string]string{
			"output":       outputName,
			"columns":      strconv.Itoa(len(plan)),
			"global_score": strconv.Itoa(analysis.GlobalScore),
		},
	})
	c.JSON(http.StatusOK, report)
}

// handleReport returns the stored report for an output file together with
// a 20-row preview of the anonymized data.
func (s *Server) handleReport(c *gin.Context) {
	output := fileio.SafeFilename(c.Param("output"))
	report, err := core.LoadReport(core.ReportPath(s.cfg.OutputsDir, output))
	if err != nil {
		s.respondError(c, http.StatusNotFound, fmt.Sprintf("report not found for: %s", output))
		return
	}

	var preview []map[string]string
	if ds, err := fileio.Load(filepath.Join(s.cfg.OutputsDir, output)); err == nil {
		preview = ds.Head(20)
	}

	c.JSON(http.StatusOK, reportResponse{Report: report, Preview: preview})
}

// handleDownload streams an anonymized output file as an attachment.
func (s *Server) handleDownload(c *gin.Context) {
	output := fileio.SafeFilename(c.Param("output"))
	path := filepath.Join(s.cfg.OutputsDir, output)
	if _, err := os.Stat(path); err != nil {
		s.respondError(c, http.StatusNotFound, fmt.Sprintf("file not found: %s", output))
		return
	}

	c.Header("Content-Type", contentTypeFor(output))
	c.FileAttachment(path, output)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	case ".xlsx", ".xlsm", ".xls":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json", ".jsonl":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
