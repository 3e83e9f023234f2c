// Package api exposes the anonymization pipeline over HTTP: upload a
// dataset, analyze it for personal data, apply an anonymization plan and
// fetch the resulting output and report.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/dataveil/dataveil/core"
)

// Server holds the shared pipeline components behind the HTTP handlers.
// All fields are read-only after construction, so handlers can run
// concurrently.
type Server struct {
	cfg        core.Config
	classifier *core.Classifier
	engine     *core.Engine
	audit      *core.AuditLogger
	logger     *slog.Logger
}

// NewServer wires the pipeline for HTTP serving. audit may be nil to
// disable the audit trail (tests); logger nil falls back to slog.Default.
func NewServer(cfg core.Config, rules *core.Rules, audit *core.AuditLogger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:        cfg,
		classifier: core.NewClassifier(rules, core.NewPatternRegistry()),
		engine:     core.NewEngine(cfg.Salt),
		audit:      audit,
		logger:     logger,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = int64(s.cfg.MaxFileMB) << 20

	r.GET("/healthz", s.handleHealthz)
	r.POST("/upload", s.handleUpload)
	r.POST("/api/analyze", s.handleAnalyze)
	r.POST("/anonymize/:filename", s.handleAnonymize)
	r.GET("/report/:output", s.handleReport)
	r.GET("/download/:output", s.handleDownload)
	return r
}

// logAudit records an audit event, tolerating a nil or failing logger so
// the request itself never fails on audit problems.
func (s *Server) logAudit(event core.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(event); err != nil {
		s.logger.Warn("Failed to write audit event", "error", err)
	}
}
