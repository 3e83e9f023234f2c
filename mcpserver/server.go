// Package mcpserver exposes the anonymization pipeline as MCP tools over
// stdio, letting LLM agents analyze datasets and apply anonymization plans
// without going through the HTTP surface.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dataveil/dataveil/core"
	"github.com/dataveil/dataveil/fileio"
)

// Service backs the MCP tool handlers with the shared pipeline components.
type Service struct {
	cfg        core.Config
	classifier *core.Classifier
	engine     *core.Engine
}

// New wires the pipeline for MCP serving.
func New(cfg core.Config, rules *core.Rules) *Service {
	return &Service{
		cfg:        cfg,
		classifier: core.NewClassifier(rules, core.NewPatternRegistry()),
		engine:     core.NewEngine(cfg.Salt),
	}
}

// Server builds the MCP server with every tool registered.
func (s *Service) Server() *server.MCPServer {
	srv := server.NewMCPServer("dataveil", "1.0.0")

	srv.AddTool(mcp.NewTool("analyze_dataset",
		mcp.WithDescription("Detect and score personal data columns in a tabular dataset file (csv, tsv, xlsx, json, jsonl, parquet)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the dataset file.")),
	), s.handleAnalyze)

	srv.AddTool(mcp.NewTool("suggest_plan",
		mcp.WithDescription("Suggest an anonymization strategy per detected personal data column."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the dataset file.")),
	), s.handleSuggestPlan)

	srv.AddTool(mcp.NewTool("anonymize_dataset",
		mcp.WithDescription("Apply an anonymization plan to a dataset file and write the anonymized output plus a report."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the dataset file.")),
		mcp.WithObject("strategies", mcp.Required(), mcp.Description("Map of column name to strategy spec, e.g. {\"email\": \"mask\", \"dni\": \"hash:length=16\"}.")),
		mcp.WithString("output_dir", mcp.Description("Directory for the output and report; defaults to the configured outputs directory.")),
	), s.handleAnonymize)

	return srv
}

// ServeStdio runs the MCP server on stdin/stdout until EOF.
func (s *Service) ServeStdio() error {
	return server.ServeStdio(s.Server())
}

func (s *Service) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := stringArg(req, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ds, err := fileio.Load(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}

	analysis := s.classifier.AnalyzeDataset(ds, s.cfg.MaxSampleRows)
	return jsonResult(analysis)
}

func (s *Service) handleSuggestPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := stringArg(req, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ds, err := fileio.Load(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}

	analysis := s.classifier.AnalyzeDataset(ds, s.cfg.MaxSampleRows)
	return jsonResult(map[string]any{
		"detected_pii_columns": analysis.DetectedPIIColumns,
		"suggested_strategies": analysis.SuggestedStrategies,
	})
}

func (s *Service) handleAnonymize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := stringArg(req, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.Params.Arguments
	rawStrategies, ok := args["strategies"].(map[string]interface{})
	if !ok || len(rawStrategies) == 0 {
		return mcp.NewToolResultError("missing required object argument: strategies"), nil
	}
	strategies := make(map[string]string, len(rawStrategies))
	for col, v := range rawStrategies {
		spec, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("strategy for column %q must be a string", col)), nil
		}
		strategies[col] = spec
	}

	plan, err := core.ParsePlan(strategies)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ds, err := fileio.Load(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}

	outputDir := s.cfg.OutputsDir
	if dir, ok := args["output_dir"].(string); ok && dir != "" {
		outputDir = dir
	}

	analysis := s.classifier.AnalyzeDataset(ds, s.cfg.MaxSampleRows)
	anonymized := s.engine.Anonymize(ds, plan)

	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	outPath := filepath.Join(outputDir, strings.TrimSuffix(filename, ext)+"_anon"+ext)
	actualPath, err := fileio.Save(anonymized, outPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write output: %v", err)), nil
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
	if err := report.Write(core.ReportPath(outputDir, outputName)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write report: %v", err)), nil
	}

	return jsonResult(report)
}

func stringArg(req mcp.CallToolRequest, key string) (string, error) {
	val, ok := req.Params.Arguments[key].(string)
	if !ok || val == "" {
		return "", fmt.Errorf("missing required string argument: %s", key)
	}
	return val, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
