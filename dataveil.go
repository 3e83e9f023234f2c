// Package dataveil detects and anonymizes personal data in tabular
// datasets. This file is the embedding surface: convenience functions that
// wire configuration, rules, file loading and the core pipeline for
// callers that do not want to assemble the pieces themselves.
package dataveil

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dataveil/dataveil/core"
	"github.com/dataveil/dataveil/fileio"
)

// AnalyzeFile loads a dataset file and runs the full analysis pipeline:
// PII column detection, per-column classification, risk scoring and
// strategy suggestion. Configuration and rules come from the environment
// and the built-in defaults.
func AnalyzeFile(path string) (*core.Analysis, error) {
	return AnalyzeFileWithRules(path, core.LoadConfig(), core.DefaultRules())
}

// AnalyzeFileWithRules is AnalyzeFile with explicit configuration and rule
// tables.
func AnalyzeFileWithRules(path string, cfg core.Config, rules *core.Rules) (*core.Analysis, error) {
	ds, err := fileio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	classifier := core.NewClassifier(rules, core.NewPatternRegistry())
	return classifier.AnalyzeDataset(ds, cfg.MaxSampleRows), nil
}

// SuggestPlan analyzes a dataset file and returns a suggested strategy per
// detected PII column. Columns without an obvious handling are omitted.
func SuggestPlan(path string) (map[string]string, error) {
	analysis, err := AnalyzeFile(path)
	if err != nil {
		return nil, err
	}
	return analysis.SuggestedStrategies, nil
}

// AnonymizeFile loads a dataset file, validates and applies the given plan
// (column name to strategy spec), writes the anonymized output and its
// report under outputDir, and returns the report. A single invalid
// strategy spec fails the whole call with nothing written.
func AnonymizeFile(path string, strategies map[string]string, outputDir string) (*core.Report, error) {
	return AnonymizeFileWithRules(path, strategies, outputDir, core.LoadConfig(), core.DefaultRules())
}

// AnonymizeFileWithRules is AnonymizeFile with explicit configuration and
// rule tables.
func AnonymizeFileWithRules(path string, strategies map[string]string, outputDir string, cfg core.Config, rules *core.Rules) (*core.Report, error) {
	plan, err := core.ParsePlan(strategies)
	if err != nil {
		return nil, fmt.Errorf("invalid anonymization plan: %w", err)
	}

	ds, err := fileio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	classifier := core.NewClassifier(rules, core.NewPatternRegistry())
	analysis := classifier.AnalyzeDataset(ds, cfg.MaxSampleRows)

	engine := core.NewEngine(cfg.Salt)
	anonymized := engine.Anonymize(ds, plan)

	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	outPath := filepath.Join(outputDir, strings.TrimSuffix(filename, ext)+"_anon"+ext)
	actualPath, err := fileio.Save(anonymized, outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
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
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return report, nil
}

// Anonymize applies a plan to an in-memory dataset without touching the
// filesystem. The salt feeds the hash and pseudonym strategies.
func Anonymize(ds *core.Dataset, strategies map[string]string, salt string) (*core.Dataset, error) {
	plan, err := core.ParsePlan(strategies)
	if err != nil {
		return nil, fmt.Errorf("invalid anonymization plan: %w", err)
	}
	return core.NewEngine(salt).Anonymize(ds, plan), nil
}
