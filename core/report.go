package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Report is the persisted audit record of one anonymization run: what was
// detected and scored on the pre-transform dataset, and which plan was
// applied. It is written alongside the anonymized output so the original
// file, the output and the report form one traceable unit.
type Report struct {
	OriginalFilename   string            `json:"original_filename"`
	OutputFilename     string            `json:"output_filename"`
	DetectedPIIColumns []string          `json:"detected_pii_columns"`
	ColumnRisk         map[string]int    `json:"column_risk"`
	GlobalScore        int               `json:"global_score"`
	GeneratedAt        time.Time         `json:"generated_at"`
	Plan               map[string]string `json:"plan"`
}

// ReportPath derives the report filename for a source file:
// "<stem>_report.json" inside dir.
func ReportPath(dir, originalFilename string) string {
	stem := strings.TrimSuffix(filepath.Base(originalFilename), filepath.Ext(originalFilename))
	return filepath.Join(dir, stem+"_report.json")
}

// Write persists the report as indented JSON.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// LoadReport reads a report back from disk.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}
