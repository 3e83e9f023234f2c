package core

import "strings"

// Analysis aggregates everything the pipeline derives from a dataset
// before any transform runs: detection, per-column classification, risk
// scores and suggested handling for the flagged columns.
type Analysis struct {
	DetectedPIIColumns  []string                  `json:"detected_pii_columns"`
	Columns             map[string]Classification `json:"columns"`
	SuggestedStrategies map[string]string         `json:"suggested_strategies"`
	ColumnRisk          map[string]int            `json:"column_risk"`
	GlobalScore         int                       `json:"global_score"`
}

// AnalyzeDataset runs detection, classification, scoring and strategy
// suggestion in one pass. sampleRows caps how many values per column feed
// the content classifier; zero or negative means all rows.
func (c *Classifier) AnalyzeDataset(ds *Dataset, sampleRows int) *Analysis {
	detected := c.DetectPIIColumns(ds)
	columnRisk, global := c.ScoreDataset(ds, detected)

	columns := make(map[string]Classification, len(ds.Columns))
	for _, col := range ds.Columns {
		sample := col.Values
		if sampleRows > 0 && len(sample) > sampleRows {
			sample = sample[:sampleRows]
		}
		columns[col.Name] = c.Classify(col.Name, strings.Join(sample, " "))
	}

	suggested := make(map[string]string)
	for _, name := range detected {
		if spec := c.SuggestStrategy(name); spec != "" {
			suggested[name] = spec
		}
	}

	return &Analysis{
		DetectedPIIColumns:  detected,
		Columns:             columns,
		SuggestedStrategies: suggested,
		ColumnRisk:          columnRisk,
		GlobalScore:         global,
	}
}
