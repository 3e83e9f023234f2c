package core

// ScoreColumn maps a column's pattern hit count onto the 0-100 risk scale
// using fixed bands: no hits scores 0, 1-9 scores 30, 10-99 scores 60 and
// anything at 100 or above scores 85. The bands are deliberate steps, not
// a linear scale.
func ScoreColumn(hits int) int {
	switch {
	case hits <= 0:
		return 0
	case hits < 10:
		return 30
	case hits < 100:
		return 60
	default:
		return 85
	}
}

// GlobalScore reduces per-column scores to a single dataset score: the
// integer mean (floor) over all scored columns, or 0 when nothing was
// scored.
func GlobalScore(columnScores map[string]int) int {
	if len(columnScores) == 0 {
		return 0
	}
	sum := 0
	for _, score := range columnScores {
		sum += score
	}
	return sum / len(columnScores)
}

// ScoreDataset computes per-column risk scores for the detected columns
// and the resulting global score. Detected names missing from the dataset
// are skipped.
func (c *Classifier) ScoreDataset(ds *Dataset, detected []string) (map[string]int, int) {
	scores := make(map[string]int, len(detected))
	for _, name := range detected {
		if _, ok := ds.Column(name); !ok {
			continue
		}
		scores[name] = ScoreColumn(c.CountHits(ds, name))
	}
	return scores, GlobalScore(scores)
}
