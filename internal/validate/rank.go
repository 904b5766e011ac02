package validate

import "github.com/voltlab/voltscan/internal/domain"

// assignFamilyRanks computes the dense rank (1 = best, descending score)
// among scored candidates within each family. Ranking is a whole-batch step
// over the finished results; it never compares across families and never
// changes any status. Unscored candidates stay at rank zero.
func assignFamilyRanks(results []domain.ValidationResult) {
	for _, fam := range domain.Families {
		// Collect distinct scores for this family, descending.
		var scores []float64
		for i := range results {
			if results[i].Family == fam && results[i].Score.Known() {
				scores = append(scores, results[i].Score.Value())
			}
		}
		if len(scores) == 0 {
			continue
		}
		distinct := denseLevels(scores)

		for i := range results {
			if results[i].Family != fam || !results[i].Score.Known() {
				continue
			}
			for rank, level := range distinct {
				if results[i].Score.Value() == level {
					results[i].FamilyRank = rank + 1
					break
				}
			}
		}
	}
}

// denseLevels returns the distinct values in descending order.
func denseLevels(scores []float64) []float64 {
	var levels []float64
	for _, s := range scores {
		inserted := false
		for i, l := range levels {
			if s == l {
				inserted = true
				break
			}
			if s > l {
				levels = append(levels[:i], append([]float64{s}, levels[i:]...)...)
				inserted = true
				break
			}
		}
		if !inserted {
			levels = append(levels, s)
		}
	}
	return levels
}
