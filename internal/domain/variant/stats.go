package variant

import (
	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// Stats aggregates a variant collection: totals per technique, the mean
// visual similarity, and the count of distinct code points introduced across
// the whole collection.
func Stats(variants []domain.EmailVariant) domain.VariantStats {
	stats := domain.VariantStats{
		Total:       len(variants),
		ByTechnique: make(map[domain.Technique]int),
	}

	points := make(map[rune]struct{})
	var similaritySum float64

	for _, v := range variants {
		stats.ByTechnique[v.Technique]++
		similaritySum += v.VisualSimilarity
		for _, p := range v.UnicodePoints {
			points[p] = struct{}{}
		}
	}

	if len(variants) > 0 {
		stats.AvgSimilarity = similaritySum / float64(len(variants))
	}
	stats.UniqueUnicodePoints = len(points)

	return stats
}
