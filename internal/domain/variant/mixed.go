package variant

import (
	"unicode"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

const mixedSimilarity = 0.90

// Combinatorial bounds: the mixed strategy only touches the first three
// characters of the local part and pairs each with the first two zero-width
// characters, keeping its output quadratic-free.
const (
	mixedMaxPositions  = 3
	mixedMaxZeroWidths = 2
)

// MixedStrategy layers a homograph substitution with a trailing zero-width
// injection at the same position.
type MixedStrategy struct{}

// NewMixedStrategy creates a new mixed homograph+zero-width strategy
func NewMixedStrategy() *MixedStrategy {
	return &MixedStrategy{}
}

// Technique returns the technique tag
func (s *MixedStrategy) Technique() domain.Technique {
	return domain.TechniqueMixed
}

// Generate replaces a confusable-bearing character with its first table
// candidate followed by a zero-width character (net length +1), one variant
// per (position, zero-width choice) pair.
func (s *MixedStrategy) Generate(username, domainPart string, seen SeenSet) []domain.EmailVariant {
	original := username + "@" + domainPart
	runes := []rune(username)

	limit := len(runes)
	if limit > mixedMaxPositions {
		limit = mixedMaxPositions
	}

	var variants []domain.EmailVariant
	for i := 0; i < limit; i++ {
		candidates, ok := confusables[unicode.ToLower(runes[i])]
		if !ok {
			continue
		}
		confusable := candidates[0]

		for _, zw := range zeroWidthChars[:mixedMaxZeroWidths] {
			mutated := make([]rune, 0, len(runes)+1)
			mutated = append(mutated, runes[:i]...)
			mutated = append(mutated, confusable, zw)
			mutated = append(mutated, runes[i+1:]...)

			email := string(mutated) + "@" + domainPart
			if !seen.Add(email) {
				continue
			}
			variants = append(variants, domain.EmailVariant{
				Original:         original,
				Variant:          email,
				Technique:        domain.TechniqueMixed,
				UnicodePoints:    []rune{confusable, zw},
				VisualSimilarity: mixedSimilarity,
			})
		}
	}
	return variants
}
