package variant

import (
	"unicode"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// homographSimilarity: a single substituted confusable is near-identical to
// the original glyph but not guaranteed pixel-identical in every font.
const homographSimilarity = 0.95

// HomographStrategy substitutes visually-confusable code points for single
// characters of the local part, one position and one candidate at a time.
type HomographStrategy struct{}

// NewHomographStrategy creates a new homograph substitution strategy
func NewHomographStrategy() *HomographStrategy {
	return &HomographStrategy{}
}

// Technique returns the technique tag
func (s *HomographStrategy) Technique() domain.Technique {
	return domain.TechniqueHomograph
}

// Generate emits one variant per (position, candidate) pair. Characters
// whose lowercase form has no table entry are skipped, never substituted.
func (s *HomographStrategy) Generate(username, domainPart string, seen SeenSet) []domain.EmailVariant {
	original := username + "@" + domainPart
	runes := []rune(username)

	var variants []domain.EmailVariant
	for i, ch := range runes {
		candidates, ok := confusables[unicode.ToLower(ch)]
		if !ok {
			continue
		}
		for _, candidate := range candidates {
			if unicode.IsUpper(ch) {
				// An uppercase confusable is only taken when its uppercase
				// form independently exists as a table key; otherwise the
				// lowercase candidate stands in even for an uppercase
				// original.
				if upper := unicode.ToUpper(candidate); upper != candidate {
					if _, isKey := confusables[upper]; isKey {
						candidate = upper
					}
				}
			}

			email := replaceRuneAt(runes, i, candidate) + "@" + domainPart
			if !seen.Add(email) {
				continue
			}
			variants = append(variants, domain.EmailVariant{
				Original:         original,
				Variant:          email,
				Technique:        domain.TechniqueHomograph,
				UnicodePoints:    []rune{candidate},
				VisualSimilarity: homographSimilarity,
			})
		}
	}
	return variants
}
