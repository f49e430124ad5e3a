package variant

import (
	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// zeroWidthSimilarity: injected characters have no glyph at all, so the
// variant is indistinguishable from the original by eye.
const zeroWidthSimilarity = 1.0

// ZeroWidthStrategy injects invisible code points into the local part
type ZeroWidthStrategy struct{}

// NewZeroWidthStrategy creates a new zero-width injection strategy
func NewZeroWidthStrategy() *ZeroWidthStrategy {
	return &ZeroWidthStrategy{}
}

// Technique returns the technique tag
func (s *ZeroWidthStrategy) Technique() domain.Technique {
	return domain.TechniqueZeroWidth
}

// Generate emits one variant per (insertion position, zero-width character)
// pair. Insertion happens before each existing character of the local part;
// the slot after the last character is not enumerated.
func (s *ZeroWidthStrategy) Generate(username, domainPart string, seen SeenSet) []domain.EmailVariant {
	original := username + "@" + domainPart
	runes := []rune(username)

	var variants []domain.EmailVariant
	for i := range runes {
		for _, zw := range zeroWidthChars {
			email := insertRuneAt(runes, i, zw) + "@" + domainPart
			if !seen.Add(email) {
				continue
			}
			variants = append(variants, domain.EmailVariant{
				Original:         original,
				Variant:          email,
				Technique:        domain.TechniqueZeroWidth,
				UnicodePoints:    []rune{zw},
				VisualSimilarity: zeroWidthSimilarity,
			})
		}
	}
	return variants
}
