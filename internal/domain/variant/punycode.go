package variant

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/net/idna"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// punycodeSimilarity: an ASCII-compatible encoded domain renders as
// xn--... in most contexts, so the change is more visible than a local-part
// substitution.
const punycodeSimilarity = 0.85

// punycodeMaxPositions bounds substitution to the first characters of the
// leftmost DNS label.
const punycodeMaxPositions = 3

// PunycodeStrategy substitutes a confusable into the leftmost DNS label of
// the domain and re-encodes the whole domain to its ASCII-compatible form.
type PunycodeStrategy struct {
	log *zap.SugaredLogger
}

// NewPunycodeStrategy creates a new punycode domain strategy
func NewPunycodeStrategy(log *zap.SugaredLogger) *PunycodeStrategy {
	return &PunycodeStrategy{log: log}
}

// Technique returns the technique tag
func (s *PunycodeStrategy) Technique() domain.Technique {
	return domain.TechniquePunycode
}

// Generate emits one variant per substitutable position in the leftmost
// label. Domains with fewer than two labels produce nothing. A candidate
// domain that fails IDNA encoding is skipped, never fatal: the lookup
// profile rejects labels that violate IDNA2008 rules and that is expected
// for some confusables.
func (s *PunycodeStrategy) Generate(username, domainPart string, seen SeenSet) []domain.EmailVariant {
	labels := strings.Split(domainPart, ".")
	if len(labels) < 2 {
		return nil
	}

	original := username + "@" + domainPart
	first := []rune(labels[0])

	limit := len(first)
	if limit > punycodeMaxPositions {
		limit = punycodeMaxPositions
	}

	var variants []domain.EmailVariant
	for i := 0; i < limit; i++ {
		candidates, ok := confusables[unicode.ToLower(first[i])]
		if !ok {
			continue
		}
		confusable := candidates[0]

		mutatedLabel := replaceRuneAt(first, i, confusable)
		mutatedDomain := strings.Join(append([]string{mutatedLabel}, labels[1:]...), ".")

		encoded, err := idna.Lookup.ToASCII(mutatedDomain)
		if err != nil {
			s.log.Debugw("punycode encoding failed",
				"domain", mutatedDomain,
				"error", err)
			continue
		}

		email := username + "@" + encoded
		if !seen.Add(email) {
			continue
		}
		variants = append(variants, domain.EmailVariant{
			Original:  original,
			Variant:   email,
			Technique: domain.TechniquePunycode,
			// The pre-encoding confusable, not any byte of the encoded form
			UnicodePoints:    []rune{confusable},
			VisualSimilarity: punycodeSimilarity,
		})
	}
	return variants
}
