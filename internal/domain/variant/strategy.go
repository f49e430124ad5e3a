package variant

import (
	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// Strategy generates adversarial variants of an email address using one
// transformation technique.
//
// This follows the same Strategy pattern as the detection side of the
// codebase: each technique is independently developed and tested, and the
// engine composes them in a fixed order.
//
// The seen set is owned by a single Engine.GenerateAll call and threaded
// through every strategy so that deduplication is global across techniques
// but never shared across calls. A strategy must record every variant it
// constructs in the set, even ones the engine later truncates away.
type Strategy interface {
	// Technique returns the tag stamped on every variant this strategy emits
	Technique() domain.Technique

	// Generate produces the strategy's variants for the given local part and
	// domain. Variants already present in seen are suppressed.
	Generate(username, domainPart string, seen SeenSet) []domain.EmailVariant
}

// SeenSet tracks variant strings already emitted within one generation run
type SeenSet map[string]struct{}

// NewSeenSet returns an empty deduplication set for one generation run
func NewSeenSet() SeenSet {
	return make(SeenSet)
}

// Add records v and reports whether it was not seen before
func (s SeenSet) Add(v string) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

// replaceRuneAt returns the string with the rune at index i replaced by r
func replaceRuneAt(runes []rune, i int, r rune) string {
	out := make([]rune, 0, len(runes))
	out = append(out, runes[:i]...)
	out = append(out, r)
	out = append(out, runes[i+1:]...)
	return string(out)
}

// insertRuneAt returns the string with r inserted immediately before index i
func insertRuneAt(runes []rune, i int, r rune) string {
	out := make([]rune, 0, len(runes)+1)
	out = append(out, runes[:i]...)
	out = append(out, r)
	out = append(out, runes[i:]...)
	return string(out)
}
