package variant

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// ErrInvalidEmailFormat is returned when the input has no @ separator.
// Non-fatal by contract: callers surface it to the user and continue.
var ErrInvalidEmailFormat = errors.New("invalid email format: missing @ separator")

// Engine produces a bounded, deduplicated collection of adversarial email
// variants. It is stateless across calls: the deduplication set lives for
// exactly one GenerateAll call, so a single Engine is safe to share between
// goroutines.
type Engine struct {
	log *zap.SugaredLogger

	// quotaStrategies run first, each pre-truncated to maxVariants/3.
	// punycode runs last and is only subject to the final global cut;
	// domain-level variants are scarce enough that all of them are kept.
	quotaStrategies []Strategy
	punycode        Strategy
}

// NewEngine creates a variant engine with the standard four strategies in
// their fixed order: homograph, zero-width, mixed, punycode.
func NewEngine(log *zap.SugaredLogger) *Engine {
	return &Engine{
		log: log,
		quotaStrategies: []Strategy{
			NewHomographStrategy(),
			NewZeroWidthStrategy(),
			NewMixedStrategy(),
		},
		punycode: NewPunycodeStrategy(log),
	}
}

// GenerateAll generates every variant type for email, truncated to at most
// maxVariants entries in generation order. An input without an @ separator
// yields (nil, ErrInvalidEmailFormat).
func (e *Engine) GenerateAll(email string, maxVariants int) ([]domain.EmailVariant, error) {
	username, domainPart, found := strings.Cut(email, "@")
	if !found {
		e.log.Errorw("invalid email format", "email", email)
		return nil, ErrInvalidEmailFormat
	}

	e.log.Infow("generating variants", "email", email, "max_variants", maxVariants)

	// Fresh set per call: repeated calls reproduce the same variants instead
	// of accumulating suppression state.
	seen := NewSeenSet()
	perStrategy := maxVariants / 3

	var variants []domain.EmailVariant
	for _, strategy := range e.quotaStrategies {
		generated := strategy.Generate(username, domainPart, seen)
		e.log.Infow("strategy finished",
			"technique", strategy.Technique(),
			"generated", len(generated))

		if len(generated) > perStrategy {
			generated = generated[:perStrategy]
		}
		variants = append(variants, generated...)
	}

	punycodeVariants := e.punycode.Generate(username, domainPart, seen)
	e.log.Infow("strategy finished",
		"technique", e.punycode.Technique(),
		"generated", len(punycodeVariants))
	variants = append(variants, punycodeVariants...)

	if len(variants) > maxVariants {
		variants = variants[:maxVariants]
	}

	e.log.Infow("variant generation complete", "total", len(variants))
	return variants, nil
}
