package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

func newTestEngine() *Engine {
	return NewEngine(zap.NewNop().Sugar())
}

func TestEngine_GenerateAll_InvalidEmail(t *testing.T) {
	engine := newTestEngine()

	variants, err := engine.GenerateAll("not-an-email", 50)

	assert.ErrorIs(t, err, ErrInvalidEmailFormat)
	assert.Empty(t, variants)
}

func TestEngine_GenerateAll_Deterministic(t *testing.T) {
	engine := newTestEngine()

	first, err := engine.GenerateAll("alice@example.com", 100)
	require.NoError(t, err)
	second, err := engine.GenerateAll("alice@example.com", 100)
	require.NoError(t, err)

	// Candidate lists are ordered slices and positions are walked in order,
	// so two runs must produce byte-identical output.
	assert.Equal(t, first, second)
}

func TestEngine_GenerateAll_GlobalUniqueness(t *testing.T) {
	engine := newTestEngine()

	variants, err := engine.GenerateAll("alice@example.com", 500)
	require.NoError(t, err)
	require.NotEmpty(t, variants)

	seen := make(map[string]bool)
	for _, v := range variants {
		assert.False(t, seen[v.Variant], "duplicate variant emitted: %q", v.Variant)
		seen[v.Variant] = true
	}
}

func TestEngine_GenerateAll_BoundRespected(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name        string
		email       string
		maxVariants int
	}{
		{"generous bound", "alice@example.com", 1000},
		{"tight bound", "alice@example.com", 10},
		{"single slot", "alice@example.com", 1},
		{"zero slots", "alice@example.com", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variants, err := engine.GenerateAll(tt.email, tt.maxVariants)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(variants), tt.maxVariants)
		})
	}
}

func TestEngine_GenerateAll_QuotaTruncation(t *testing.T) {
	engine := newTestEngine()

	// Six confusable-bearing characters in the local part, three of them
	// among the first three. Raw output per strategy far exceeds the
	// 9/3 = 3 quota, and punycode finds three substitutable characters in
	// "example".
	variants, err := engine.GenerateAll("aeiouc@example.com", 9)
	require.NoError(t, err)
	require.Len(t, variants, 9)

	counts := make(map[domain.Technique]int)
	for _, v := range variants {
		counts[v.Technique]++
	}

	// The first three strategies are each cut to the quota before
	// concatenation; punycode is appended untruncated and then lost to the
	// final global cut.
	assert.Equal(t, 3, counts[domain.TechniqueHomograph])
	assert.Equal(t, 3, counts[domain.TechniqueZeroWidth])
	assert.Equal(t, 3, counts[domain.TechniqueMixed])
	assert.Equal(t, 0, counts[domain.TechniquePunycode])

	// Generation order is preserved: homograph block first, then zero-width,
	// then mixed.
	assert.Equal(t, domain.TechniqueHomograph, variants[0].Technique)
	assert.Equal(t, domain.TechniqueZeroWidth, variants[3].Technique)
	assert.Equal(t, domain.TechniqueMixed, variants[6].Technique)
}

func TestEngine_GenerateAll_HomographExample(t *testing.T) {
	engine := newTestEngine()

	variants, err := engine.GenerateAll("a@x.com", 10)
	require.NoError(t, err)

	var found bool
	for _, v := range variants {
		if v.Variant == "\u0430@x.com" {
			found = true
			assert.Equal(t, domain.TechniqueHomograph, v.Technique)
			assert.Equal(t, []rune{0x0430}, v.UnicodePoints)
			assert.Equal(t, "a@x.com", v.Original)
		}
	}
	assert.True(t, found, "expected Cyrillic-a variant among output")
}

func TestEngine_GenerateAll_ZeroWidthRoundTrip(t *testing.T) {
	engine := newTestEngine()

	variants, err := engine.GenerateAll("ab@x.com", 100)
	require.NoError(t, err)

	expected := "\u200bab@x.com"

	var found bool
	for _, v := range variants {
		if v.Variant == expected {
			found = true
			assert.Equal(t, domain.TechniqueZeroWidth, v.Technique)
			assert.Equal(t, []rune{0x200B}, v.UnicodePoints)
		}
	}
	assert.True(t, found, "expected zero-width-space-before-position-0 variant")
}

func TestEngine_GenerateAll_NoCrossCallLeakage(t *testing.T) {
	engine := newTestEngine()

	first, err := engine.GenerateAll("alice@example.com", 100)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// A different email in between must not suppress anything on the
	// repeat call: the dedup set is scoped to one call.
	_, err = engine.GenerateAll("bob@example.com", 100)
	require.NoError(t, err)

	repeat, err := engine.GenerateAll("alice@example.com", 100)
	require.NoError(t, err)
	assert.Equal(t, first, repeat)
}

func TestEngine_GenerateAll_TechniqueOrder(t *testing.T) {
	engine := newTestEngine()

	variants, err := engine.GenerateAll("alice@example.com", 1000)
	require.NoError(t, err)

	order := map[domain.Technique]int{
		domain.TechniqueHomograph: 0,
		domain.TechniqueZeroWidth: 1,
		domain.TechniqueMixed:     2,
		domain.TechniquePunycode:  3,
	}

	last := -1
	for _, v := range variants {
		rank := order[v.Technique]
		assert.GreaterOrEqual(t, rank, last, "technique blocks out of order")
		if rank > last {
			last = rank
		}
	}
}
