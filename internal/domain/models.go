package domain

import (
	"time"

	"github.com/google/uuid"
)

// Technique identifies the generation strategy that produced a variant
type Technique string

const (
	TechniqueHomograph Technique = "homograph"
	TechniqueZeroWidth Technique = "zero_width"
	TechniqueMixed     Technique = "mixed"
	TechniquePunycode  Technique = "punycode"
)

// EmailVariant is a single adversarial email string derived from a target
// address. It is a pure value: created once by a generation strategy and
// never mutated afterwards. Downstream consumers (attack executor, reporter,
// storage) treat Variant as an opaque string.
type EmailVariant struct {
	Original string `json:"original"`
	Variant  string `json:"variant"`

	Technique Technique `json:"technique"`

	// UnicodePoints holds only the code points introduced by this specific
	// transformation, in insertion order, not the code points of the whole
	// string. Used for uniqueness-of-points statistics.
	UnicodePoints []rune `json:"unicode_points"`

	// VisualSimilarity is a strategy-assigned constant in [0.0, 1.0]
	// expressing how indistinguishable the variant renders from the
	// original (1.0 = invisible to the eye).
	VisualSimilarity float64 `json:"visual_similarity"`
}

// VariantStats aggregates a variant collection for reporting
type VariantStats struct {
	Total               int               `json:"total"`
	ByTechnique         map[Technique]int `json:"by_technique"`
	AvgSimilarity       float64           `json:"avg_similarity"`
	UniqueUnicodePoints int               `json:"unique_unicode_points"`
}

// FormInput describes one input field discovered inside an HTML form
type FormInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FormInfo describes an HTML form discovered on the target
type FormInfo struct {
	Action string      `json:"action"`
	Method string      `json:"method"`
	Inputs []FormInput `json:"inputs"`
}

// TechnologyStack is a best-effort fingerprint of the target
type TechnologyStack struct {
	Server    string `json:"server"`
	Framework string `json:"framework"`
	CMS       string `json:"cms"`
}

// ScanReport holds everything reconnaissance learned about a target
type ScanReport struct {
	Target string `json:"target"`
	Domain string `json:"domain"`

	ForgotPasswordEndpoints []string            `json:"forgot_password_endpoints"`
	OAuthProviders          map[string][]string `json:"oauth_providers"`
	Forms                   []FormInfo          `json:"forms_found"`
	Technology              TechnologyStack     `json:"technology_stack"`

	// SecurityHeaders maps header name to whether the target sets it
	SecurityHeaders map[string]bool `json:"security_headers"`
}

// AttackResult records one variant submitted to one endpoint
type AttackResult struct {
	Timestamp    time.Time     `json:"timestamp"`
	TargetURL    string        `json:"target_url"`
	Variant      string        `json:"variant"`
	Technique    Technique     `json:"technique"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
	Success      bool          `json:"success"`
	Indicators   []string      `json:"indicators"`
	Error        string        `json:"error,omitempty"`
}

// TechniqueOutcome counts attack outcomes for one technique
type TechniqueOutcome struct {
	Total   int `json:"total"`
	Success int `json:"success"`
}

// AttackStats aggregates a finished attack campaign
type AttackStats struct {
	TotalAttacks     int                            `json:"total_attacks"`
	Successful       int                            `json:"successful"`
	Failed           int                            `json:"failed"`
	SuccessRate      float64                        `json:"success_rate"`
	AvgResponseTime  time.Duration                  `json:"avg_response_time"`
	TotalDuration    time.Duration                  `json:"total_duration"`
	TechniquesTested int                            `json:"techniques_tested"`
	UniqueVariants   int                            `json:"unique_variants"`
	ByTechnique      map[Technique]TechniqueOutcome `json:"by_technique"`
}

// RunResults is the aggregate outcome of one assessment run. Every field
// serializes losslessly to JSON; the reporter and the optional result store
// both consume this structure verbatim.
type RunResults struct {
	ID        uuid.UUID `json:"id"`
	Target    string    `json:"target"`
	Email     string    `json:"email"`
	StartedAt time.Time `json:"started_at"`

	Scan          *ScanReport    `json:"scan_results,omitempty"`
	Variants      []EmailVariant `json:"variants"`
	VariantStats  VariantStats   `json:"variant_stats"`
	AttackResults []AttackResult `json:"attack_results"`
	AttackStats   AttackStats    `json:"statistics"`
}
