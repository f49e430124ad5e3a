package attack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

func newTestExecutor(t *testing.T, baseURL string, opts ...func(*Options)) *HTTPExecutor {
	t.Helper()
	options := Options{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Threads: 2,
	}
	for _, opt := range opts {
		opt(&options)
	}
	executor, err := NewHTTPExecutor(options, zap.NewNop().Sugar())
	require.NoError(t, err)
	return executor
}

func testVariant(value string, technique domain.Technique) domain.EmailVariant {
	return domain.EmailVariant{
		Original:         "user@example.com",
		Variant:          value,
		Technique:        technique,
		UnicodePoints:    []rune{0x0430},
		VisualSimilarity: 0.95,
	}
}

func TestExecute_ClassifiesResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reset":
			w.Write([]byte("A password reset link was sent."))
		case "/fail":
			w.Write([]byte("User not found."))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	executor := newTestExecutor(t, server.URL)
	variants := []domain.EmailVariant{testVariant("us\u0435r@example.com", domain.TechniqueHomograph)}

	results, err := executor.Execute(context.Background(), variants, []string{"/reset", "/fail"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byURL := make(map[string]domain.AttackResult, len(results))
	for _, r := range results {
		byURL[r.TargetURL] = r
	}

	success := byURL[server.URL+"/reset"]
	assert.True(t, success.Success)
	assert.Equal(t, http.StatusOK, success.StatusCode)
	assert.NotEmpty(t, success.Indicators)

	failure := byURL[server.URL+"/fail"]
	assert.False(t, failure.Success)
	require.Len(t, failure.Indicators, 1)
	assert.Contains(t, failure.Indicators[0], "failure:")
}

func TestExecute_SubmitsVariantInAllFormFields(t *testing.T) {
	var (
		mu    sync.Mutex
		forms []map[string][]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		forms = append(forms, r.PostForm)
		mu.Unlock()
	}))
	defer server.Close()

	executor := newTestExecutor(t, server.URL)
	variant := testVariant("us\u0435r@example.com", domain.TechniqueHomograph)

	_, err := executor.Execute(context.Background(), []domain.EmailVariant{variant}, []string{"/reset"})
	require.NoError(t, err)

	require.Len(t, forms, 1)
	for _, field := range []string{"email", "username", "user_email"} {
		assert.Equal(t, []string{variant.Variant}, forms[0][field])
	}
}

func TestExecute_AcceptsAbsoluteEndpoints(t *testing.T) {
	var requested []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
	}))
	defer server.Close()

	// Discovered endpoints arrive as absolute URLs; they must not be glued
	// onto the base URL a second time.
	executor := newTestExecutor(t, "https://unrelated.example.com")
	variants := []domain.EmailVariant{testVariant("a@b.com", domain.TechniqueZeroWidth)}

	results, err := executor.Execute(context.Background(), variants, []string{server.URL + "/forgot-password"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, server.URL+"/forgot-password", results[0].TargetURL)
	assert.Equal(t, []string{"/forgot-password"}, requested)
}

func TestExecute_TimeoutProducesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	executor := newTestExecutor(t, server.URL, func(o *Options) {
		o.Timeout = 50 * time.Millisecond
	})
	variants := []domain.EmailVariant{testVariant("a@b.com", domain.TechniqueMixed)}

	results, err := executor.Execute(context.Background(), variants, []string{"/slow"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "timeout", results[0].Error)
	assert.Zero(t, results[0].StatusCode)
	assert.False(t, results[0].Success)
}

func TestExecute_RunsEveryVariantAgainstEveryEndpoint(t *testing.T) {
	var count int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	defer server.Close()

	executor := newTestExecutor(t, server.URL)
	variants := []domain.EmailVariant{
		testVariant("a@b.com", domain.TechniqueHomograph),
		testVariant("c@d.com", domain.TechniqueZeroWidth),
		testVariant("e@f.com", domain.TechniquePunycode),
	}

	results, err := executor.Execute(context.Background(), variants, []string{"/one", "/two"})
	require.NoError(t, err)
	assert.Len(t, results, 6)
	assert.Equal(t, 6, count)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		success    bool
		indicators int
	}{
		{
			name:       "success pattern",
			body:       "We have sent a Reset Link to your address",
			success:    true,
			indicators: 1,
		},
		{
			name:       "failure pattern",
			body:       "Error: invalid email address",
			success:    false,
			indicators: 1,
		},
		{
			name:       "success wins over failure",
			body:       "password reset requested, but user not found",
			success:    true,
			indicators: 2,
		},
		{
			name:       "no indicators",
			body:       "<html><body>Welcome</body></html>",
			success:    false,
			indicators: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			success, indicators := classify(tt.body)
			assert.Equal(t, tt.success, success)
			assert.Len(t, indicators, tt.indicators)
		})
	}
}

func TestStatistics(t *testing.T) {
	executor := newTestExecutor(t, "https://example.com")

	results := []domain.AttackResult{
		{Variant: "a", Technique: domain.TechniqueHomograph, Success: true, ResponseTime: 100 * time.Millisecond},
		{Variant: "a", Technique: domain.TechniqueHomograph, Success: false, ResponseTime: 200 * time.Millisecond},
		{Variant: "b", Technique: domain.TechniqueZeroWidth, Success: false, ResponseTime: 300 * time.Millisecond},
		{Variant: "c", Technique: domain.TechniquePunycode, Success: true, ResponseTime: 400 * time.Millisecond},
	}

	stats := executor.Statistics(results)

	assert.Equal(t, 4, stats.TotalAttacks)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 2, stats.Failed)
	assert.InDelta(t, 50.0, stats.SuccessRate, 0.001)
	assert.Equal(t, 250*time.Millisecond, stats.AvgResponseTime)
	assert.Equal(t, time.Second, stats.TotalDuration)
	assert.Equal(t, 3, stats.TechniquesTested)
	assert.Equal(t, 3, stats.UniqueVariants)

	homograph := stats.ByTechnique[domain.TechniqueHomograph]
	assert.Equal(t, 2, homograph.Total)
	assert.Equal(t, 1, homograph.Success)
}

func TestStatistics_EmptyResults(t *testing.T) {
	executor := newTestExecutor(t, "https://example.com")

	stats := executor.Statistics(nil)

	assert.Zero(t, stats.TotalAttacks)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AvgResponseTime)
}
