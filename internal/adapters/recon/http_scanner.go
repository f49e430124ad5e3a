package recon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// commonEndpoints are the password-reset paths probed on every target
var commonEndpoints = []string{
	"/forgot-password",
	"/password/reset",
	"/auth/forgot",
	"/account/password/reset",
	"/reset-password",
	"/user/password-reset",
	"/password_reset",
	"/resetpassword",
	"/forgot_password",
	"/recover-password",
	"/password/recover",
	"/api/auth/forgot-password",
	"/api/password/reset",
}

// oauthEndpoints are the OAuth authorization paths probed on every target
var oauthEndpoints = []string{
	"/oauth/authorize",
	"/oauth2/authorize",
	"/auth/oauth",
	"/api/oauth",
	"/login/oauth",
	"/oauth/callback",
	"/auth/callback",
}

// oauthKeywords identify third-party login links on the landing page
var oauthKeywords = []string{
	"google", "facebook", "github", "linkedin", "twitter", "microsoft", "apple",
}

// securityHeaderNames are the response headers whose presence we record
var securityHeaderNames = []string{
	"X-Frame-Options",
	"X-Content-Type-Options",
	"Strict-Transport-Security",
	"Content-Security-Policy",
	"X-XSS-Protection",
}

const probeConcurrency = 10

// HTTPScanner implements ports.Scanner with plain fan-out HTTP probing.
// No retries or backoff: a probe either answers within its timeout or the
// endpoint is treated as absent.
type HTTPScanner struct {
	target string
	domain string
	log    *zap.SugaredLogger

	// probeClient never follows redirects so that 301/302 still count as
	// endpoint hits; pageClient follows them to land on the real page.
	probeClient *http.Client
	pageClient  *http.Client
}

// NewHTTPScanner creates a scanner for the given normalized target URL
func NewHTTPScanner(target, proxy string, timeout time.Duration, log *zap.SugaredLogger) (*HTTPScanner, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &HTTPScanner{
		target: strings.TrimRight(target, "/"),
		domain: parsed.Host,
		log:    log,
		probeClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		pageClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}, nil
}

// Scan runs the full reconnaissance pass. Individual section failures are
// logged and leave that section empty; only a cancelled context aborts the
// scan as a whole.
func (s *HTTPScanner) Scan(ctx context.Context) (*domain.ScanReport, error) {
	s.log.Infow("starting reconnaissance", "target", s.target)

	report := &domain.ScanReport{
		Target:         s.target,
		Domain:         s.domain,
		OAuthProviders: make(map[string][]string),
		SecurityHeaders: map[string]bool{
			"X-Frame-Options":           false,
			"X-Content-Type-Options":    false,
			"Strict-Transport-Security": false,
			"Content-Security-Policy":   false,
			"X-XSS-Protection":          false,
		},
		Technology: domain.TechnologyStack{
			Server:    "Unknown",
			Framework: "Unknown",
			CMS:       "Unknown",
		},
	}

	var err error
	report.ForgotPasswordEndpoints, err = s.probeEndpoints(ctx, commonEndpoints)
	if err != nil {
		return nil, err
	}
	s.log.Infow("password reset endpoints discovered",
		"count", len(report.ForgotPasswordEndpoints))

	oauthHits, err := s.probeEndpoints(ctx, oauthEndpoints)
	if err != nil {
		return nil, err
	}
	if len(oauthHits) > 0 {
		report.OAuthProviders["oauth_endpoints"] = oauthHits
	}

	// Everything below needs the landing page; a fetch failure leaves the
	// remaining sections at their zero values.
	headers, body, fetchErr := s.fetchPage(ctx, s.target)
	if fetchErr != nil {
		s.log.Debugw("landing page fetch failed", "error", fetchErr)
		return report, nil
	}

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(body))
	if docErr != nil {
		s.log.Debugw("landing page parse failed", "error", docErr)
	} else {
		s.scrapeOAuthLinks(doc, report)
		report.Forms = scrapeForms(doc)
		s.log.Infow("forms discovered", "count", len(report.Forms))
	}

	s.fingerprint(headers, body, report)
	for _, name := range securityHeaderNames {
		report.SecurityHeaders[name] = headers.Get(name) != ""
	}

	s.log.Infow("reconnaissance complete",
		"endpoints", len(report.ForgotPasswordEndpoints),
		"oauth_providers", len(report.OAuthProviders))
	return report, nil
}

// probeEndpoints checks each path concurrently and returns the ones that
// answered 200/301/302, preserving the probe-list order.
func (s *HTTPScanner) probeEndpoints(ctx context.Context, paths []string) ([]string, error) {
	hits := make([]bool, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			exists, err := s.probe(ctx, s.target+path)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Debugw("probe failed", "path", path, "error", err)
				return nil
			}
			hits[i] = exists
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var discovered []string
	for i, hit := range hits {
		if hit {
			discovered = append(discovered, s.target+paths[i])
		}
	}
	return discovered, nil
}

func (s *HTTPScanner) probe(ctx context.Context, target string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, err
	}

	resp, err := s.probeClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusMovedPermanently, http.StatusFound:
		return true, nil
	}
	return false, nil
}

func (s *HTTPScanner) fetchPage(ctx context.Context, target string) (http.Header, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.pageClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return resp.Header, string(body), nil
}

// scrapeOAuthLinks collects anchors whose href mentions a known provider
func (s *HTTPScanner) scrapeOAuthLinks(doc *goquery.Document, report *domain.ScanReport) {
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		lower := strings.ToLower(href)
		for _, keyword := range oauthKeywords {
			if strings.Contains(lower, keyword) {
				report.OAuthProviders[keyword] = append(report.OAuthProviders[keyword], href)
			}
		}
	})
}

// scrapeForms extracts every form with its input fields
func scrapeForms(doc *goquery.Document) []domain.FormInfo {
	var forms []domain.FormInfo
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		info := domain.FormInfo{
			Action: form.AttrOr("action", ""),
			Method: strings.ToUpper(form.AttrOr("method", "get")),
		}
		form.Find("input").Each(func(_ int, input *goquery.Selection) {
			info.Inputs = append(info.Inputs, domain.FormInput{
				Name: input.AttrOr("name", ""),
				Type: input.AttrOr("type", "text"),
			})
		})
		forms = append(forms, info)
	})
	return forms
}

// fingerprint fills in the best-effort technology stack from response
// headers and page markers
func (s *HTTPScanner) fingerprint(headers http.Header, body string, report *domain.ScanReport) {
	if server := headers.Get("Server"); server != "" {
		report.Technology.Server = server
	}
	if powered := headers.Get("X-Powered-By"); powered != "" {
		report.Technology.Framework = powered
	}

	switch {
	case strings.Contains(body, "wp-content"):
		report.Technology.CMS = "WordPress"
	case strings.Contains(body, "Joomla"):
		report.Technology.CMS = "Joomla"
	case strings.Contains(body, "Drupal"):
		report.Technology.CMS = "Drupal"
	}
}
