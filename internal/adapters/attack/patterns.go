package attack

import "regexp"

// Response classification is plain regex matching against the lowercased
// body. Patterns are tuned for common password-reset flows.
var successPatterns = []*regexp.Regexp{
	regexp.MustCompile(`email.*sent`),
	regexp.MustCompile(`check.*email`),
	regexp.MustCompile(`reset.*link`),
	regexp.MustCompile(`password.*reset`),
	regexp.MustCompile(`verification.*email`),
	regexp.MustCompile(`recovery.*email`),
}

var failurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`user.*not.*found`),
	regexp.MustCompile(`email.*not.*found`),
	regexp.MustCompile(`invalid.*email`),
	regexp.MustCompile(`account.*not.*exist`),
}

// userAgents rotate per request when random-agent mode is on
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
}
