package wpmirror

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
)

// Block-level dynamic noise: elements WordPress re-renders differently on
// every request even when the logical content is unchanged. Each pattern
// matches an opening tag through its closing tag, non-greedily, across
// newlines, case-insensitively.
var noisePatterns = []*regexp.Regexp{
	// ShareThis inline share buttons
	regexp.MustCompile(`(?is)<div[^>]*class=["'][^"']*sharethis[^"']*["'][^>]*>.*?</div>`),
	// Other social sharing widgets
	regexp.MustCompile(`(?is)<div[^>]*class=["'][^"']*(?:social-share|share-buttons|social-media)[^"']*["'][^>]*>.*?</div>`),
	// Ad containers
	regexp.MustCompile(`(?is)<div[^>]*class=["'][^"']*(?:adsbygoogle|advertisement|ad-container)[^"']*["'][^>]*>.*?</div>`),
	// Analytics and tracking blocks
	regexp.MustCompile(`(?is)<div[^>]*class=["'][^"']*(?:analytics|tracking|gtag)[^"']*["'][^>]*>.*?</div>`),
	// Inline scripts
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	// Block-editor wrapper divs
	regexp.MustCompile(`(?is)<div[^>]*class=["'][^"']*wp-block[^"']*["'][^>]*>.*?</div>`),
	regexp.MustCompile(`(?is)<div[^>]*id=["'][^"']*wp-block[^"']*["'][^>]*>.*?</div>`),
	// Rendered dates are display-dependent
	regexp.MustCompile(`(?is)<time[^>]*datetime=["'][^"']*["'][^>]*>.*?</time>`),
}

var (
	// Attribute values that may be generated per request.
	styleAttrPattern = regexp.MustCompile(`(?i)style=["'][^"']*["']`)
	dataAttrPattern  = regexp.MustCompile(`(?i)data-[^=]*=["'][^"']*["']`)

	// A run of 10+ digits in an id or class is almost always an
	// auto-generated dynamic identifier.
	dynamicIDPattern    = regexp.MustCompile(`(?i)id=["'][^"']*[0-9]{10,}[^"']*["']`)
	dynamicClassPattern = regexp.MustCompile(`(?i)class=["'][^"']*[0-9]{10,}[^"']*["']`)

	// Shells left behind once their dynamic content is stripped.
	emptyDivPattern  = regexp.MustCompile(`(?is)<div[^>]*>\s*</div>`)
	emptySpanPattern = regexp.MustCompile(`(?is)<span[^>]*>\s*</span>`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes raw HTML for change detection by removing
// markup that varies between requests without any change to the logical
// content. It is pure and total: empty input yields empty output.
//
// Step order matters: entity decoding must run after tag stripping
// (stripped regions may contain encoded angle brackets), and whitespace
// collapse runs last to clean up artifacts from every prior step.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := raw
	for _, re := range noisePatterns {
		s = re.ReplaceAllString(s, "")
	}

	s = styleAttrPattern.ReplaceAllString(s, "")
	s = dataAttrPattern.ReplaceAllString(s, "")
	s = dynamicIDPattern.ReplaceAllString(s, "")
	s = dynamicClassPattern.ReplaceAllString(s, "")

	s = emptyDivPattern.ReplaceAllString(s, "")
	s = emptySpanPattern.ReplaceAllString(s, "")

	s = html.UnescapeString(s)

	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fingerprint returns the SHA-256 hex digest of the normalized content,
// encoded as UTF-8. It is the change-detection key: two fetches of the
// same logical content produce equal fingerprints regardless of
// per-request markup noise.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(Normalize(raw)))
	return hex.EncodeToString(sum[:])
}
