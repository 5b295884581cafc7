package gate

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderNonce    = "x-nonce"
	HeaderPathname = "x-pathname"
)

// Mode selects how permissive the content security policy is.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode maps an environment name to a Mode. Anything that is not a
// production name is treated as development.
func ParseMode(env string) Mode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return ModeProduction
	default:
		return ModeDevelopment
	}
}

// Origins are the third-party sources the site pages load from.
type Origins struct {
	Storage   string   // hosted database/storage origin (images, API calls)
	FontStyle []string // stylesheet origins of the fonts CDN
	Font      []string // font file origins of the fonts CDN
	Payment   []string // payment processor script and iframe origins
}

// DefaultOrigins returns the fonts CDN and payment processor defaults.
func DefaultOrigins() Origins {
	return Origins{
		FontStyle: []string{"https://fonts.googleapis.com"},
		Font:      []string{"https://fonts.gstatic.com"},
		Payment:   []string{"https://js.stripe.com", "https://hooks.stripe.com"},
	}
}

// CSPBuilder renders the content security policy for one request.
type CSPBuilder struct {
	mode    Mode
	origins Origins
}

func NewCSPBuilder(mode Mode, origins Origins) *CSPBuilder {
	return &CSPBuilder{mode: mode, origins: origins}
}

func (b *CSPBuilder) Mode() Mode {
	return b.mode
}

// Build returns the policy allowing inline scripts that carry nonce.
// 'unsafe-inline' is kept as a fallback for browsers without nonce
// support; browsers that understand nonces ignore it.
func (b *CSPBuilder) Build(nonce string) string {
	script := []string{"'self'", fmt.Sprintf("'nonce-%s'", nonce), "'strict-dynamic'", "'unsafe-inline'"}
	if b.mode != ModeProduction {
		script = append(script, "'unsafe-eval'")
	}
	script = append(script, b.origins.Payment...)

	directives := []string{
		"default-src 'self'",
		directive("script-src", script...),
		directive("style-src", append([]string{"'self'", "'unsafe-inline'"}, b.origins.FontStyle...)...),
		directive("img-src", withOrigin([]string{"'self'", "blob:", "data:"}, b.origins.Storage)...),
		directive("font-src", append([]string{"'self'"}, b.origins.Font...)...),
		directive("connect-src", withOrigin([]string{"'self'"}, b.origins.Storage)...),
		directive("frame-src", append([]string{"'self'"}, b.origins.Payment...)...),
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}
	if b.mode == ModeProduction {
		directives = append(directives, "upgrade-insecure-requests")
	}
	return strings.Join(directives, "; ")
}

func directive(name string, sources ...string) string {
	return name + " " + strings.Join(sources, " ")
}

func withOrigin(base []string, origin string) []string {
	if origin == "" {
		return base
	}
	return append(base, origin)
}

// securityHeaders are attached to every response regardless of route class
// or authorization outcome.
var securityHeaders = [][2]string{
	{"X-DNS-Prefetch-Control", "on"},
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload"},
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-XSS-Protection", "1; mode=block"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
}

// ApplySecurityHeaders sets the policy and the fixed header set on h.
func ApplySecurityHeaders(h http.Header, policy string) {
	h.Set("Content-Security-Policy", policy)
	for _, kv := range securityHeaders {
		h.Set(kv[0], kv[1])
	}
}

// NewNonce returns a fresh base64 nonce drawn from crypto/rand.
func NewNonce() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString([]byte(u.String())), nil
}
