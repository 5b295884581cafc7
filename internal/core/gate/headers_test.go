package gate

import (
	"net/http"
	"strings"
	"testing"
)

func TestCSPBuilder_Production(t *testing.T) {
	b := NewCSPBuilder(ModeProduction, Origins{
		Storage:   "https://abc.supabase.co",
		FontStyle: []string{"https://fonts.googleapis.com"},
		Font:      []string{"https://fonts.gstatic.com"},
		Payment:   []string{"https://js.stripe.com"},
	})
	csp := b.Build("n0nce")

	for _, want := range []string{
		"default-src 'self'",
		"'nonce-n0nce'",
		"'strict-dynamic'",
		"'unsafe-inline'",
		"upgrade-insecure-requests",
		"img-src 'self' blob: data: https://abc.supabase.co",
		"connect-src 'self' https://abc.supabase.co",
		"frame-src 'self' https://js.stripe.com",
		"font-src 'self' https://fonts.gstatic.com",
		"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	} {
		if !strings.Contains(csp, want) {
			t.Errorf("production policy missing %q: %s", want, csp)
		}
	}
	if strings.Contains(csp, "unsafe-eval") {
		t.Errorf("production policy must not allow unsafe-eval: %s", csp)
	}
}

func TestCSPBuilder_Development(t *testing.T) {
	csp := NewCSPBuilder(ModeDevelopment, DefaultOrigins()).Build("abc")
	if !strings.Contains(csp, "'unsafe-eval'") {
		t.Errorf("development policy must allow unsafe-eval: %s", csp)
	}
	if strings.Contains(csp, "upgrade-insecure-requests") {
		t.Errorf("development policy must not upgrade requests: %s", csp)
	}
	if !strings.Contains(csp, "'nonce-abc'") {
		t.Errorf("development policy missing nonce: %s", csp)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"production":  ModeProduction,
		" PROD ":      ModeProduction,
		"development": ModeDevelopment,
		"staging":     ModeDevelopment,
		"":            ModeDevelopment,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewNonce_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		n, err := NewNonce()
		if err != nil {
			t.Fatalf("NewNonce: %v", err)
		}
		if n == "" {
			t.Fatalf("empty nonce")
		}
		seen[n] = struct{}{}
	}
	if len(seen) != 100 {
		t.Fatalf("expected 100 distinct nonces, got %d", len(seen))
	}
}

func TestApplySecurityHeaders(t *testing.T) {
	h := http.Header{}
	ApplySecurityHeaders(h, "default-src 'self'")

	want := map[string]string{
		"Content-Security-Policy":   "default-src 'self'",
		"X-DNS-Prefetch-Control":    "on",
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains; preload",
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
		"X-XSS-Protection":          "1; mode=block",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Permissions-Policy":        "camera=(), microphone=(), geolocation=()",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}
