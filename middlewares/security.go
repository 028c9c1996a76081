package middlewares

import "github.com/datahihi1/craft-mini/internal"

// DefaultContentSecurityPolicy allows same-origin resources and inline
// scripts and styles.
const DefaultContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'"

// SecurityHeadersConfig lists the response headers set by SecurityHeaders.
// Empty values are not sent.
type SecurityHeadersConfig struct {
	ContentTypeOptions    string
	FrameOptions          string
	XSSProtection         string
	ReferrerPolicy        string
	ContentSecurityPolicy string
	StrictTransport       string
}

// SecurityHeadersOption configures SecurityHeadersConfig.
type SecurityHeadersOption func(*SecurityHeadersConfig)

// WithContentSecurityPolicy sends policy as Content-Security-Policy.
func WithContentSecurityPolicy(policy string) SecurityHeadersOption {
	return func(cfg *SecurityHeadersConfig) {
		cfg.ContentSecurityPolicy = policy
	}
}

// WithFrameOptions overrides X-Frame-Options. Default: DENY.
func WithFrameOptions(v string) SecurityHeadersOption {
	return func(cfg *SecurityHeadersConfig) {
		cfg.FrameOptions = v
	}
}

// WithReferrerPolicy overrides Referrer-Policy.
func WithReferrerPolicy(v string) SecurityHeadersOption {
	return func(cfg *SecurityHeadersConfig) {
		cfg.ReferrerPolicy = v
	}
}

// WithStrictTransportSecurity sends Strict-Transport-Security. Only enable
// behind HTTPS.
func WithStrictTransportSecurity(v string) SecurityHeadersOption {
	return func(cfg *SecurityHeadersConfig) {
		cfg.StrictTransport = v
	}
}

// SecurityHeaders sets hardening headers on every response before the rest
// of the chain runs, so handlers may still override them.
//
// Example:
//
//	opts := []middlewares.SecurityHeadersOption{}
//	if cfg.IsProduction() {
//	    opts = append(opts, middlewares.WithContentSecurityPolicy(middlewares.DefaultContentSecurityPolicy))
//	}
//	craft.WithMiddleware(middlewares.SecurityHeaders(opts...))
func SecurityHeaders(opts ...SecurityHeadersOption) internal.Middleware {
	cfg := &SecurityHeadersConfig{
		ContentTypeOptions: "nosniff",
		FrameOptions:       "DENY",
		XSSProtection:      "1; mode=block",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	headers := [][2]string{
		{"X-Content-Type-Options", cfg.ContentTypeOptions},
		{"X-Frame-Options", cfg.FrameOptions},
		{"X-XSS-Protection", cfg.XSSProtection},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Content-Security-Policy", cfg.ContentSecurityPolicy},
		{"Strict-Transport-Security", cfg.StrictTransport},
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			for _, h := range headers {
				if h[1] != "" {
					c.SetHeader(h[0], h[1])
				}
			}
			return next(c)
		}
	}
}
