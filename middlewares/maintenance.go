package middlewares

import (
	"fmt"
	"html"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/datahihi1/craft-mini/internal"
)

// DefaultRetryAfter is sent when the end of maintenance is unknown.
const DefaultRetryAfter = time.Hour

// MaintenanceConfig configures the maintenance middleware.
type MaintenanceConfig struct {
	Start      time.Time
	End        time.Time
	Now        func() time.Time
	Page       string
	AllowedIPs []string
	SkipPaths  []string
	RetryAfter time.Duration
	Enabled    bool
}

// MaintenanceOption configures MaintenanceConfig.
type MaintenanceOption func(*MaintenanceConfig)

// WithMaintenanceWindow sets the announced start and end. After end the
// middleware lets requests through. Zero values are not announced.
func WithMaintenanceWindow(start, end time.Time) MaintenanceOption {
	return func(cfg *MaintenanceConfig) {
		cfg.Start = start
		cfg.End = end
	}
}

// WithMaintenanceAllowedIPs replaces the client IPs that bypass maintenance.
// Default: 127.0.0.1 and ::1.
func WithMaintenanceAllowedIPs(ips ...string) MaintenanceOption {
	return func(cfg *MaintenanceConfig) {
		cfg.AllowedIPs = ips
	}
}

// WithMaintenanceSkipPaths lets requests whose path starts with one of
// prefixes through, e.g. health endpoints.
func WithMaintenanceSkipPaths(prefixes ...string) MaintenanceOption {
	return func(cfg *MaintenanceConfig) {
		cfg.SkipPaths = append(cfg.SkipPaths, prefixes...)
	}
}

// WithMaintenancePage replaces the HTML body. The placeholders {start},
// {end} and {countdown} are substituted.
func WithMaintenancePage(page string) MaintenanceOption {
	return func(cfg *MaintenanceConfig) {
		cfg.Page = page
	}
}

// WithMaintenanceClock replaces time.Now.
func WithMaintenanceClock(now func() time.Time) MaintenanceOption {
	return func(cfg *MaintenanceConfig) {
		if now != nil {
			cfg.Now = now
		}
	}
}

// Maintenance answers 503 with a Retry-After header while enabled is true.
// Requests from allowed IPs and skipped paths are served normally.
//
// Example:
//
//	craft.WithMiddleware(middlewares.Maintenance(cfg.Maintenance,
//	    middlewares.WithMaintenanceSkipPaths("/health/"),
//	))
func Maintenance(enabled bool, opts ...MaintenanceOption) internal.Middleware {
	cfg := &MaintenanceConfig{
		Enabled:    enabled,
		AllowedIPs: []string{"127.0.0.1", "::1"},
		RetryAfter: DefaultRetryAfter,
		Now:        time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		if !cfg.Enabled {
			return next
		}
		return func(c internal.Context) error {
			now := cfg.Now()
			if cfg.bypass(c.Request(), now) {
				return next(c)
			}

			retry := cfg.RetryAfter
			if !cfg.End.IsZero() {
				retry = cfg.End.Sub(now)
			}
			c.SetHeader("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
			return c.HTML(http.StatusServiceUnavailable, cfg.render(now))
		}
	}
}

func (cfg *MaintenanceConfig) bypass(r *http.Request, now time.Time) bool {
	if !cfg.End.IsZero() && now.After(cfg.End) {
		return true
	}
	for _, p := range cfg.SkipPaths {
		if strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return slices.Contains(cfg.AllowedIPs, host)
}

const timeLayout = "15:04:05 02/01/2006"

func (cfg *MaintenanceConfig) render(now time.Time) string {
	var start, end, countdown string
	if !cfg.Start.IsZero() {
		start = cfg.Start.Format(timeLayout)
	}
	if !cfg.End.IsZero() {
		end = cfg.End.Format(timeLayout)
		d := cfg.End.Sub(now).Round(time.Second)
		countdown = fmt.Sprintf("%dh %dm %ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}

	if cfg.Page != "" {
		return strings.NewReplacer("{start}", start, "{end}", end, "{countdown}", countdown).Replace(cfg.Page)
	}

	var b strings.Builder
	b.WriteString("<h1>Maintenance Mode</h1>")
	if start != "" {
		b.WriteString("<p>Started: " + html.EscapeString(start) + "</p>")
	}
	if end != "" {
		b.WriteString("<p>Ends: " + html.EscapeString(end) + "</p>")
		b.WriteString("<p>Remaining: " + countdown + "</p>")
	}
	b.WriteString("<p>The site is currently under maintenance. Please check back later.</p>")
	return b.String()
}
