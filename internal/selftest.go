package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// SmokeStatus is the verdict for one exercised route.
type SmokeStatus string

const (
	SmokePass SmokeStatus = "PASS"
	SmokeFail SmokeStatus = "FAIL"
)

const (
	defaultSmokeValue  = "1"
	smokeHost          = "localhost"
	smokeRemoteAddr    = "127.0.0.1:0"
	defaultOutputLimit = 200
)

// SmokeResult is the outcome of requesting one route.
type SmokeResult struct {
	Method string      `json:"method"`
	Label  string      `json:"label"`
	Route  string      `json:"route"`
	Path   string      `json:"path"`
	Output string      `json:"output"`
	Result SmokeStatus `json:"result"`
	Status int         `json:"status"`
}

// Report collects smoke test results in route order.
type Report struct {
	Value   string        `json:"value"`
	Results []SmokeResult `json:"results"`
}

// Passed returns the number of passing routes.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Result == SmokePass {
			n++
		}
	}
	return n
}

// Failed returns the number of failing routes.
func (r Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// OK reports whether every route passed.
func (r Report) OK() bool {
	return r.Failed() == 0
}

// WriteTable renders the report as a text table.
func (r Report) WriteTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Method", "Path", "Status", "Result", "Output"})
	table.SetAutoWrapText(false)
	for _, res := range r.Results {
		table.Append([]string{res.Label, res.Path, strconv.Itoa(res.Status), string(res.Result), res.Output})
	}
	table.SetFooter([]string{"", "", "", "PASS " + strconv.Itoa(r.Passed()), "FAIL " + strconv.Itoa(r.Failed())})
	table.Render()
	return nil
}

// JSON writes the report as indented JSON.
func (r Report) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// SmokeOption configures SmokeTest.
type SmokeOption func(*smokeConfig)

type smokeConfig struct {
	outputLimit   int
	bodyHeuristic bool
}

// WithBodyHeuristic also fails routes whose body mentions "404" or "500".
func WithBodyHeuristic() SmokeOption {
	return func(c *smokeConfig) { c.bodyHeuristic = true }
}

// WithOutputLimit truncates recorded bodies to n bytes. Default: 200.
func WithOutputLimit(n int) SmokeOption {
	return func(c *smokeConfig) {
		if n > 0 {
			c.outputLimit = n
		}
	}
}

// SmokeTest requests every registered route in-process, substituting value
// for each path parameter. Routes are visited per method (GET, POST, PUT,
// DELETE), standard routes before API routes. A route fails when it answers
// 404 or a 5xx status, or panics.
func (a *App) SmokeTest(ctx context.Context, value string, opts ...SmokeOption) Report {
	cfg := smokeConfig{outputLimit: defaultOutputLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	if value == "" {
		value = defaultSmokeValue
	}

	report := Report{Value: value}
	for _, info := range a.table.Routes() {
		if ctx.Err() != nil {
			break
		}
		report.Results = append(report.Results, a.smokeRoute(ctx, info, value, cfg))
	}
	return report
}

func (a *App) smokeRoute(ctx context.Context, info RouteInfo, value string, cfg smokeConfig) (res SmokeResult) {
	res = SmokeResult{
		Method: info.Method,
		Label:  info.Method,
		Route:  info.Path,
		Path:   placeholderRe.ReplaceAllLiteralString(info.Path, value),
	}
	if info.API {
		res.Label += " (API)"
	}

	defer func() {
		if p := recover(); p != nil {
			res.Status = http.StatusInternalServerError
			res.Result = SmokeFail
			res.Output = truncate(fmt.Sprint(p), cfg.outputLimit)
		}
	}()

	target := joinBasePath(a.basePath, placeholderRe.ReplaceAllLiteralString(info.Path, url.PathEscape(value)))
	req, err := http.NewRequestWithContext(ctx, info.Method, target, nil)
	if err != nil {
		res.Result = SmokeFail
		res.Output = truncate(err.Error(), cfg.outputLimit)
		return res
	}
	req.Host = smokeHost
	req.RemoteAddr = smokeRemoteAddr

	rec := httptest.NewRecorder()
	if info.API {
		a.serveAPIOnly(rec, req)
	} else {
		a.serveRoutes(rec, req)
	}

	body := rec.Body.String()
	res.Status = rec.Code
	res.Output = truncate(strings.TrimSpace(body), cfg.outputLimit)
	res.Result = classify(rec.Code, body, cfg.bodyHeuristic)
	return res
}

// serveAPIOnly resolves the request in the API route space only.
func (a *App) serveAPIOnly(w http.ResponseWriter, r *http.Request) {
	c := newContext(w, r, a)
	in := c.Input()
	m := a.table.matchAPI(in.Method, in.Path)
	if m.Kind != MatchAPI {
		a.writeAPI(c, http.StatusNotFound, invalidAPIRoute)
		return
	}
	a.dispatchAPI(c, m)
}

func classify(status int, body string, heuristic bool) SmokeStatus {
	if status == http.StatusNotFound || status >= http.StatusInternalServerError {
		return SmokeFail
	}
	if heuristic && (strings.Contains(body, "404") || strings.Contains(body, "500")) {
		return SmokeFail
	}
	return SmokePass
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
