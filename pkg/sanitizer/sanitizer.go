package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy    *bluemonday.Policy
	contentPolicy *bluemonday.Policy
	initOnce      sync.Once
)

func policies() {
	initOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()

		contentPolicy = bluemonday.NewPolicy()
		contentPolicy.AllowStandardURLs()
		contentPolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		contentPolicy.AllowAttrs("href").OnElements("a")
		contentPolicy.RequireNoFollowOnLinks(true)
	})
}

// Escape replaces HTML special characters with entities, so that the value
// renders literally inside markup.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Text removes every tag and trims surrounding whitespace.
// Entities in the result stay escaped.
func Text(s string) string {
	policies()
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// HTML keeps basic formatting tags (paragraphs, emphasis, lists, code, links)
// and drops scripts, event handlers and javascript: URLs.
func HTML(s string) string {
	policies()
	return contentPolicy.Sanitize(s)
}

// Custom applies policy. A nil policy returns s unchanged.
func Custom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}

// Input returns a copy of values with every string run through Text.
// Nested maps and slices are walked; other values are copied as is.
func Input(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = clean(v)
	}
	return out
}

func clean(v any) any {
	switch val := v.(type) {
	case string:
		return Text(val)
	case []string:
		res := make([]string, len(val))
		for i, s := range val {
			res[i] = Text(s)
		}
		return res
	case []any:
		res := make([]any, len(val))
		for i, item := range val {
			res[i] = clean(item)
		}
		return res
	case map[string]any:
		return Input(val)
	}
	return v
}
