package middlewares

import (
	"net/http"
	"strings"

	"github.com/datahihi1/craft-mini/internal"
)

// MethodOverrideHeader is checked before the "_method" form field.
const MethodOverrideHeader = "X-HTTP-Method-Override"

// MethodOverride rewrites POST requests to PUT or DELETE when the
// X-HTTP-Method-Override header or the "_method" form field says so. The
// value is case-insensitive; anything else is ignored.
//
// The router applies the "_method" field on its own. This middleware makes
// the effective method visible to earlier HTTP-level code and adds the
// header form, so it must run before anything reads the request input.
func MethodOverride() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			r := c.Request()
			if r.Method != http.MethodPost {
				return next(c)
			}

			m := r.Header.Get(MethodOverrideHeader)
			if m == "" && isForm(r) {
				m = r.PostFormValue("_method")
			}

			switch m = strings.ToUpper(m); m {
			case http.MethodPut, http.MethodDelete:
				r.Method = m
			}
			return next(c)
		}
	}
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}
