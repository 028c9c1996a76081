// Package requests holds the input rules of the demo handlers.
package requests

import (
	"strings"

	"github.com/datahihi1/craft-mini/pkg/sanitizer"
	"github.com/datahihi1/craft-mini/pkg/validator"
)

// CreateUserRules validate the body of POST /api/users.
var CreateUserRules = map[string]string{
	"name":     "required|string|min:2|max:100",
	"email":    "required|email|max:255",
	"password": "required|string|min:8",
}

// UpdateUserRules validate the body of PUT /api/users/{id}. Absent fields are
// not checked.
var UpdateUserRules = map[string]string{
	"name":  "string|min:2|max:100",
	"email": "email|max:255",
}

var userMessages = map[string]string{
	"name.required":     "Name is required",
	"email.required":    "Email is required",
	"email.email":       "Email must be a valid address",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 8 characters",
}

// User returns the sanitized user fields of input and their validation errors.
// The password is passed through unsanitized.
func User(input map[string]any, rules map[string]string) (map[string]any, validator.Errors) {
	data := make(map[string]any, 3)
	for _, key := range []string{"name", "email"} {
		if v, ok := input[key]; ok {
			data[key] = v
		}
	}
	data = sanitizer.Input(data)
	if v, ok := input["password"]; ok {
		data["password"] = v
	}

	active := make(map[string]string, len(rules))
	for field, rule := range rules {
		if _, ok := data[field]; ok || strings.Contains(rule, "required") {
			active[field] = rule
		}
	}
	return data, validator.Make(data, active, userMessages)
}
