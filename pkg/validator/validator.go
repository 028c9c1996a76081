package validator

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by errors.Is on every non-empty Errors value.
var ErrValidation = errors.New("validator: validation failed")

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// Errors maps a field name to its failure messages in rule order.
type Errors map[string][]string

// Error implements error.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	parts := make([]string, 0, len(e))
	for _, f := range fields {
		parts = append(parts, strings.Join(e[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true.
func (e Errors) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether field failed any rule.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message of field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Err returns e as an error, or nil when there are no failures.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) add(field, rule string, messages map[string]string) {
	msg, ok := messages[field+"."+rule]
	if !ok {
		msg = fmt.Sprintf("%s validation failed for %s", field, rule)
	}
	e[field] = append(e[field], msg)
}

// Make checks data against pipe-separated rules per field and returns the
// failures. Custom messages are keyed "field.rule". Unknown rules pass.
//
// Supported rules: required, email, string, numeric, min:n and max:n. min
// and max compare the length in characters of the value's text form.
//
// Example:
//
//	errs := validator.Make(input, map[string]string{
//	    "name":  "required|string|max:50",
//	    "email": "required|email",
//	}, map[string]string{
//	    "email.email": "Please enter a valid email address",
//	})
//	if errs.Has("email") { ... }
func Make(data map[string]any, rules, messages map[string]string) Errors {
	errs := make(Errors)
	for field, ruleString := range rules {
		value := data[field]
		for _, rule := range strings.Split(ruleString, "|") {
			name, param, _ := strings.Cut(strings.TrimSpace(rule), ":")
			if name == "" {
				continue
			}
			if !check(name, param, value) {
				errs.add(field, name, messages)
			}
		}
	}
	return errs
}

func check(rule, param string, value any) bool {
	switch rule {
	case "required":
		return required(value)
	case "email":
		s, ok := value.(string)
		return ok && validate.Var(s, "email") == nil
	case "string":
		_, ok := value.(string)
		return ok
	case "numeric":
		return numeric(value)
	case "min", "max":
		n, err := strconv.Atoi(param)
		if err != nil {
			n = 0
		}
		return validate.Var(text(value), rule+"="+strconv.Itoa(n)) == nil
	}
	return true
}

// required rejects nil, empty strings, zero numbers, false and empty
// collections. The string "0" is accepted.
func required(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return s != ""
	}
	return validate.Var(value, "required") == nil
}

func numeric(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		return validate.Var(strings.TrimSpace(v), "required,numeric") == nil
	}
	return false
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(value)
}

// Struct validates v using its `validate` tags. Field names come from the
// json tag when present.
//
// Example:
//
//	type createUser struct {
//	    Name  string `json:"name" validate:"required,max=50"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//	if err := validator.Struct(req); err != nil {
//	    return c.JSON(422, err)
//	}
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make(Errors, len(verrs))
	for _, fe := range verrs {
		errs.add(fe.Field(), fe.Tag(), nil)
	}
	return errs
}
