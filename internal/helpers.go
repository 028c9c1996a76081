package internal

import "strconv"

// Scalar is the set of types path, query and input helpers convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue retrieves a typed value stored with Context.Set.
// Returns the zero value if the key is absent or holds another type.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param converts the i-th path parameter to T.
// Returns the zero value when the parameter is missing or cannot be parsed.
//
// Example:
//
//	// route "/users/{id}"
//	id := craft.Param[int](c, 0)
func Param[T Scalar](c Context, i int) T {
	v, _ := convertParam[T](c.Param(i))
	return v
}

// Query converts a query parameter to T.
func Query[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault converts a query parameter to T, returning defaultValue when
// it is empty or cannot be parsed.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// Input converts a body value (falling back to the query) to T, returning
// defaultValue when it is absent or cannot be parsed.
func Input[T Scalar](c Context, key string, defaultValue T) T {
	raw := c.Input().String(key)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

func convertParam[T Scalar](raw string) (T, bool) {
	var zero T
	var out any
	switch any(zero).(type) {
	case string:
		out = raw
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		out = v
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		out = v
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		out = v
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		out = v
	default:
		return zero, false
	}
	if t, ok := out.(T); ok {
		return t, true
	}
	return zero, false
}
