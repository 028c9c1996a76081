package internal

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	errNotAFunc        = errors.New("handler is not a function")
	errVariadicHandler = errors.New("variadic handlers are not supported")
)

var (
	requestType = reflect.TypeFor[*Request]()
	contextType = reflect.TypeFor[Context]()
	errorType   = reflect.TypeFor[error]()
)

// HandlerRef references the code that serves a route.
// Implementations: RouteFunc, HandlerFunc, Func and Method.
type HandlerRef interface {
	// resolve produces the callable for a template with the given number of placeholders.
	resolve(controllers map[string]any, params int) (RouteFunc, ErrorKind, error)
	fmt.Stringer
}

func (h RouteFunc) resolve(map[string]any, int) (RouteFunc, ErrorKind, error) {
	if h == nil {
		return nil, KindInvalidHandler, errNotAFunc
	}
	return h, 0, nil
}

func (h RouteFunc) String() string { return "func(Context) (any, error)" }

func (h HandlerFunc) resolve(map[string]any, int) (RouteFunc, ErrorKind, error) {
	if h == nil {
		return nil, KindInvalidHandler, errNotAFunc
	}
	return func(c Context) (any, error) {
		return nil, h(c)
	}, 0, nil
}

func (h HandlerFunc) String() string { return "func(Context) error" }

type funcRef struct {
	fn any
}

// Func wraps a plain Go function as a route handler.
// The function takes one string per path placeholder, in template order.
// When it declares one more argument than the template has placeholders,
// that trailing argument receives the request and must be *Request or Context.
// It may return nothing, a value, an error, or a value and an error.
//
// Example:
//
//	r.Get("/hello/{name}", craft.Func(func(name string) string {
//	    return "Hello, " + name
//	}))
func Func(fn any) HandlerRef {
	switch f := fn.(type) {
	case RouteFunc:
		return f
	case func(Context) (any, error):
		return RouteFunc(f)
	case HandlerFunc:
		return f
	case func(Context) error:
		return HandlerFunc(f)
	}
	return funcRef{fn: fn}
}

func (f funcRef) resolve(_ map[string]any, params int) (RouteFunc, ErrorKind, error) {
	if f.fn == nil {
		return nil, KindInvalidHandler, errNotAFunc
	}
	call, err := adaptFunc(reflect.ValueOf(f.fn), params)
	if err != nil {
		return nil, KindInvalidHandler, err
	}
	return call, 0, nil
}

func (f funcRef) String() string {
	if f.fn == nil {
		return "<nil>"
	}
	return reflect.TypeOf(f.fn).String()
}

type methodRef struct {
	controller string
	method     string
}

// Method references a method of a controller registered with WithController.
// The controller and method are looked up when routes are compiled; a missing
// one makes the route answer 500.
//
// Example:
//
//	r.Get("/", craft.Method("home", "Index"))
func Method(controller, method string) HandlerRef {
	return methodRef{controller: controller, method: method}
}

func (m methodRef) resolve(controllers map[string]any, params int) (RouteFunc, ErrorKind, error) {
	ctrl, ok := controllers[m.controller]
	if !ok || ctrl == nil {
		return nil, KindHandlerResolution, fmt.Errorf("controller %q not found", m.controller)
	}
	fn := reflect.ValueOf(ctrl).MethodByName(m.method)
	if !fn.IsValid() {
		return nil, KindHandlerResolution, fmt.Errorf("method %s not found in controller %q", m.method, m.controller)
	}
	call, err := adaptFunc(fn, params)
	if err != nil {
		return nil, KindInvalidHandler, fmt.Errorf("%s.%s: %w", m.controller, m.method, err)
	}
	return call, 0, nil
}

func (m methodRef) String() string {
	return m.controller + "@" + m.method
}

// adaptFunc builds a RouteFunc around an arbitrary function value.
// Whether the function wants the request is decided here, once.
func adaptFunc(fn reflect.Value, params int) (RouteFunc, error) {
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, errNotAFunc
	}
	t := fn.Type()
	if t.IsVariadic() {
		return nil, errVariadicHandler
	}

	numIn := t.NumIn()
	wantsRequest := numIn > params
	if numIn > params+1 {
		return nil, fmt.Errorf("handler declares %d arguments, template provides %d parameters", numIn, params)
	}

	stringArgs := numIn
	var trailing reflect.Type
	if wantsRequest {
		stringArgs = numIn - 1
		trailing = t.In(numIn - 1)
		if trailing != requestType && trailing != contextType {
			return nil, fmt.Errorf("trailing argument must be *Request or Context, got %s", trailing)
		}
	}
	for i := range stringArgs {
		if t.In(i).Kind() != reflect.String {
			return nil, fmt.Errorf("argument %d must be a string, got %s", i, t.In(i))
		}
	}

	numOut := t.NumOut()
	switch {
	case numOut > 2:
		return nil, fmt.Errorf("handler returns %d values", numOut)
	case numOut == 2 && t.Out(1) != errorType:
		return nil, fmt.Errorf("second return value must be error, got %s", t.Out(1))
	}

	return func(c Context) (any, error) {
		values := c.Params()
		if len(values) < stringArgs {
			return nil, fmt.Errorf("handler expects %d path parameters, got %d", stringArgs, len(values))
		}

		args := make([]reflect.Value, 0, numIn)
		for i := range stringArgs {
			args = append(args, reflect.ValueOf(values[i]).Convert(t.In(i)))
		}
		if wantsRequest {
			if trailing == requestType {
				args = append(args, reflect.ValueOf(c.Input()))
			} else {
				args = append(args, reflect.ValueOf(&c).Elem())
			}
		}

		out := fn.Call(args)
		switch len(out) {
		case 0:
			return nil, nil
		case 1:
			if t.Out(0) == errorType {
				return nil, errorValue(out[0])
			}
			return resultValue(out[0]), nil
		default:
			return resultValue(out[0]), errorValue(out[1])
		}
	}, nil
}

// resultValue unwraps a reflected return value, mapping typed nils to nil.
func resultValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

func errorValue(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	err, _ := v.Interface().(error)
	return err
}
