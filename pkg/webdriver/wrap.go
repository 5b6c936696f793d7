package webdriver

import (
	"reflect"
)

// Wire keys identifying remote object references.
const (
	ElementKey       = "element-6066-11e4-a52e-4f735466cecf"
	LegacyElementKey = "ELEMENT"
	ShadowRootKey    = "shadow-6066-11e4-a52e-4f735466cecf"
)

// Handle is a value that serializes to a remote object reference.
type Handle interface {
	ID() string
	WireRef() map[string]any
}

// visitor returns a replacement for v and true, or false to descend into it.
type visitor func(v any) (any, bool)

// walk applies fn to v and recursively to the contents of maps and slices.
// The second result reports whether anything was replaced; untouched
// containers are returned as-is so handle-free values keep their type.
func walk(v any, fn visitor) (any, bool) {
	if out, ok := fn(v); ok {
		return out, true
	}
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64, uint, uint32, uint64, []byte:
		return v, false
	case map[string]any:
		var out map[string]any
		for k, x := range t {
			nx, changed := walk(x, fn)
			if changed && out == nil {
				out = make(map[string]any, len(t))
				for k2, x2 := range t {
					out[k2] = x2
				}
			}
			if out != nil {
				out[k] = nx
			}
		}
		if out == nil {
			return v, false
		}
		return out, true
	case []any:
		var out []any
		for i, x := range t {
			nx, changed := walk(x, fn)
			if changed && out == nil {
				out = make([]any, len(t))
				copy(out, t)
			}
			if out != nil {
				out[i] = nx
			}
		}
		if out == nil {
			return v, false
		}
		return out, true
	}
	return walkReflect(v, fn)
}

// walkReflect handles typed containers such as []*Element or
// map[string][]any. Changed containers are rebuilt as []any or
// map[string]any.
func walkReflect(v any, fn visitor) (any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v, false
		}
		items := make([]any, rv.Len())
		changed := false
		for i := range items {
			nx, c := walk(rv.Index(i).Interface(), fn)
			items[i] = nx
			changed = changed || c
		}
		if !changed {
			return v, false
		}
		return items, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return v, false
		}
		out := make(map[string]any, rv.Len())
		changed := false
		iter := rv.MapRange()
		for iter.Next() {
			nx, c := walk(iter.Value().Interface(), fn)
			out[iter.Key().String()] = nx
			changed = changed || c
		}
		if !changed {
			return v, false
		}
		return out, true
	}
	return v, false
}

// Wrap replaces every Handle inside v with its wire reference.
func Wrap(v any) any {
	out, _ := walk(v, func(x any) (any, bool) {
		if h, ok := x.(Handle); ok && !isNilHandle(h) {
			return h.WireRef(), true
		}
		return nil, false
	})
	return out
}

func isNilHandle(h Handle) bool {
	rv := reflect.ValueOf(h)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Unwrap replaces every wire reference inside v with a handle bound to s.
func (s *Session) Unwrap(v any) any {
	out, _ := walk(v, func(x any) (any, bool) {
		m, ok := x.(map[string]any)
		if !ok {
			return nil, false
		}
		if id, ok := m[LegacyElementKey].(string); ok && id != "" {
			return s.newElement(id), true
		}
		if id, ok := m[ElementKey].(string); ok && id != "" {
			return s.newElement(id), true
		}
		if id, ok := m[ShadowRootKey].(string); ok && id != "" {
			return s.newShadowRoot(id), true
		}
		return nil, false
	})
	return out
}
