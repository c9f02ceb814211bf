package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/oliveagle/jsonpath"
)

// object is a decoded JSON object.
type object = map[string]interface{}

// isEmpty reports whether v counts as absent: null, blank string, empty list
// or empty object. Zero and false are values.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	case object:
		return len(t) == 0
	}
	return false
}

// pick returns the first value under keys that is non-empty and converts
// cleanly; spellings that fail conversion are skipped.
func pick[T any](m object, conv func(interface{}) (T, bool), keys ...string) (T, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || isEmpty(v) {
			continue
		}
		if out, ok := conv(v); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

func str(m object, keys ...string) string {
	s, _ := pick(m, asString, keys...)
	return s
}

func strs(m object, keys ...string) []string {
	s, _ := pick(m, asStrings, keys...)
	return s
}

func integer(m object, keys ...string) *int64 {
	if n, ok := pick(m, asInt, keys...); ok {
		return &n
	}
	return nil
}

func boolean(m object, keys ...string) *bool {
	if b, ok := pick(m, asBool, keys...); ok {
		return &b
	}
	return nil
}

func asObject(v interface{}) (object, bool) {
	m, ok := v.(object)
	return m, ok
}

func asList(v interface{}) ([]interface{}, bool) {
	l, ok := v.([]interface{})
	return l, ok
}

func asString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// asStrings accepts a list of scalars or a bare scalar (wrapped).
func asStrings(v interface{}) ([]string, bool) {
	if l, ok := v.([]interface{}); ok {
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := asString(item); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out, len(out) > 0
	}
	if l, ok := v.([]string); ok {
		return l, len(l) > 0
	}
	if s, ok := asString(v); ok {
		return []string{s}, true
	}
	return nil, false
}

func asInt(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return floatToInt(f)
		}
	case float64:
		return floatToInt(t)
	case int:
		return int64(t), true
	case int64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func asBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b, true
		}
	default:
		if n, ok := asInt(v); ok {
			return n != 0, true
		}
	}
	return false, false
}

// lookup resolves a JSONPath such as "$.Result.Titles" against a decoded
// payload. Missing keys, type mismatches and malformed input all report
// false rather than failing.
func lookup(root interface{}, path string) (v interface{}, ok bool) {
	if _, isObj := root.(object); !isObj {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()

	v, err := jsonpath.JsonPathLookup(root, path)
	if err != nil || isEmpty(v) {
		return nil, false
	}
	return v, true
}

// lookupList returns the first non-empty list found at any of paths.
func lookupList(root interface{}, paths ...string) []interface{} {
	for _, path := range paths {
		v, ok := lookup(root, path)
		if !ok {
			continue
		}
		if l, ok := asList(v); ok && len(l) > 0 {
			return l
		}
	}
	return nil
}

// pickFrom is pick over a sequence of (object, key) places, used where the
// same field may live in Result or at the top level.
func pickFrom[T any](conv func(interface{}) (T, bool), places ...place) (T, bool) {
	for _, p := range places {
		if p.obj == nil {
			continue
		}
		if out, ok := pick(p.obj, conv, p.key); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

type place struct {
	obj object
	key string
}
