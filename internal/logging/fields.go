package logging

import (
	"net/http"
	"sort"
	"strings"
)

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Any creates a field with any value type
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

var secretHeaders = map[string]bool{
	"x-api-key":  true,
	"x-app-code": true,
}

// RedactHeaders flattens headers for logging and masks secret-bearing values.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if secretHeaders[strings.ToLower(key)] {
			out[key] = "***"
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}

// SortedKeys returns the keys of a query or header map in order; values are
// left out so identifiers and credentials never reach the log.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
