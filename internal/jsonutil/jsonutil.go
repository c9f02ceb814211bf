// Package jsonutil encodes tool results and CLI output as JSON text.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Encode renders v as JSON. HTML characters are left unescaped so titles and
// URLs read naturally; pretty selects two-space indentation.
func Encode(v interface{}, pretty bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Reformat re-renders a JSON document compactly or indented, keeping key
// order. Input that is not JSON is returned unchanged.
func Reformat(value string, pretty bool) string {
	trimmed := strings.TrimSpace(value)
	if !json.Valid([]byte(trimmed)) {
		return value
	}

	var buf bytes.Buffer
	var err error
	if pretty {
		err = json.Indent(&buf, []byte(trimmed), "", "  ")
	} else {
		err = json.Compact(&buf, []byte(trimmed))
	}
	if err != nil {
		return value
	}
	return buf.String()
}
