package catalogue

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is returned when the upstream API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	// Message is the upstream error message when the body carried one
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("upstream %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the status is worth retrying (5xx only).
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500
}

// newStatusError builds a StatusError, pulling "message" out of the upstream
// error body ({statusCode, error, message}) when present.
func newStatusError(resp *http.Response, body []byte) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		se.Message = payload.Message
		if se.Message == "" {
			se.Message = payload.Error
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		se.Message = text
	}
	return se
}
