package artifactory

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound matches any APIError carrying a 404 status.
	ErrNotFound = errors.New("not found")
	// ErrNoArtifact is returned when a resolution query yields no artifact.
	ErrNoArtifact = fmt.Errorf("no artifact found: %w", ErrNotFound)
)

// APIError reports a response outside the 2xx range.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s %d", e.Method, e.URL, e.StatusCode)
	if snippet := readBodySnippet(e.Body); snippet != "" {
		msg += " " + snippet
	}
	return msg
}

// Is reports 404 responses as ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
