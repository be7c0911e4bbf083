package artifactory

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// recordedRequest captures what the stub server received.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// stubServer routes "METHOD path" (path relative to the API root) to handlers
// and records every request. Unknown routes answer 404.
type stubServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	s := &stubServer{routes: make(map[string]http.HandlerFunc)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stubServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/api/")

	s.mu.Lock()
	s.requests = append(s.requests, recordedRequest{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	h := s.routes[r.Method+" "+path]
	s.mu.Unlock()

	if h == nil {
		http.NotFound(w, r)
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

func (s *stubServer) handle(route string, h http.HandlerFunc) {
	s.mu.Lock()
	s.routes[route] = h
	s.mu.Unlock()
}

func (s *stubServer) reply(route string, status int, body string) {
	s.handle(route, jsonReply(status, body))
}

func (s *stubServer) baseURL() string { return s.srv.URL + "/api/" }

func (s *stubServer) client(opts ...Option) *Client {
	return New(Config{BaseURL: s.baseURL(), APIKey: "secret", EmailDomain: "example.org"}, opts...)
}

// calls returns the recorded requests with the given method.
func (s *stubServer) calls(method string) []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []recordedRequest
	for _, r := range s.requests {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func (s *stubServer) writeCount() int {
	return len(s.calls(http.MethodPut)) + len(s.calls(http.MethodPost))
}

func jsonReply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func decodeBody(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return out
}

func stringsOf(t *testing.T, v any) []string {
	t.Helper()
	items, ok := v.([]any)
	if !ok {
		t.Fatalf("expected list, got %#v", v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.(string))
	}
	return out
}

// recordingLogger keeps warning messages.
type recordingLogger struct {
	noopLogger
	mu       sync.Mutex
	warnings []string
}

func (r *recordingLogger) WarnObj(msg, _ string, _ interface{}) {
	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.mu.Unlock()
}
