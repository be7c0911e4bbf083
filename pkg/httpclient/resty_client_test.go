package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRestyClientDoSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
			t.Errorf("unexpected content type %q", got)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["name"] != "libs" {
			t.Errorf("unexpected body %v err=%v", body, err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Do(context.Background(), Request{
		Method:  http.MethodPut,
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "1"},
		Body:    map[string]string{"name": "libs"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated || string(resp.Body()) != `{"ok":true}` {
		t.Fatalf("unexpected response %d %s", resp.StatusCode(), resp.Body())
	}
}

func TestRestyClientDoStreamsReader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != "raw-bytes" {
			t.Errorf("unexpected body %q", raw)
		}
		if got := r.Header.Get("Content-Type"); got != contentTypeBinary {
			t.Errorf("unexpected content type %q", got)
		}
	}))
	defer srv.Close()

	_, err := NewRestyClient(0).Do(context.Background(), Request{
		Method: http.MethodPut,
		URL:    srv.URL,
		Body:   strings.NewReader("raw-bytes"),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestRestyClientStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "payload")
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Stream(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	body := resp.RawBody()
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode() != http.StatusOK || string(raw) != "payload" {
		t.Fatalf("unexpected stream %d %q", resp.StatusCode(), raw)
	}
}

func TestRestyClientGetNon2xxIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode())
	}
}
