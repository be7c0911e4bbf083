package artifactory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rtfactory/rtfactory/pkg/httpclient"
)

// getJSON fetches path relative to the base URL and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.getJSONFromURL(ctx, c.endpoint(path), out)
}

// getJSONFromURL fetches an absolute URL and decodes the body into out.
func (c *Client) getJSONFromURL(ctx context.Context, fullURL string, out any) error {
	resp, err := c.http.Get(ctx, fullURL, c.headers(nil))
	if err != nil {
		return fmt.Errorf("GET %s: %w", fullURL, err)
	}
	if !isSuccess(resp.StatusCode()) {
		return &APIError{Method: http.MethodGet, URL: fullURL, StatusCode: resp.StatusCode()}
	}
	if out == nil {
		return nil
	}
	if err := decodeJSON(resp.Body(), out); err != nil {
		return fmt.Errorf("decode GET %s: %w", fullURL, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) error {
	_, err := c.send(ctx, http.MethodPost, path, body, nil)
	return err
}

func (c *Client) putJSON(ctx context.Context, path string, body any) error {
	_, err := c.send(ctx, http.MethodPut, path, body, nil)
	return err
}

// putFile streams the file at filePath as the body of a PUT.
func (c *Client) putFile(ctx context.Context, path, filePath string, extra map[string]string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	_, err = c.send(ctx, http.MethodPut, path, f, extra)
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body any, extra map[string]string) (httpclient.Response, error) {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:  method,
		URL:     c.endpoint(path),
		Headers: c.headers(extra),
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, &APIError{Method: method, URL: path, StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	return resp, nil
}

// presence is the outcome of an existence probe.
type presence int

const (
	absent presence = iota
	present
)

// lookup is a typed fetch result: only a 404 counts as absence.
// Transport failures and other statuses are returned as errors.
type lookup struct {
	state presence
	doc   Document
}

func (c *Client) lookup(ctx context.Context, path string) (lookup, error) {
	var doc Document
	err := c.getJSON(ctx, path, &doc)
	switch {
	case err == nil:
		if doc == nil {
			doc = Document{}
		}
		return lookup{state: present, doc: doc}, nil
	case errors.Is(err, ErrNotFound):
		return lookup{state: absent}, nil
	default:
		return lookup{}, err
	}
}

// decodeJSON keeps numbers as json.Number so documents round-trip without precision loss.
func decodeJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}
