package artifactory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
)

const downloadChunkSize = 1024

// escapePath escapes every segment of an artifact path, keeping the separators.
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func storagePath(repo, path string) string {
	return "storage/" + url.PathEscape(repo) + "/" + escapePath(path)
}

// LinkToLastModified resolves the download URL of the most recently modified artifact
// under path. It issues two dependent requests and is only as consistent as the server
// between them.
func (c *Client) LinkToLastModified(ctx context.Context, repo, path string) (string, error) {
	var search struct {
		URI string `json:"uri"`
	}
	if err := c.getJSON(ctx, storagePath(repo, path)+"?lastModified", &search); err != nil {
		return "", err
	}
	if search.URI == "" {
		return "", fmt.Errorf("last modified in %s/%s: %w", repo, path, ErrNoArtifact)
	}

	var info struct {
		DownloadURI string `json:"downloadUri"`
	}
	if err := c.getJSONFromURL(ctx, search.URI, &info); err != nil {
		return "", err
	}
	if info.DownloadURI == "" {
		return "", fmt.Errorf("file info %s has no download uri: %w", search.URI, ErrNoArtifact)
	}
	return info.DownloadURI, nil
}

// LinkToLastVersion resolves the download URL of the artifact with the highest "version"
// property under path. Anonymous callers may see fewer results than authenticated ones.
func (c *Client) LinkToLastVersion(ctx context.Context, repo, path string) (string, error) {
	var versions struct {
		Artifacts []struct {
			DownloadURI string `json:"downloadUri"`
		} `json:"artifacts"`
	}
	p := "versions/" + url.PathEscape(repo) + "/" + escapePath(path) + "?listFiles=1"
	if err := c.getJSON(ctx, p, &versions); err != nil {
		return "", err
	}
	if len(versions.Artifacts) == 0 || versions.Artifacts[0].DownloadURI == "" {
		return "", fmt.Errorf("last version in %s/%s: %w", repo, path, ErrNoArtifact)
	}
	return versions.Artifacts[0].DownloadURI, nil
}

// EncodeProperties renders props in the matrix form "k=v1,v2|k2=v3" with URL-encoded
// names and values, keys sorted.
func EncodeProperties(props map[string][]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		values := make([]string, len(props[k]))
		for i, v := range props[k] {
			values[i] = url.QueryEscape(v)
		}
		parts = append(parts, url.QueryEscape(k)+"="+strings.Join(values, ","))
	}
	return strings.Join(parts, "|")
}

// AddProperties sets props on the artifact or folder at path, recursing into folders.
func (c *Client) AddProperties(ctx context.Context, repo, path string, props map[string][]string) error {
	if len(props) == 0 {
		return errors.New("no properties to set")
	}
	p := storagePath(repo, path) + "?properties=" + EncodeProperties(props) + "&recursive=1"
	_, err := c.send(ctx, http.MethodPut, p, nil, nil)
	return err
}

// DownloadFile streams rawURL into dest, replacing any existing file, and returns the number
// of bytes written. Nothing is written when the server answers outside 2xx. The API key is
// only sent when rawURL is on the configured instance's host.
func (c *Client) DownloadFile(ctx context.Context, rawURL, dest string) (n int64, err error) {
	var headers map[string]string
	if c.ownsURL(rawURL) {
		headers = c.headers(nil)
	}
	resp, err := c.http.Stream(ctx, rawURL, headers)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !isSuccess(resp.StatusCode()) {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		return 0, &APIError{Method: http.MethodGet, URL: rawURL, StatusCode: resp.StatusCode(), Body: snippet}
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dest, cerr)
		}
	}()

	buf := make([]byte, downloadChunkSize)
	for {
		nr, rerr := body.Read(buf)
		if nr > 0 {
			nw, werr := f.Write(buf[:nr])
			n += int64(nw)
			if werr != nil {
				return n, fmt.Errorf("write %s: %w", dest, werr)
			}
		}
		if rerr == io.EOF {
			return n, nil
		}
		if rerr != nil {
			return n, fmt.Errorf("read %s: %w", rawURL, rerr)
		}
	}
}
