// Package artifactory is a thin client for the Artifactory REST API: repository management,
// security administration (users, groups, permission targets), GPG key upload, artifact
// properties and download-link resolution.
//
// Every operation maps onto one or two HTTP requests and no state is cached between calls.
package artifactory

import (
	"net/url"
	"strings"

	"github.com/rtfactory/rtfactory/pkg/httpclient"
)

const (
	// DefaultBaseURL is the API root used when Config.BaseURL is empty.
	DefaultBaseURL = "http://localhost:8080/artifactory/api/"
	// DefaultEmailDomain is appended to user names to synthesize email addresses.
	DefaultEmailDomain = "melexis.com"

	headerAPIKey     = "X-JFrog-Art-Api"
	headerPassphrase = "X-GPG-PASSPHRASE"
)

// Config carries the per-client settings. Zero values fall back to the package defaults.
type Config struct {
	BaseURL     string
	APIKey      string
	EmailDomain string
}

// Client talks to a single Artifactory instance.
// SetAPIKey must not be called concurrently with requests.
type Client struct {
	baseURL     string
	defaultKey  string
	emailDomain string
	http        httpclient.Client
	log         Logger
	auth        map[string]string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport used for every request.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		c.log = ensureLogger(log)
	}
}

// New builds a client from cfg. The client sends no credential until SetAPIKey is called.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:     normalizeBaseURL(cfg.BaseURL),
		defaultKey:  strings.TrimSpace(cfg.APIKey),
		emailDomain: strings.TrimSpace(cfg.EmailDomain),
		log:         noopLogger{},
	}
	if c.emailDomain == "" {
		c.emailDomain = DefaultEmailDomain
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(0)
	}
	return c
}

// BaseURL returns the API root every relative path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// SetAPIKey attaches key as the API key header of all subsequent requests.
// An empty key selects the key from Config.
func (c *Client) SetAPIKey(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = c.defaultKey
	}
	c.auth = map[string]string{headerAPIKey: key}
}

// headers merges the credential header with extra request headers.
func (c *Client) headers(extra map[string]string) map[string]string {
	if len(c.auth) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.auth)+len(extra))
	for k, v := range c.auth {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// ownsURL reports whether rawURL points at the host of the configured base URL.
func (c *Client) ownsURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, base.Host)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + strings.TrimPrefix(path, "/")
}

func (c *Client) email(name string) string {
	return name + "@" + c.emailDomain
}

func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw
}
