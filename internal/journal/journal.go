// Package journal records which provisioning entries were applied, so repeated runs can skip
// work that is still fresh.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Store tracks applied plan entries by key. An entry only counts as applied while it is
// fresh and was recorded with the same fingerprint.
type Store interface {
	Close() error
	Applied(key, fingerprint string) (bool, error)
	MarkApplied(key, fingerprint string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured journal backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

// Key builds the journal key of a plan entry.
func Key(kind, name string) string {
	return kind + "/" + name
}

// Fingerprint hashes the JSON encoding of a plan entry. Map keys encode sorted, so equal
// entries always hash the same.
func Fingerprint(entry any) (string, error) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encode entry: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                         { return nil }
func (noopStore) Applied(string, string) (bool, error) { return false, nil }
func (noopStore) MarkApplied(string, string) error     { return nil }
