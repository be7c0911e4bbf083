package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rtfactory/rtfactory/internal/config"
	"github.com/rtfactory/rtfactory/internal/journal"
	"github.com/rtfactory/rtfactory/internal/logger"
	"github.com/rtfactory/rtfactory/pkg/artifactory"
	"github.com/rtfactory/rtfactory/pkg/publishers"
)

// Runtime bundles the authenticated client with the provisioner built around it.
type Runtime struct {
	Client      *artifactory.Client
	Provisioner *Provisioner

	store  journal.Store
	fanout *publishers.Fanout
}

// NewClient builds an Artifactory client from cfg with the configured API key applied.
func NewClient(cfg *config.Config, log logger.Logger) *artifactory.Client {
	client := artifactory.New(cfg.ClientConfig(), artifactory.WithLogger(log))
	if cfg.APIKey != "" {
		client.SetAPIKey(cfg.APIKey)
	}
	return client
}

// NewRuntime builds the client, journal and event publishers described by cfg.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := NewClient(cfg, log)
	log.InfoObj("artifactory client ready", "client_meta", map[string]any{
		"base_url":      client.BaseURL(),
		"authenticated": cfg.APIKey != "",
	})

	store, err := journal.NewStore(cfg.JournalType, cfg.JournalPath, journal.Options{TTL: cfg.JournalTTL})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":        cfg.JournalType,
		"path":        cfg.JournalPath,
		"ttl_seconds": int(cfg.JournalTTL.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	prov, err := NewProvisioner(client, store, fanout, log)
	if err != nil {
		store.Close()
		fanout.Close()
		return nil, err
	}

	return &Runtime{Client: client, Provisioner: prov, store: store, fanout: fanout}, nil
}

// Close releases the journal and publisher clients.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	if r.fanout != nil {
		errs = append(errs, r.fanout.Close())
	}
	return errors.Join(errs...)
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	fanout := publishers.NewFanout(pubs)
	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      fanout.Size(),
		"publishers": summaries,
	})
	return fanout, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
