package artifactory

import (
	"context"
	"fmt"
	"net/url"
)

// RepositorySummary is one entry of the repository listing.
type RepositorySummary struct {
	Key         string `json:"key"`
	Type        string `json:"type,omitempty"`
	PackageType string `json:"packageType,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

func repositoryPath(name string) string {
	return "repositories/" + url.PathEscape(name)
}

// ListRepositories returns every repository visible to the caller.
func (c *Client) ListRepositories(ctx context.Context) ([]RepositorySummary, error) {
	var repos []RepositorySummary
	if err := c.getJSON(ctx, "repositories", &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepository returns the configuration of the named repository.
func (c *Client) GetRepository(ctx context.Context, name string) (Document, error) {
	var doc Document
	if err := c.getJSON(ctx, repositoryPath(name), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateRepository creates the repository unless one with the same key already exists,
// in which case nothing is written and false is returned.
func (c *Client) CreateRepository(ctx context.Context, name string, configuration Document) (bool, error) {
	repos, err := c.ListRepositories(ctx)
	if err != nil {
		return false, fmt.Errorf("list repositories: %w", err)
	}
	for _, repo := range repos {
		if repo.Key == name {
			c.log.WarnObj("repository already exists, skipping create to avoid data loss", "repository", name)
			return false, nil
		}
	}

	if err := c.putJSON(ctx, repositoryPath(name), configuration); err != nil {
		return false, err
	}
	c.log.InfoObj("repository created", "repository", name)
	return true, nil
}

// UpdateRepository creates the repository if needed and then always posts data to it.
// A failed update does not roll back a creation.
func (c *Client) UpdateRepository(ctx context.Context, name string, data Document) error {
	if _, err := c.CreateRepository(ctx, name, data); err != nil {
		return err
	}
	return c.postJSON(ctx, repositoryPath(name), data)
}
