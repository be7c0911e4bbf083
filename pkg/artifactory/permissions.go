package artifactory

import (
	"context"
	"fmt"
	"net/url"
)

const defaultIncludesPattern = "**"

// DefaultGroupAccess is granted by AddGroupToPermission when no flags are passed.
var DefaultGroupAccess = []string{"r", "n"}

func permissionPath(name string) string {
	return "security/permissions/" + url.PathEscape(name)
}

// GetPermission returns the named permission target.
func (c *Client) GetPermission(ctx context.Context, target string) (Document, error) {
	var doc Document
	if err := c.getJSON(ctx, permissionPath(target), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreatePermission writes a fresh permission target with no repositories and no principals,
// replacing whatever was stored under that name. Empty includes means "**".
// Use EnsurePermission to keep existing repositories and principals.
func (c *Client) CreatePermission(ctx context.Context, target, includes, excludes string) error {
	return c.putJSON(ctx, permissionPath(target), newPermission(Document{}, target, includes, excludes))
}

// EnsurePermission upserts the target's name and patterns while preserving its repositories
// and principals when it already exists.
func (c *Client) EnsurePermission(ctx context.Context, target, includes, excludes string) error {
	path := permissionPath(target)
	found, err := c.lookup(ctx, path)
	if err != nil {
		return fmt.Errorf("probe permission %s: %w", target, err)
	}
	current := found.doc
	if found.state == absent {
		current = Document{}
	}
	return c.putJSON(ctx, path, newPermission(current, target, includes, excludes))
}

func newPermission(current Document, target, includes, excludes string) Document {
	if includes == "" {
		includes = defaultIncludesPattern
	}
	current["name"] = target
	current["includesPattern"] = includes
	current["excludesPattern"] = excludes
	if _, ok := current["repositories"]; !ok {
		current["repositories"] = []string{}
	}
	if _, ok := current["principals"]; !ok {
		current["principals"] = map[string]any{
			"users":  map[string]any{},
			"groups": map[string]any{},
		}
	}
	return current
}

// AddGroupToPermission grants access to group on target, replacing any earlier grant.
func (c *Client) AddGroupToPermission(ctx context.Context, target, group string, access ...string) error {
	if len(access) == 0 {
		access = DefaultGroupAccess
	}
	return c.grant(ctx, target, "groups", group, access)
}

// AddUserToPermission grants access to user on target, replacing any earlier grant.
func (c *Client) AddUserToPermission(ctx context.Context, target, user string, access ...string) error {
	if len(access) == 0 {
		access = DefaultGroupAccess
	}
	return c.grant(ctx, target, "users", user, access)
}

func (c *Client) grant(ctx context.Context, target, kind, principal string, access []string) error {
	current, err := c.GetPermission(ctx, target)
	if err != nil {
		return err
	}
	c.log.DebugObj("permission target fetched", "permission", current)

	principals := current.object("principals")
	entries, ok := principals[kind].(map[string]any)
	if !ok {
		entries = map[string]any{}
		principals[kind] = entries
	}
	entries[principal] = append([]string(nil), access...)
	return c.putJSON(ctx, permissionPath(target), current)
}

// AddRepositoryToPermission adds repo to the target's repositories if missing.
func (c *Client) AddRepositoryToPermission(ctx context.Context, target, repo string) error {
	current, err := c.GetPermission(ctx, target)
	if err != nil {
		return err
	}

	repos := current.StringList("repositories")
	if !containsString(repos, repo) {
		repos = append(repos, repo)
	}
	current["repositories"] = repos
	return c.putJSON(ctx, permissionPath(target), current)
}
