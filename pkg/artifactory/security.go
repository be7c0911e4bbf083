package artifactory

import (
	"context"
	"fmt"
	"net/url"
)

// PlaceholderPassword is assigned by CreateUser. It is weak and must be rotated out of band.
const PlaceholderPassword = "password"

var (
	// DefaultUserGroups are the memberships given to users created by CreateUser.
	DefaultUserGroups = []string{"users", "readers"}
	// DefaultReplaceGroups are used by CreateOrReplaceUser when no groups are passed.
	DefaultReplaceGroups = []string{"developers", "readers"}
)

func userPath(name string) string {
	return "security/users/" + url.PathEscape(name)
}

func groupPath(name string) string {
	return "security/groups/" + url.PathEscape(name)
}

// CreateOrReplaceUser writes the full user document, overwriting any existing user.
func (c *Client) CreateOrReplaceUser(ctx context.Context, name, password string, groups ...string) error {
	if len(groups) == 0 {
		groups = DefaultReplaceGroups
	}
	return c.putJSON(ctx, userPath(name), Document{
		"email":    c.email(name),
		"password": password,
		"groups":   append([]string(nil), groups...),
	})
}

// CreateUser returns the existing user unchanged, or creates a minimal one with
// PlaceholderPassword and DefaultUserGroups.
func (c *Client) CreateUser(ctx context.Context, name string) (Document, error) {
	path := userPath(name)
	found, err := c.lookup(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe user %s: %w", name, err)
	}
	if found.state == present {
		c.log.InfoObj("user already exists", "user", name)
		return found.doc, nil
	}

	user := Document{
		"name":     name,
		"email":    c.email(name),
		"password": PlaceholderPassword,
		"groups":   append([]string(nil), DefaultUserGroups...),
	}
	if err := c.putJSON(ctx, path, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns the named user.
func (c *Client) GetUser(ctx context.Context, name string) (Document, error) {
	var doc Document
	if err := c.getJSON(ctx, userPath(name), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateGroup upserts the group, keeping any server-side fields other than name and description.
func (c *Client) CreateGroup(ctx context.Context, name, description string) error {
	path := groupPath(name)
	found, err := c.lookup(ctx, path)
	if err != nil {
		return fmt.Errorf("fetch group %s: %w", name, err)
	}
	group := found.doc
	if found.state == absent {
		group = Document{}
	}

	group["name"] = name
	group["description"] = description
	return c.putJSON(ctx, path, group)
}

// AddUserToGroup adds group to the user's memberships if missing and posts the user back.
// The post is issued even when the membership was already present.
func (c *Client) AddUserToGroup(ctx context.Context, user, group string) error {
	path := userPath(user)
	doc, err := c.GetUser(ctx, user)
	if err != nil {
		return err
	}

	groups := doc.StringList("groups")
	if !containsString(groups, group) {
		groups = append(groups, group)
	}
	if groups == nil {
		groups = []string{}
	}
	doc["groups"] = groups
	return c.postJSON(ctx, path, doc)
}
