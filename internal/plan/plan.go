// Package plan loads provisioning plans: the repositories, groups, users and permission
// targets an Artifactory instance should hold.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultIncludes = "**"

// Plan is the desired state applied by the provisioner.
type Plan struct {
	Repositories []Repository `json:"repositories" yaml:"repositories"`
	Groups       []Group      `json:"groups" yaml:"groups"`
	Users        []User       `json:"users" yaml:"users"`
	Permissions  []Permission `json:"permissions" yaml:"permissions"`
}

// Repository declares a repository and its configuration document.
// With Update set the configuration is also posted when the repository exists.
type Repository struct {
	Name   string         `json:"name" yaml:"name"`
	Update bool           `json:"update" yaml:"update"`
	Config map[string]any `json:"config" yaml:"config"`
}

// Group declares a security group.
type Group struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// User declares a user. An empty password creates the user only when missing;
// a non-empty one replaces the user.
type User struct {
	Name     string   `json:"name" yaml:"name"`
	Password string   `json:"password" yaml:"password"`
	Groups   []string `json:"groups" yaml:"groups"`
}

// Permission declares a permission target and its grants.
type Permission struct {
	Name         string              `json:"name" yaml:"name"`
	Includes     string              `json:"includes" yaml:"includes"`
	Excludes     string              `json:"excludes" yaml:"excludes"`
	Repositories []string            `json:"repositories" yaml:"repositories"`
	Groups       map[string][]string `json:"groups" yaml:"groups"`
	Users        map[string][]string `json:"users" yaml:"users"`
}

// Load reads, sanitizes and validates the plan file at path (YAML or JSON).
func Load(path string) (*Plan, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("plan file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	p, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Parse decodes plan content. An empty ext tries YAML then JSON.
func Parse(data []byte, ext string) (*Plan, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var p Plan
		if err := d.fn(data, &p); err != nil {
			lastErr = fmt.Errorf("decode %s plan: %w", d.name, err)
			continue
		}
		sanitize(&p)
		if err := validate(&p); err != nil {
			return nil, err
		}
		return &p, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("plan file format not recognized (expected YAML or JSON)")
}

// Empty reports whether the plan declares nothing.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Repositories)+len(p.Groups)+len(p.Users)+len(p.Permissions) == 0
}

func sanitize(p *Plan) {
	for i := range p.Repositories {
		r := &p.Repositories[i]
		r.Name = strings.TrimSpace(r.Name)
		if r.Config == nil {
			r.Config = map[string]any{}
		}
	}
	for i := range p.Groups {
		g := &p.Groups[i]
		g.Name = strings.TrimSpace(g.Name)
		g.Description = strings.TrimSpace(g.Description)
	}
	for i := range p.Users {
		u := &p.Users[i]
		u.Name = strings.TrimSpace(u.Name)
		u.Groups = trimAll(u.Groups)
	}
	for i := range p.Permissions {
		perm := &p.Permissions[i]
		perm.Name = strings.TrimSpace(perm.Name)
		perm.Includes = strings.TrimSpace(perm.Includes)
		if perm.Includes == "" {
			perm.Includes = defaultIncludes
		}
		perm.Excludes = strings.TrimSpace(perm.Excludes)
		perm.Repositories = trimAll(perm.Repositories)
	}
}

// trimAll trims every entry and drops empty ones.
func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validate(p *Plan) error {
	seen := make(map[string]bool)
	check := func(kind string, i int, name string) error {
		if name == "" {
			return fmt.Errorf("%s[%d]: name is required", kind, i)
		}
		key := kind + "/" + name
		if seen[key] {
			return fmt.Errorf("duplicate %s %q", kind, name)
		}
		seen[key] = true
		return nil
	}

	for i, r := range p.Repositories {
		if err := check("repositories", i, r.Name); err != nil {
			return err
		}
	}
	for i, g := range p.Groups {
		if err := check("groups", i, g.Name); err != nil {
			return err
		}
	}
	for i, u := range p.Users {
		if err := check("users", i, u.Name); err != nil {
			return err
		}
	}
	for i, perm := range p.Permissions {
		if err := check("permissions", i, perm.Name); err != nil {
			return err
		}
		for name := range perm.Groups {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("permissions[%d]: empty group name in grants", i)
			}
		}
		for name := range perm.Users {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("permissions[%d]: empty user name in grants", i)
			}
		}
	}
	return nil
}
