package app

import (
	"context"
	"fmt"

	"github.com/rtfactory/rtfactory/internal/journal"
	"github.com/rtfactory/rtfactory/internal/logger"
	"github.com/rtfactory/rtfactory/internal/plan"
	"github.com/rtfactory/rtfactory/pkg/artifactory"
	"github.com/rtfactory/rtfactory/pkg/publishers"
)

// Plan entry kinds, also used as journal key prefixes and event kinds.
const (
	KindRepository = "repository"
	KindGroup      = "group"
	KindUser       = "user"
	KindPermission = "permission"
)

// Client is the part of the Artifactory client the provisioner drives.
type Client interface {
	BaseURL() string
	CreateRepository(ctx context.Context, name string, configuration artifactory.Document) (bool, error)
	UpdateRepository(ctx context.Context, name string, data artifactory.Document) error
	CreateGroup(ctx context.Context, name, description string) error
	CreateUser(ctx context.Context, name string) (artifactory.Document, error)
	CreateOrReplaceUser(ctx context.Context, name, password string, groups ...string) error
	AddUserToGroup(ctx context.Context, user, group string) error
	EnsurePermission(ctx context.Context, target, includes, excludes string) error
	AddRepositoryToPermission(ctx context.Context, target, repo string) error
	AddGroupToPermission(ctx context.Context, target, group string, access ...string) error
	AddUserToPermission(ctx context.Context, target, user string, access ...string) error
}

// EventPublisher receives one event per applied plan entry.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// ApplyOptions tunes a single Apply run.
type ApplyOptions struct {
	// Force re-applies entries the journal reports as fresh.
	Force bool
}

// Summary lists the journal keys applied and skipped by a run.
type Summary struct {
	Applied []string
	Skipped []string
}

// Provisioner applies plans to an Artifactory instance.
type Provisioner struct {
	client Client
	store  journal.Store
	events EventPublisher
	log    logger.Logger
}

// NewProvisioner wires a provisioner. store and events may be nil.
func NewProvisioner(client Client, store journal.Store, events EventPublisher, log logger.Logger) (*Provisioner, error) {
	if client == nil {
		return nil, fmt.Errorf("client must not be nil")
	}
	if store == nil {
		store, _ = journal.NewStore("none", "", journal.Options{})
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Provisioner{client: client, store: store, events: events, log: log}, nil
}

type step struct {
	kind  string
	name  string
	entry any
	apply func(ctx context.Context) (string, error)
}

// Apply provisions repositories, then groups, then users, then permission targets. It stops
// at the first failing entry; entries applied before it stay applied. An entry is skipped only
// when the journal holds it fresh with unchanged contents.
func (p *Provisioner) Apply(ctx context.Context, pl *plan.Plan, opts ApplyOptions) (Summary, error) {
	var sum Summary
	if pl.Empty() {
		p.log.WarnObj("plan is empty, nothing to apply", "plan", pl)
		return sum, nil
	}

	for _, s := range p.steps(pl) {
		key := journal.Key(s.kind, s.name)
		fingerprint, err := journal.Fingerprint(s.entry)
		if err != nil {
			return sum, fmt.Errorf("fingerprint %s: %w", key, err)
		}
		if !opts.Force {
			done, err := p.store.Applied(key, fingerprint)
			if err != nil {
				return sum, fmt.Errorf("journal lookup %s: %w", key, err)
			}
			if done {
				p.log.DebugObj("plan entry fresh in journal, skipping", "entry", key)
				sum.Skipped = append(sum.Skipped, key)
				continue
			}
		}

		action, err := s.apply(ctx)
		if err != nil {
			p.log.ErrorObj("plan entry failed", "entry_error", map[string]any{
				"entry": key,
				"error": err.Error(),
			})
			return sum, fmt.Errorf("apply %s: %w", key, err)
		}
		sum.Applied = append(sum.Applied, key)
		p.log.InfoObj("plan entry applied", "entry", map[string]any{
			"key":    key,
			"action": action,
		})

		if err := p.store.MarkApplied(key, fingerprint); err != nil {
			return sum, fmt.Errorf("journal mark %s: %w", key, err)
		}
		p.publish(ctx, publishers.NewEvent(s.kind, s.name, action, p.client.BaseURL()))
	}
	return sum, nil
}

// publish delivers evt; delivery failures are logged and never fail the run.
func (p *Provisioner) publish(ctx context.Context, evt publishers.Event) {
	if p.events == nil {
		return
	}
	if _, err := p.events.Publish(ctx, evt); err != nil {
		p.log.WarnObj("provisioning event delivery failed", "event_error", map[string]any{
			"kind":  evt.Kind,
			"name":  evt.Name,
			"error": err.Error(),
		})
	}
}

func (p *Provisioner) steps(pl *plan.Plan) []step {
	var steps []step
	for _, r := range pl.Repositories {
		steps = append(steps, step{kind: KindRepository, name: r.Name, entry: r, apply: p.repositoryStep(r)})
	}
	for _, g := range pl.Groups {
		steps = append(steps, step{kind: KindGroup, name: g.Name, entry: g, apply: p.groupStep(g)})
	}
	for _, u := range pl.Users {
		steps = append(steps, step{kind: KindUser, name: u.Name, entry: u, apply: p.userStep(u)})
	}
	for _, perm := range pl.Permissions {
		steps = append(steps, step{kind: KindPermission, name: perm.Name, entry: perm, apply: p.permissionStep(perm)})
	}
	return steps
}

func (p *Provisioner) repositoryStep(r plan.Repository) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		doc := artifactory.Document(r.Config)
		if r.Update {
			if err := p.client.UpdateRepository(ctx, r.Name, doc); err != nil {
				return "", err
			}
			return "updated", nil
		}
		created, err := p.client.CreateRepository(ctx, r.Name, doc)
		if err != nil {
			return "", err
		}
		if !created {
			return "exists", nil
		}
		return "created", nil
	}
}

func (p *Provisioner) groupStep(g plan.Group) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := p.client.CreateGroup(ctx, g.Name, g.Description); err != nil {
			return "", err
		}
		return "upserted", nil
	}
}

func (p *Provisioner) userStep(u plan.User) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if u.Password != "" {
			if err := p.client.CreateOrReplaceUser(ctx, u.Name, u.Password, u.Groups...); err != nil {
				return "", err
			}
			return "replaced", nil
		}

		if _, err := p.client.CreateUser(ctx, u.Name); err != nil {
			return "", err
		}
		for _, g := range u.Groups {
			if err := p.client.AddUserToGroup(ctx, u.Name, g); err != nil {
				return "", fmt.Errorf("add to group %s: %w", g, err)
			}
		}
		return "ensured", nil
	}
}

func (p *Provisioner) permissionStep(perm plan.Permission) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := p.client.EnsurePermission(ctx, perm.Name, perm.Includes, perm.Excludes); err != nil {
			return "", err
		}
		for _, repo := range perm.Repositories {
			if err := p.client.AddRepositoryToPermission(ctx, perm.Name, repo); err != nil {
				return "", fmt.Errorf("add repository %s: %w", repo, err)
			}
		}
		for _, group := range sortedKeys(perm.Groups) {
			if err := p.client.AddGroupToPermission(ctx, perm.Name, group, perm.Groups[group]...); err != nil {
				return "", fmt.Errorf("grant group %s: %w", group, err)
			}
		}
		for _, user := range sortedKeys(perm.Users) {
			if err := p.client.AddUserToPermission(ctx, perm.Name, user, perm.Users[user]...); err != nil {
				return "", fmt.Errorf("grant user %s: %w", user, err)
			}
		}
		return "applied", nil
	}
}
