package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rtfactory/rtfactory/internal/journal"
	"github.com/rtfactory/rtfactory/internal/plan"
	"github.com/rtfactory/rtfactory/pkg/artifactory"
	"github.com/rtfactory/rtfactory/pkg/publishers"
)

// fakeClient records every call as "Method arg1 arg2 ...".
type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	failOn  string
	existed map[string]bool
}

func (f *fakeClient) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failOn != "" && strings.HasPrefix(call, f.failOn) {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeClient) BaseURL() string { return "http://rt.test/api/" }

func (f *fakeClient) CreateRepository(_ context.Context, name string, _ artifactory.Document) (bool, error) {
	if err := f.record("CreateRepository " + name); err != nil {
		return false, err
	}
	return !f.existed[name], nil
}

func (f *fakeClient) UpdateRepository(_ context.Context, name string, _ artifactory.Document) error {
	return f.record("UpdateRepository " + name)
}

func (f *fakeClient) CreateGroup(_ context.Context, name, description string) error {
	return f.record("CreateGroup " + name + " " + description)
}

func (f *fakeClient) CreateUser(_ context.Context, name string) (artifactory.Document, error) {
	return artifactory.Document{"name": name}, f.record("CreateUser " + name)
}

func (f *fakeClient) CreateOrReplaceUser(_ context.Context, name, _ string, groups ...string) error {
	return f.record("CreateOrReplaceUser " + name + " " + strings.Join(groups, ","))
}

func (f *fakeClient) AddUserToGroup(_ context.Context, user, group string) error {
	return f.record("AddUserToGroup " + user + " " + group)
}

func (f *fakeClient) EnsurePermission(_ context.Context, target, includes, excludes string) error {
	return f.record("EnsurePermission " + target + " " + includes + " " + excludes)
}

func (f *fakeClient) AddRepositoryToPermission(_ context.Context, target, repo string) error {
	return f.record("AddRepositoryToPermission " + target + " " + repo)
}

func (f *fakeClient) AddGroupToPermission(_ context.Context, target, group string, access ...string) error {
	return f.record("AddGroupToPermission " + target + " " + group + " " + strings.Join(access, ","))
}

func (f *fakeClient) AddUserToPermission(_ context.Context, target, user string, access ...string) error {
	return f.record("AddUserToPermission " + target + " " + user + " " + strings.Join(access, ","))
}

// fakeEvents records published events and can fail every delivery.
type fakeEvents struct {
	events []publishers.Event
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func samplePlan() *plan.Plan {
	return &plan.Plan{
		Repositories: []plan.Repository{
			{Name: "libs", Config: map[string]any{"rclass": "local"}},
			{Name: "remote", Update: true, Config: map[string]any{}},
		},
		Groups: []plan.Group{{Name: "team-a", Description: "Team A"}},
		Users: []plan.User{
			{Name: "alice", Groups: []string{"team-a"}},
			{Name: "ci", Password: "pw", Groups: []string{"deployers"}},
		},
		Permissions: []plan.Permission{{
			Name:         "team-a",
			Includes:     "**",
			Repositories: []string{"libs"},
			Groups:       map[string][]string{"team-b": {"r"}, "team-a": {"r", "w"}},
			Users:        map[string][]string{"alice": {"r"}},
		}},
	}
}

func TestApplyOrdersStepsAndPublishesEvents(t *testing.T) {
	client := &fakeClient{existed: map[string]bool{"libs": true}}
	events := &fakeEvents{}
	prov, err := NewProvisioner(client, nil, events, nil)
	if err != nil {
		t.Fatalf("NewProvisioner: %v", err)
	}

	sum, err := prov.Apply(context.Background(), samplePlan(), ApplyOptions{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{
		"CreateRepository libs",
		"UpdateRepository remote",
		"CreateGroup team-a Team A",
		"CreateUser alice",
		"AddUserToGroup alice team-a",
		"CreateOrReplaceUser ci deployers",
		"EnsurePermission team-a ** ",
		"AddRepositoryToPermission team-a libs",
		"AddGroupToPermission team-a team-a r,w",
		"AddGroupToPermission team-a team-b r",
		"AddUserToPermission team-a alice r",
	}
	if strings.Join(client.calls, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected calls:\n%s", strings.Join(client.calls, "\n"))
	}
	if len(sum.Applied) != 6 || len(sum.Skipped) != 0 {
		t.Fatalf("unexpected summary %#v", sum)
	}
	if len(events.events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events.events))
	}
	first := events.events[0]
	if first.Kind != KindRepository || first.Name != "libs" || first.Action != "exists" || first.BaseURL != "http://rt.test/api/" {
		t.Fatalf("unexpected first event %#v", first)
	}
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	client := &fakeClient{failOn: "CreateGroup"}
	prov, _ := NewProvisioner(client, nil, nil, nil)

	sum, err := prov.Apply(context.Background(), samplePlan(), ApplyOptions{})
	if err == nil || !strings.Contains(err.Error(), "group/team-a") {
		t.Fatalf("expected group failure, got %v", err)
	}
	if len(sum.Applied) != 2 {
		t.Fatalf("expected repositories to stay applied, got %v", sum.Applied)
	}
	for _, c := range client.calls {
		if strings.HasPrefix(c, "CreateUser") {
			t.Fatalf("no step may run after a failure: %v", client.calls)
		}
	}
}

func TestApplySkipsJournaledEntriesUnlessForced(t *testing.T) {
	store, err := journal.NewStore("bbolt", filepath.Join(t.TempDir(), "journal.db"), journal.Options{TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	pl := &plan.Plan{Groups: []plan.Group{{Name: "ops"}}}
	client := &fakeClient{}
	prov, _ := NewProvisioner(client, store, nil, nil)

	if _, err := prov.Apply(context.Background(), pl, ApplyOptions{}); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	sum, err := prov.Apply(context.Background(), pl, ApplyOptions{})
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if len(sum.Skipped) != 1 || sum.Skipped[0] != "group/ops" || len(client.calls) != 1 {
		t.Fatalf("expected journaled skip, summary=%#v calls=%v", sum, client.calls)
	}

	if _, err := prov.Apply(context.Background(), pl, ApplyOptions{Force: true}); err != nil {
		t.Fatalf("forced Apply: %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected forced re-apply, calls=%v", client.calls)
	}
}

func TestApplyReappliesEditedEntries(t *testing.T) {
	store, err := journal.NewStore("bbolt", filepath.Join(t.TempDir(), "journal.db"), journal.Options{TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	client := &fakeClient{}
	prov, _ := NewProvisioner(client, store, nil, nil)

	v1 := &plan.Plan{Permissions: []plan.Permission{{Name: "team-a", Repositories: []string{"libs"}}}}
	if _, err := prov.Apply(context.Background(), v1, ApplyOptions{}); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	before := len(client.calls)

	v2 := &plan.Plan{Permissions: []plan.Permission{{
		Name:         "team-a",
		Repositories: []string{"libs", "libs-snapshot"},
		Groups:       map[string][]string{"team-a": {"r", "w"}},
	}}}
	sum, err := prov.Apply(context.Background(), v2, ApplyOptions{})
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if len(sum.Applied) != 1 || sum.Applied[0] != "permission/team-a" || len(sum.Skipped) != 0 {
		t.Fatalf("edited entry must be re-applied, summary=%#v", sum)
	}
	want := []string{
		"EnsurePermission team-a  ",
		"AddRepositoryToPermission team-a libs",
		"AddRepositoryToPermission team-a libs-snapshot",
		"AddGroupToPermission team-a team-a r,w",
	}
	if got := client.calls[before:]; strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected calls:\n%s", strings.Join(got, "\n"))
	}

	sum, err = prov.Apply(context.Background(), v2, ApplyOptions{})
	if err != nil {
		t.Fatalf("third Apply: %v", err)
	}
	if len(sum.Skipped) != 1 || len(sum.Applied) != 0 {
		t.Fatalf("unchanged entry must be skipped, summary=%#v", sum)
	}
}

func TestApplyIgnoresEventFailures(t *testing.T) {
	events := &fakeEvents{err: errors.New("sink down")}
	prov, _ := NewProvisioner(&fakeClient{}, nil, events, nil)

	pl := &plan.Plan{Groups: []plan.Group{{Name: "ops"}}}
	if _, err := prov.Apply(context.Background(), pl, ApplyOptions{}); err != nil {
		t.Fatalf("Apply must not fail on event errors: %v", err)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected one delivery attempt, got %d", len(events.events))
	}
}

func TestApplyEmptyPlan(t *testing.T) {
	client := &fakeClient{}
	prov, _ := NewProvisioner(client, nil, nil, nil)
	if _, err := prov.Apply(context.Background(), &plan.Plan{}, ApplyOptions{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no calls, got %v", client.calls)
	}
}

func TestNewProvisionerRequiresClient(t *testing.T) {
	if _, err := NewProvisioner(nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
