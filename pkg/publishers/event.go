package publishers

import "time"

// Event describes one provisioning change applied to an Artifactory instance.
type Event struct {
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Action    string    `json:"action"`
	BaseURL   string    `json:"base_url"`
	AppliedAt time.Time `json:"applied_at"`
}

// NewEvent constructs an Event stamped with the current time.
func NewEvent(kind, name, action, baseURL string) Event {
	return Event{
		Kind:      kind,
		Name:      name,
		Action:    action,
		BaseURL:   baseURL,
		AppliedAt: time.Now().UTC(),
	}
}
