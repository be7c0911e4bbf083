package publishers

// eventAttributes are attached to queue and topic messages so consumers can filter
// without decoding the body.
func eventAttributes(evt Event) map[string]string {
	return map[string]string{
		"kind":   evt.Kind,
		"name":   evt.Name,
		"action": evt.Action,
	}
}
