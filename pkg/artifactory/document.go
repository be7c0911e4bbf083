package artifactory

// Document is a JSON object exchanged with the API. Unknown fields are kept intact across
// read-modify-write cycles.
type Document map[string]any

// field returns the string stored under key, or "".
func (d Document) field(key string) string {
	s, _ := d[key].(string)
	return s
}

// StringList returns the string list stored under key. Non-string entries are skipped.
func (d Document) StringList(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// object returns the nested object under key, creating it when missing or of the wrong type.
func (d Document) object(key string) map[string]any {
	switch v := d[key].(type) {
	case map[string]any:
		return v
	case Document:
		return v
	}
	m := map[string]any{}
	d[key] = m
	return m
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
