package client

import (
	"fmt"

	yaml "gopkg.in/yaml.v2"
)

// Metadata is the decoded YAML mapping the service answers create, update
// and delete with. No schema is imposed; keys keep the order they had in
// the response body.
type Metadata struct {
	yaml.MapSlice

	// Value holds the decoded document when the body is valid YAML but not
	// a mapping, such as a plain-text error page from a proxy.
	Value interface{}
}

// decodeMetadata parses a response body. An empty body yields empty
// metadata; only malformed YAML is an error.
func decodeMetadata(body []byte) (Metadata, error) {
	var v interface{}
	if err := yaml.Unmarshal(body, &v); err != nil {
		return Metadata{}, err
	}
	if _, ok := v.(map[interface{}]interface{}); !ok {
		return Metadata{Value: v}, nil
	}

	var m yaml.MapSlice
	if err := yaml.Unmarshal(body, &m); err != nil {
		return Metadata{}, err
	}
	return Metadata{MapSlice: m}, nil
}

// IsMapping reports whether the body decoded to a YAML mapping. Empty
// metadata counts as an empty mapping.
func (m Metadata) IsMapping() bool {
	return m.Value == nil
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (interface{}, bool) {
	for _, item := range m.MapSlice {
		if fmt.Sprint(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

// GetString returns the value under key formatted as a string, or "" if the
// key is missing or null.
func (m Metadata) GetString(key string) string {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Keys returns the keys in response order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m.MapSlice))
	for _, item := range m.MapSlice {
		keys = append(keys, fmt.Sprint(item.Key))
	}
	return keys
}

// Len returns the number of top-level keys.
func (m Metadata) Len() int {
	return len(m.MapSlice)
}

// Map copies the top level into an unordered map.
func (m Metadata) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(m.MapSlice))
	for _, item := range m.MapSlice {
		out[fmt.Sprint(item.Key)] = item.Value
	}
	return out
}

// MarshalYAML lets Metadata serialise as the plain document it wraps.
func (m Metadata) MarshalYAML() (interface{}, error) {
	if !m.IsMapping() {
		return m.Value, nil
	}
	return m.MapSlice, nil
}

// Bytes renders the metadata as YAML, in response order.
func (m Metadata) Bytes() ([]byte, error) {
	if !m.IsMapping() {
		return yaml.Marshal(m.Value)
	}
	if len(m.MapSlice) == 0 {
		return []byte("{}\n"), nil
	}
	return yaml.Marshal(m.MapSlice)
}
