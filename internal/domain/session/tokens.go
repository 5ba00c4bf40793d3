package session

import "sort"

// TokenStore is the named value table of one session.
// Values are either strings or opaque structured objects. A later write to
// a name replaces the earlier value. The store is not synchronized; a
// session is only ever driven by one goroutine.
type TokenStore struct {
	values map[string]any
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{values: make(map[string]any)}
}

// SetString stores a scalar token.
func (t *TokenStore) SetString(name, value string) {
	t.values[name] = value
}

// SetObject stores a structured token. The value is kept by reference.
func (t *TokenStore) SetObject(name string, value any) {
	t.values[name] = value
}

// Get returns the raw token value.
func (t *TokenStore) Get(name string) (any, bool) {
	v, ok := t.values[name]
	return v, ok
}

// String returns a scalar token. It reports false when the token is
// missing or holds a structured value.
func (t *TokenStore) String(name string) (string, bool) {
	v, ok := t.values[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Names returns the token names in sorted order.
func (t *TokenStore) Names() []string {
	names := make([]string, 0, len(t.values))
	for name := range t.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tokens.
func (t *TokenStore) Len() int {
	return len(t.values)
}

// Snapshot returns a shallow copy of the table for serialization.
func (t *TokenStore) Snapshot() map[string]any {
	out := make(map[string]any, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}
