// Package sensitivedata keeps track of plaintext secrets seen during a run so
// they can be scrubbed from anything written to a terminal or returned in an
// error message.
package sensitivedata

import (
	"sort"
	"strings"
	"sync"
)

// Redacted replaces a tracked secret in scrubbed text.
const Redacted = "[REDACTED]"

// minTrackedLength keeps very short values from being tracked; scrubbing
// them would mangle unrelated text.
const minTrackedLength = 4

// Provider implements ports.SensitiveValueProvider.
// It is shared by all sessions of a run and is safe for concurrent use.
type Provider struct {
	seen   map[string]struct{}
	values []string
	mu     sync.RWMutex
}

// NewProvider creates a new sensitive data provider.
func NewProvider() *Provider {
	return &Provider{
		seen:   make(map[string]struct{}),
		values: make([]string, 0, 32),
	}
}

// Track registers a sensitive value. Duplicates and values shorter than a
// few characters are ignored.
func (p *Provider) Track(value string) {
	if len(value) < minTrackedLength {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[value]; ok {
		return
	}
	p.seen[value] = struct{}{}
	p.values = append(p.values, value)
}

// AllValues returns a copy of all tracked values.
func (p *Provider) AllValues() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]string, len(p.values))
	copy(result, p.values)
	return result
}

// Scrub replaces every tracked value in s with Redacted.
func (p *Provider) Scrub(s string) string {
	return scrubValues(s, p.AllValues())
}

// scrubValues replaces longer values first so a secret containing another
// is removed whole.
func scrubValues(s string, values []string) string {
	if s == "" || len(values) == 0 {
		return s
	}
	sort.Slice(values, func(i, j int) bool { return len(values[i]) > len(values[j]) })
	for _, v := range values {
		if v != "" && strings.Contains(s, v) {
			s = strings.ReplaceAll(s, v, Redacted)
		}
	}
	return s
}
