package sensitivedata

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvider_Track(t *testing.T) {
	p := NewProvider()

	p.Track("secret1")
	p.Track("secret2")
	p.Track("secret1") // duplicate
	p.Track("")        // ignored
	p.Track("abc")     // too short

	values := p.AllValues()
	assert.Len(t, values, 2)
	assert.Contains(t, values, "secret1")
	assert.Contains(t, values, "secret2")
}

func TestProvider_Concurrency(t *testing.T) {
	p := NewProvider()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Track("secret-" + string(rune('a'+i%26)))
		}(i)
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Scrub("secret-a")
		}()
	}

	wg.Wait()
	assert.Len(t, p.AllValues(), 26)
}

func TestProvider_Immutability(t *testing.T) {
	p := NewProvider()
	p.Track("secret")

	values := p.AllValues()
	values[0] = "hacked"

	assert.Equal(t, "secret", p.AllValues()[0], "Returned slice should be a copy")
}

func TestProvider_Scrub(t *testing.T) {
	p := NewProvider()
	p.Track("AccountKey=abc123==")
	p.Track("abc123==")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "nothing tracked in input", input: "resolving outputs", expected: "resolving outputs"},
		{name: "longest match wins", input: "conn: AccountName=a;AccountKey=abc123==", expected: "conn: AccountName=a;[REDACTED]"},
		{name: "bare value", input: "key abc123== leaked", expected: "key [REDACTED] leaked"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Scrub(tt.input))
		})
	}
}
