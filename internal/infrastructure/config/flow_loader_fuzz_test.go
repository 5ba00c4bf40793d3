package config

import (
	"bytes"
	"strings"
	"testing"
)

// FuzzFlowLoading fuzzes flow parsing for malformed input.
func FuzzFlowLoading(f *testing.F) {
	seeds := []string{
		ordersFlowYAML,
		`{"name": "x", "gui": {"outputs": []}}`,
		strings.Repeat("gui:\n  ", 200) + "name: 1",
		"name: \xff\xfe",
		"gui: &anchor\n  name: test\n  ref: *anchor",
		"name: test\x00null",
		"",
		"   \n\t  \n",
		"gui:\n  name: test\n    invalid_indent",
		"gui:\n  outputs:\n" + strings.Repeat("    - id: o\n", 1000),
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("PANIC on input (len=%d): %v", len(data), r)
			}
		}()

		_, _ = NewFlowLoader().LoadFlowFromReader(bytes.NewReader(data))
	})
}
