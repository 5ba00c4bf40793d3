package sensitivedata

import (
	"io"
	"sync"
)

// Writer wraps an io.Writer and scrubs tracked values before writing.
// The CLI routes its log output through a Writer.
// Thread-safe: can be used concurrently by multiple goroutines.
type Writer struct {
	underlying io.Writer
	provider   *Provider
	mu         sync.Mutex
}

// NewWriter creates a scrubbing writer.
func NewWriter(w io.Writer, p *Provider) *Writer {
	return &Writer{
		underlying: w,
		provider:   p,
	}
}

// Write implements io.Writer. It reports len(p) on success even when the
// scrubbed output has a different length.
func (w *Writer) Write(p []byte) (int, error) {
	out := p
	if w.provider != nil {
		out = []byte(w.provider.Scrub(string(p)))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.underlying.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
