package sensitivedata

import (
	"github.com/Microsoft/data-accelerator/internal/application/ports"
)

// redactedError carries a scrubbed message while keeping the original error
// reachable for errors.Is and errors.As.
type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }

// SafeError returns err with every tracked value removed from its message.
// The original error is returned as is when nothing needed scrubbing.
func SafeError(err error, provider ports.SensitiveValueProvider) error {
	if err == nil || provider == nil {
		return err
	}

	msg := scrubValues(err.Error(), provider.AllValues())
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, cause: err}
}
