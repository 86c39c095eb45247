package persist

import "errors"

// Error taxonomy. Use errors.Is to classify a returned error.
var (
	// ErrInitFailure means the store could not be opened or read at boot.
	// Cumulative statistics cannot be trusted, so the device must not run.
	ErrInitFailure = errors.New("persistence init failure")

	// ErrWriteFailure means a periodic save did not reach the store.
	// In-memory statistics stay authoritative; the next period retries.
	ErrWriteFailure = errors.New("persistence write failure")
)

// Error records the failed operation and key
type Error struct {
	Kind error  // ErrInitFailure or ErrWriteFailure
	Op   string // "open", "get", "set", "commit"
	Key  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Op
	if e.Key != "" {
		msg += " " + e.Key
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying store error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}
