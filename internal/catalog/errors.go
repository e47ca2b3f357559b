package catalog

import "fmt"

// UnsupportedBackendError reports a catalog type key with no registered backend.
type UnsupportedBackendError struct {
	Backend string
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("unsupported catalog backend %q", e.Backend)
}

// ConnectionError reports an unreachable or misconfigured catalog backend.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("catalog connect (%s): %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a failed read on an established catalog connection.
type QueryError struct {
	Backend string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("catalog query (%s): %v", e.Backend, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
