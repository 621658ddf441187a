// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types for the hioload-mem library.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrInvalidConfig = fmt.Errorf("invalid pool configuration")
	ErrInvalidSize   = fmt.Errorf("requested allocation size must be non-negative")
	ErrNotAppendable = fmt.Errorf("composite buffer is not appendable")
	ErrNotSupported  = fmt.Errorf("operation not supported")
)

// DisposedError is the panic value raised when a buffer is used after it has
// been returned to its pool. Site holds the stack captured at dispose time
// when dispose-site tracking is enabled, nil otherwise.
type DisposedError struct {
	Site []byte
}

// Error implements the error interface.
func (e *DisposedError) Error() string {
	if len(e.Site) == 0 {
		return "buffer has already been disposed"
	}
	return fmt.Sprintf("buffer has already been disposed; disposed at:\n%s", e.Site)
}
