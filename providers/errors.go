package providers

import (
	"errors"
	"fmt"
)

var (
	ErrTrackingNotFound = errors.New("tracking number not found")
	ErrNoToken          = errors.New("login response carried no token")
)

// RemoteError is a non-2xx answer from a remote API. Message is the API's
// own "message" field when it sent one.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError is a failure to reach a remote API at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a RemoteError with the given status.
func IsStatus(err error, status int) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == status
}
