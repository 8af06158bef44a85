package apiclient

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned before any I/O when a call needs a bearer
// token and none was supplied.
var ErrUnauthenticated = errors.New("no token provided")

// RemoteError is a non-2xx answer from the backend.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// TransportError wraps network, DNS and timeout failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// Message returns the text a person should see for err: the backend's message
// for remote errors, a generic line otherwise.
func Message(err error, fallback string) string {
	var re *RemoteError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &re) && re.Message != "":
		return re.Message
	case errors.Is(err, ErrUnauthenticated):
		return "Please sign in again."
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "The marketplace service could not be reached. Please try again."
	}
	return fallback
}
