package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRemoteFailure = errors.New("remote call failed")
)

// RemoteError is returned by every Client operation that did not succeed:
// a non-2xx response or a transport failure. Message carries the backend's
// own explanation when the response body had one.
type RemoteError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Message != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ServerMessage extracts the backend message carried by err, or "".
func ServerMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}

func statusError(op string, code int, message string) *RemoteError {
	sentinel := ErrRemoteFailure
	if code == 401 || code == 403 {
		sentinel = ErrUnauthorized
	}
	return &RemoteError{Op: op, StatusCode: code, Message: message, Err: sentinel}
}

func transportError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: errors.Join(ErrUnavailable, err)}
}
