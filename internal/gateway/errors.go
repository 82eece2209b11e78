package gateway

import "errors"

// RemoteError is the single failure kind surfaced by the gateway. Op is the
// call-specific prefix shown to users, Reason the server-supplied message
// or a local description of what went wrong.
type RemoteError struct {
	Op         string
	Reason     string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	reason := e.Reason
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	}
	if reason == "" {
		return e.Op
	}
	return e.Op + ": " + reason
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsRemote reports whether err is or wraps a *RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

func remoteErr(op, reason string, status int, cause error) *RemoteError {
	return &RemoteError{Op: op, Reason: reason, StatusCode: status, Err: cause}
}
