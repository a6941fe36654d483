package hardcover

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for transport-level failures.
var (
	ErrUnauthorized = errors.New("hardcover: unauthorized")
	ErrRateLimited  = errors.New("hardcover: rate limited by server")
	ErrServer       = errors.New("hardcover: server error")
	ErrNoData       = errors.New("hardcover: response has no data")
)

// RemoteError is a failed operation. Messages holds what the service
// reported; Err holds the transport failure, if that is what happened.
type RemoteError struct {
	Op       string
	Status   int
	Messages []string
	Err      error
}

func (e *RemoteError) Error() string {
	var sb strings.Builder
	sb.WriteString("hardcover " + e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&sb, " [%d]", e.Status)
	}
	sb.WriteString(": ")
	switch {
	case len(e.Messages) > 0:
		sb.WriteString(strings.Join(e.Messages, "; "))
	case e.Err != nil:
		sb.WriteString(e.Err.Error())
	default:
		sb.WriteString("request failed")
	}
	return sb.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// PayloadError turns the error fields of a mutation payload into a
// RemoteError, or returns nil when none of them carries a message.
func PayloadError(op Operation, messages ...string) error {
	var kept []string
	for _, msg := range messages {
		if msg = strings.TrimSpace(msg); msg != "" {
			kept = append(kept, msg)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &RemoteError{Op: op.Name, Messages: kept}
}

// Messages returns the service-reported messages in err's chain.
func Messages(err error) []string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Messages
	}
	return nil
}

func wrapError(op Operation, status int, err error) error {
	return &RemoteError{Op: op.Name, Status: status, Err: err}
}
