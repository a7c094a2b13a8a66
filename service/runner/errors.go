package runner

import (
	"errors"
	"fmt"
	"strings"

	mtask "github.com/viant/toolgate/model/task"
)

// The runtime carries timeout and denial outcomes as typed errors. String
// markers remain as a fallback so engines that flatten errors across a
// serialization boundary still classify identically.
const (
	// TimeoutMarker flags a flattened timeout error.
	TimeoutMarker = "execution timed out"
	// DenialMarker prefixes a flattened denial reason; Classify strips it.
	DenialMarker = "tool call denied: "
)

// TimeoutError reports that the task deadline fired before the script
// finished.
type TimeoutError struct {
	TimeoutMs int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Execution timed out after %dms", e.TimeoutMs)
}

// DenialError reports a denied tool call; Reason is the reviewer's stated
// reason or a generic denial message.
type DenialError struct {
	Reason string
}

func (e *DenialError) Error() string {
	return e.Reason
}

// Classify maps whatever error emerged from the script onto a terminal task
// status and the user-visible error message.
func Classify(err error, timeoutMs int) (mtask.Status, string) {
	if err == nil {
		return mtask.StatusCompleted, ""
	}
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return mtask.StatusTimedOut, timeout.Error()
	}
	var denial *DenialError
	if errors.As(err, &denial) {
		return mtask.StatusDenied, denial.Reason
	}
	message := err.Error()
	// The marker is only authoritative when it leads the message; a failure
	// that merely quotes the phrase stays a failure.
	if strings.HasPrefix(strings.ToLower(message), TimeoutMarker) {
		return mtask.StatusTimedOut, (&TimeoutError{TimeoutMs: timeoutMs}).Error()
	}
	if strings.HasPrefix(message, DenialMarker) {
		return mtask.StatusDenied, strings.TrimPrefix(message, DenialMarker)
	}
	return mtask.StatusFailed, message
}
