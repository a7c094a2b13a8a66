// Package gate implements the execution adapter sitting between the runtime
// and the task, policy and approval layers. Every tool call enters through
// Invoke and leaves as one of four results: Ok, Pending, Denied or Failed.
package gate

// Kind discriminates the four adapter results.
type Kind string

const (
	KindOk      Kind = "ok"
	KindPending Kind = "pending"
	KindDenied  Kind = "denied"
	KindFailed  Kind = "failed"
)

// Result is the adapter response for one tool call attempt.
type Result struct {
	Kind Kind

	// Ok
	Value interface{}
	// HasValue distinguishes "tool returned null" from "tool returned
	// nothing".
	HasValue bool

	// Pending
	ApprovalID   string
	RetryAfterMs *int

	// Denied / Failed
	Message string
}

// Ok wraps a tool return value.
func Ok(value interface{}) *Result {
	return &Result{Kind: KindOk, Value: value, HasValue: true}
}

// OkNoValue reports success without a return value.
func OkNoValue() *Result {
	return &Result{Kind: KindOk}
}

// Pending signals the call is parked behind the given approval. retryAfterMs
// is an optional backoff hint for the caller's retry loop.
func Pending(approvalID string, retryAfterMs *int) *Result {
	return &Result{Kind: KindPending, ApprovalID: approvalID, RetryAfterMs: retryAfterMs}
}

// Denied reports a policy or reviewer denial.
func Denied(message string) *Result {
	return &Result{Kind: KindDenied, Message: message}
}

// Failed reports a tool or infrastructure failure.
func Failed(message string) *Result {
	return &Result{Kind: KindFailed, Message: message}
}
