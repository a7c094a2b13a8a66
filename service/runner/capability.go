package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/toolgate/internal/idgen"
	"github.com/viant/toolgate/service/gate"
)

const (
	// retryFloor is the minimum pause between retries of a pending call so the
	// loop never hot-spins against storage.
	retryFloor = 50 * time.Millisecond
	// defaultRetryAfter applies when the adapter returns no backoff hint.
	defaultRetryAfter = 500 * time.Millisecond
)

// Adapter is the invokeTool contract the capability object dispatches to.
type Adapter interface {
	Invoke(ctx context.Context, taskID, callID, toolPath string, input map[string]interface{}) *gate.Result
}

// Capability is the single injected surface through which submitted code
// reaches tools. Chaining Tool calls builds up a dotted path; Call issues
// exactly one logical invocation of that path. Each chain step returns a new
// value, so partial paths can be held and reused.
type Capability struct {
	adapter Adapter
	taskID  string
	path    string
}

// NewCapability creates the root capability object for one task.
func NewCapability(adapter Adapter, taskID string) *Capability {
	return &Capability{adapter: adapter, taskID: taskID}
}

// Tool appends one path segment, e.g. Tool("system").Tool("exec").
func (c *Capability) Tool(segment string) *Capability {
	path := segment
	if c.path != "" {
		path = c.path + "." + segment
	}
	return &Capability{adapter: c.adapter, taskID: c.taskID, path: path}
}

// Path returns a capability addressing the given dotted path directly.
func (c *Capability) Path(path string) *Capability {
	return &Capability{adapter: c.adapter, taskID: c.taskID, path: path}
}

// Call invokes the built tool path with a fresh callId, retrying while the
// call is pending approval. The same callId is re-issued on every retry so
// the task layer maps all attempts onto one ToolCall record. Nil args default
// to an empty argument object.
func (c *Capability) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if c.path == "" {
		return nil, errors.New("empty tool path")
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	callID := idgen.New()
	for {
		result := c.adapter.Invoke(ctx, c.taskID, callID, c.path, args)
		switch result.Kind {
		case gate.KindOk:
			if !result.HasValue {
				return nil, nil
			}
			return result.Value, nil
		case gate.KindDenied:
			reason := result.Message
			if reason == "" {
				reason = fmt.Sprintf("tool call %v denied", c.path)
			}
			return nil, &DenialError{Reason: reason}
		case gate.KindFailed:
			return nil, errors.New(result.Message)
		case gate.KindPending:
			if err := c.wait(ctx, result.RetryAfterMs); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unrecognized adapter result %q", result.Kind)
		}
	}
}

// wait sleeps out the adapter backoff hint, floored at 50ms, yielding early
// when the task context ends.
func (c *Capability) wait(ctx context.Context, retryAfterMs *int) error {
	backoff := defaultRetryAfter
	if retryAfterMs != nil {
		backoff = time.Duration(*retryAfterMs) * time.Millisecond
	}
	if backoff < retryFloor {
		backoff = retryFloor
	}
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
