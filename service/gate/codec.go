package gate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// absentValue is the reserved sentinel standing in for "no return value" so
// that it round-trips distinctly from an explicit null.
const absentValue = "__toolgate:absent__"

// payload is the wire shape of a Result. The Ok value travels as an embedded
// serialized document rather than a raw value so keys that look like codec
// metadata (e.g. a field literally named "$ref") survive untouched.
type payload struct {
	Status       string `json:"status"`
	Value        string `json:"value,omitempty"`
	ApprovalID   string `json:"approvalId,omitempty"`
	RetryAfterMs *int   `json:"retryAfterMs,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Encode serializes a Result for transport across the adapter boundary.
func Encode(result *Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot encode nil result")
	}
	wire := &payload{Status: string(result.Kind)}
	switch result.Kind {
	case KindOk:
		if !result.HasValue {
			wire.Value = absentValue
		} else {
			document, err := json.Marshal(result.Value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode ok value: %w", err)
			}
			wire.Value = string(document)
		}
	case KindPending:
		wire.ApprovalID = result.ApprovalID
		wire.RetryAfterMs = result.RetryAfterMs
	case KindDenied, KindFailed:
		wire.Message = result.Message
	default:
		return nil, fmt.Errorf("cannot encode result kind %q", result.Kind)
	}
	return json.Marshal(wire)
}

// Decode parses a transported Result. Any payload that does not match one of
// the four known shapes is rejected rather than guessed at.
func Decode(data []byte) (*Result, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	wire := &payload{}
	if err := decoder.Decode(wire); err != nil {
		return nil, fmt.Errorf("unrecognized result payload: %w", err)
	}
	switch Kind(wire.Status) {
	case KindOk:
		if wire.Value == absentValue {
			return OkNoValue(), nil
		}
		var value interface{}
		if err := json.Unmarshal([]byte(wire.Value), &value); err != nil {
			return nil, fmt.Errorf("malformed ok value document: %w", err)
		}
		return Ok(value), nil
	case KindPending:
		if wire.ApprovalID == "" {
			return nil, fmt.Errorf("pending result missing approvalId")
		}
		return Pending(wire.ApprovalID, wire.RetryAfterMs), nil
	case KindDenied:
		return Denied(wire.Message), nil
	case KindFailed:
		return Failed(wire.Message), nil
	}
	return nil, fmt.Errorf("unrecognized result status %q", wire.Status)
}
