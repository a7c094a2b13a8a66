// Package idgen generates the identifiers used for tasks, tool calls and
// approvals. It is kept under internal so callers treat ids as opaque
// strings; tests stub NewFunc for deterministic values.
package idgen
